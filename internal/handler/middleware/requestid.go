package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// ContextRequestIDKey — ключ идентификатора запроса в контексте Gin.
	ContextRequestIDKey = "requestID"

	// HeaderRequestID — заголовок ответа с идентификатором запроса.
	HeaderRequestID = "X-Request-Id"
)

// RequestID присваивает каждому запросу уникальный идентификатор.
// Идентификатор попадает в контекст, в заголовок ответа и в логи запросов.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set(ContextRequestIDKey, id)
		c.Writer.Header().Set(HeaderRequestID, id)
		c.Next()
	}
}

// GetRequestID возвращает идентификатор текущего запроса или пустую строку.
func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextRequestIDKey)
}
