package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"fittrack/pkg/logger"
)

// LoggerStructured возвращает middleware структурированного логирования запросов.
// Для каждого запроса пишется метод, путь, статус, задержка, IP клиента
// и идентификатор запроса, выставленный RequestID.
func LoggerStructured(lg logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Начало запроса
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		// Обрабатываем запрос
		c.Next()

		// Вычисляем время выполнения
		latency := time.Since(start)

		if raw != "" {
			path = path + "?" + raw
		}

		fields := map[string]any{
			"method":     c.Request.Method,
			"path":       path,
			"status":     c.Writer.Status(),
			"latency":    latency,
			"client_ip":  c.ClientIP(),
			"request_id": GetRequestID(c),
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate).String(); errs != "" {
			fields["errors"] = errs
		}

		if c.Writer.Status() >= 500 {
			lg.Error("request", fields)
			return
		}
		lg.Info("request", fields)
	}
}
