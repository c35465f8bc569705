package middleware

import (
	"github.com/gin-gonic/gin"

	"fittrack/pkg/logger"
)

// Recovery возвращает middleware для перехвата паник.
// Паника логируется вместе с контекстом запроса, после чего клиенту
// отдаётся страница серверной ошибки. Открытые транзакции к этому моменту
// уже откатаны: всё взаимодействие с БД идёт через транзакционные замыкания
// репозиториев, которые выполняют rollback до того, как паника дойдёт сюда.
//
// renderServerError отделяет middleware от слоя рендеринга страниц.
func Recovery(lg logger.Logger, renderServerError func(c *gin.Context)) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		lg.Error("panic recovered", map[string]any{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"client_ip":  c.ClientIP(),
			"request_id": GetRequestID(c),
			"panic":      recovered,
		})

		renderServerError(c)
		c.Abort()
	})
}
