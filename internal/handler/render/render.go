package render

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fittrack/internal/handler/middleware"
	"fittrack/internal/session"
)

// Renderer отвечает за рендеринг HTML-страниц с общими данными:
// текущим пользователем (состояние навигации) и flash-сообщениями.
// Сами шаблоны устанавливаются в роутер при сборке сервера.
type Renderer struct {
	sessions *session.Manager
}

// NewRenderer создаёт рендерер страниц.
func NewRenderer(sessions *session.Manager) *Renderer {
	return &Renderer{sessions: sessions}
}

// HTML рендерит страницу name, дополняя данные общими для всех страниц полями.
// Flash-сообщения забираются из сессии до записи тела ответа, иначе
// обновлённая cookie не попадёт в заголовки.
func (r *Renderer) HTML(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["CurrentUser"] = middleware.CurrentUser(c)
	data["Flashes"] = r.sessions.PopFlashes(c.Writer, c.Request)
	c.HTML(status, name, data)
}

// NotFound рендерит страницу 404 со статусом 404.
func (r *Renderer) NotFound(c *gin.Context) {
	r.HTML(c, http.StatusNotFound, "404.html", nil)
}

// ServerError рендерит страницу 500 со статусом 500.
// Внутренние детали ошибки на страницу не попадают.
func (r *Renderer) ServerError(c *gin.Context) {
	r.HTML(c, http.StatusInternalServerError, "500.html", nil)
}
