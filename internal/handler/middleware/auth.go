package middleware

import (
	"errors"
	"log"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	userdomain "fittrack/internal/domain/user"
	repo "fittrack/internal/repository/interfaces"
	"fittrack/internal/session"
)

// ContextUserKey — ключ текущего пользователя в контексте Gin.
// Значение устанавливает LoadUser; читать его следует через CurrentUser.
const ContextUserKey = "currentUser"

// LoadUser возвращает middleware, которое разрешает сессию запроса в пользователя.
// Аутентификация не обязательна: если пользователя нет, запрос продолжается
// анонимно, а защищённые роуты отсекает RequireAuth.
//
// Если браузерная сессия пуста, делается попытка восстановить вход из
// remember-cookie («запомнить меня»). Сессия, ссылающаяся на удалённого
// пользователя, очищается.
func LoadUser(sessions *session.Manager, users repo.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := sessions.CurrentUserID(c.Request)
		if !ok {
			userID, ok = sessions.RestoreFromRemember(c.Writer, c.Request)
			if ok {
				// Восстанавливаем браузерную сессию, чтобы не проверять токен на каждом запросе
				if err := sessions.SignIn(c.Writer, c.Request, userID, false); err != nil {
					log.Printf("error restoring session from remember cookie: user_id=%d err=%v", userID, err)
				}
			}
		}
		if !ok {
			c.Next()
			return
		}

		u, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				// Пользователь удалён, сессия больше недействительна
				_ = sessions.SignOut(c.Writer, c.Request)
			} else {
				log.Printf("internal error in LoadUser (GetByID): user_id=%d err=%v", userID, err)
			}
			c.Next()
			return
		}

		c.Set(ContextUserKey, u)
		c.Next()
	}
}

// CurrentUser возвращает аутентифицированного пользователя запроса или nil.
func CurrentUser(c *gin.Context) *userdomain.User {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil
	}
	u, ok := v.(*userdomain.User)
	if !ok {
		return nil
	}
	return u
}

// RequireAuth возвращает middleware, которое отклоняет неаутентифицированные
// запросы до бизнес-логики: пользователь перенаправляется на форму входа,
// а исходный адрес передаётся параметром next для возврата после входа.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) != nil {
			c.Next()
			return
		}
		c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request.RequestURI))
		c.Abort()
	}
}
