package auth

import (
	"errors"
	"log"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"fittrack/internal/handler/middleware"
	"fittrack/internal/handler/render"
	repo "fittrack/internal/repository/interfaces"
	"fittrack/internal/session"
	authuc "fittrack/internal/usecase/auth"
)

// Handler обрабатывает HTTP-запросы, связанные с аутентификацией:
// регистрацию, вход и выход. Все страницы рендерятся сервером;
// состояние входа живёт в cookie-сессии.
type Handler struct {
	auth     authuc.Service
	sessions *session.Manager
	renderer *render.Renderer
}

// NewHandler создаёт новый auth handler.
func NewHandler(auth authuc.Service, sessions *session.Manager, renderer *render.Renderer) *Handler {
	return &Handler{
		auth:     auth,
		sessions: sessions,
		renderer: renderer,
	}
}

// isSafeRedirect проверяет, что цель редиректа указывает на текущий хост
// и использует схему http/https. Всё остальное — попытка open redirect,
// и такая цель отбрасывается в пользу главной страницы.
func isSafeRedirect(r *http.Request, target string) bool {
	if target == "" {
		return false
	}
	u, err := url.Parse(target)
	if err != nil {
		return false
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	base := &url.URL{Scheme: scheme, Host: r.Host, Path: "/"}

	// Относительные цели разрешаются против адреса самого запроса,
	// после чего сравнение хостов ловит и формы вида //evil.example/.
	resolved := base.ResolveReference(u)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return false
	}
	return resolved.Host == r.Host
}

// ShowSignup отображает форму регистрации.
// Аутентифицированных пользователей форма не касается — их уводим на главную.
func (h *Handler) ShowSignup(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	h.renderer.HTML(c, http.StatusOK, "signup_form.html", gin.H{
		"Form":   SignupForm{},
		"Errors": map[string]string{},
	})
}

// Signup обрабатывает отправку формы регистрации.
func (h *Handler) Signup(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}

	var form SignupForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderer.HTML(c, http.StatusOK, "signup_form.html", gin.H{
			"Form":   form,
			"Errors": fieldErrors(err),
		})
		return
	}

	user, err := h.auth.Signup(c.Request.Context(), form.Username, form.Email, form.Password)
	if err != nil {
		switch {
		case errors.Is(err, authuc.ErrEmailTaken):
			h.renderer.HTML(c, http.StatusOK, "signup_form.html", gin.H{
				"Form": form,
				"Errors": map[string]string{
					"Email": "Этот email уже зарегистрирован. Пожалуйста, используйте другой.",
				},
			})
		case errors.Is(err, repo.ErrEmailExists):
			// Конкурент занял email между проверкой и вставкой; повторять не пытаемся
			log.Printf("email race in Signup: email=%s err=%v", form.Email, err)
			h.renderer.HTML(c, http.StatusOK, "signup_form.html", gin.H{
				"Form":   form,
				"Errors": map[string]string{"": "Произошла ошибка. Пожалуйста, попробуйте ещё раз."},
			})
		default:
			log.Printf("internal error in Signup: email=%s err=%v", form.Email, err)
			h.renderer.HTML(c, http.StatusOK, "signup_form.html", gin.H{
				"Form":   form,
				"Errors": map[string]string{"": "Произошла ошибка. Пожалуйста, попробуйте ещё раз."},
			})
		}
		return
	}

	// Автоматический вход после успешной регистрации
	if err := h.sessions.SignIn(c.Writer, c.Request, user.ID, false); err != nil {
		log.Printf("error establishing session in Signup: user_id=%d err=%v", user.ID, err)
	}
	_ = h.sessions.AddFlash(c.Writer, c.Request, session.FlashSuccess,
		"Аккаунт успешно создан! Добро пожаловать в FitTrack.")
	c.Redirect(http.StatusFound, "/")
}

// ShowLogin отображает форму входа.
func (h *Handler) ShowLogin(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	h.renderer.HTML(c, http.StatusOK, "login_form.html", gin.H{
		"Form":   LoginForm{},
		"Errors": map[string]string{},
		"Next":   c.Query("next"),
	})
}

// Login обрабатывает отправку формы входа.
// Неизвестный email и неверный пароль дают одно и то же сообщение:
// по ответу нельзя понять, зарегистрирован ли адрес.
func (h *Handler) Login(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}

	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderer.HTML(c, http.StatusOK, "login_form.html", gin.H{
			"Form":   form,
			"Errors": fieldErrors(err),
			"Next":   c.Query("next"),
		})
		return
	}

	user, err := h.auth.Login(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		if errors.Is(err, authuc.ErrInvalidCredentials) {
			h.renderer.HTML(c, http.StatusOK, "login_form.html", gin.H{
				"Form":   form,
				"Errors": map[string]string{"": "Неверный email или пароль. Пожалуйста, попробуйте ещё раз."},
				"Next":   c.Query("next"),
			})
			return
		}
		log.Printf("internal error in Login: email=%s err=%v", form.Email, err)
		h.renderer.HTML(c, http.StatusOK, "login_form.html", gin.H{
			"Form":   form,
			"Errors": map[string]string{"": "Произошла ошибка. Пожалуйста, попробуйте ещё раз."},
			"Next":   c.Query("next"),
		})
		return
	}

	if err := h.sessions.SignIn(c.Writer, c.Request, user.ID, form.RememberMe); err != nil {
		log.Printf("error establishing session in Login: user_id=%d err=%v", user.ID, err)
		h.renderer.ServerError(c)
		return
	}

	if next := c.Query("next"); isSafeRedirect(c.Request, next) {
		c.Redirect(http.StatusFound, next)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// Logout завершает сессию пользователя. Всегда успешен.
func (h *Handler) Logout(c *gin.Context) {
	if err := h.sessions.SignOut(c.Writer, c.Request); err != nil {
		log.Printf("error clearing session in Logout: err=%v", err)
	}
	_ = h.sessions.AddFlash(c.Writer, c.Request, session.FlashInfo, "Вы вышли из аккаунта.")
	c.Redirect(http.StatusFound, "/")
}
