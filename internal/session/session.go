package session

import (
	"encoding/gob"
	"net/http"

	"github.com/gorilla/sessions"

	"fittrack/internal/config"
	"fittrack/pkg/remember"
)

const (
	// SessionCookie — имя cookie браузерной сессии.
	SessionCookie = "fittrack_session"
	// RememberCookie — имя cookie персистентного входа («запомнить меня»).
	RememberCookie = "fittrack_remember"

	userIDKey = "user_id"
)

// Категории flash-сообщений.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// Flash представляет одноразовое сообщение, показываемое на следующей странице.
type Flash struct {
	Category string
	Message  string
}

func init() {
	gob.Register(Flash{})
}

// Manager управляет cookie-сессиями, flash-сообщениями и персистентным входом.
//
// Сессионная cookie живёт до закрытия браузера; долгий вход обеспечивает
// отдельная remember-cookie с подписанным токеном.
type Manager struct {
	cfg      *config.SessionConfig
	store    *sessions.CookieStore
	remember remember.Service
	secure   bool
}

// NewManager создает менеджер сессий. secure включает флаг Secure на cookie
// и должен быть true в production.
func NewManager(cfg *config.SessionConfig, rememberSvc remember.Service, secure bool) *Manager {
	store := sessions.NewCookieStore([]byte(cfg.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   0, // до закрытия браузера
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Manager{
		cfg:      cfg,
		store:    store,
		remember: rememberSvc,
		secure:   secure,
	}
}

// session возвращает сессию запроса. Повреждённая или неподписанная cookie
// трактуется как пустая сессия: gorilla в этом случае возвращает новую
// сессию вместе с ошибкой, и этого достаточно.
func (m *Manager) session(r *http.Request) *sessions.Session {
	s, _ := m.store.Get(r, SessionCookie)
	return s
}

// SignIn сохраняет пользователя в сессии. При rememberMe дополнительно
// выставляется долгоживущая remember-cookie с подписанным токеном.
func (m *Manager) SignIn(w http.ResponseWriter, r *http.Request, userID int64, rememberMe bool) error {
	s := m.session(r)
	s.Values[userIDKey] = userID
	if err := s.Save(r, w); err != nil {
		return err
	}

	if !rememberMe {
		return nil
	}
	token, err := m.remember.Issue(userID)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     RememberCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.cfg.RememberTTL.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// SignOut удаляет пользователя из сессии и гасит remember-cookie.
func (m *Manager) SignOut(w http.ResponseWriter, r *http.Request) error {
	s := m.session(r)
	delete(s.Values, userIDKey)
	if err := s.Save(r, w); err != nil {
		return err
	}
	m.dropRememberCookie(w)
	return nil
}

// CurrentUserID возвращает идентификатор пользователя из сессии, если он там есть.
func (m *Manager) CurrentUserID(r *http.Request) (int64, bool) {
	s := m.session(r)
	id, ok := s.Values[userIDKey].(int64)
	if !ok || id <= 0 {
		return 0, false
	}
	return id, true
}

// RestoreFromRemember пытается извлечь пользователя из remember-cookie.
// Невалидный или истёкший токен удаляется, чтобы не проверять его на каждом запросе.
// Повторную запись сессии выполняет вызывающая сторона через SignIn.
func (m *Manager) RestoreFromRemember(w http.ResponseWriter, r *http.Request) (int64, bool) {
	cookie, err := r.Cookie(RememberCookie)
	if err != nil || cookie.Value == "" {
		return 0, false
	}

	userID, err := m.remember.Parse(cookie.Value)
	if err != nil {
		m.dropRememberCookie(w)
		return 0, false
	}
	return userID, true
}

// AddFlash добавляет одноразовое сообщение, которое покажет следующая страница.
func (m *Manager) AddFlash(w http.ResponseWriter, r *http.Request, category, message string) error {
	s := m.session(r)
	s.AddFlash(Flash{Category: category, Message: message})
	return s.Save(r, w)
}

// PopFlashes забирает накопленные flash-сообщения и фиксирует их удаление в cookie.
// Вызывается до записи тела ответа, иначе Set-Cookie не попадёт в заголовки.
func (m *Manager) PopFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	s := m.session(r)
	raw := s.Flashes()
	if len(raw) == 0 {
		return nil
	}
	// Flashes уже удалил сообщения из сессии, осталось сохранить её
	_ = s.Save(r, w)

	flashes := make([]Flash, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(Flash); ok {
			flashes = append(flashes, f)
		}
	}
	return flashes
}

func (m *Manager) dropRememberCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RememberCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
