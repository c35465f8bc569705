//go:build integration
// +build integration

package config

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	appcfg "fittrack/internal/config"
	"fittrack/internal/database"
	"fittrack/internal/server"
)

// TestEnv — окружение интеграционного теста: роутер приложения и прямое
// подключение к базе для проверок состояния.
type TestEnv struct {
	Router *gin.Engine
	DB     *database.DB
	Cfg    *appcfg.Config
}

// NewTestEnv поднимает приложение против реальной БД.
// Схема накатывается мигратором, данные очищаются перед каждым тестом.
// Использует отдельную тестовую БД, если задана переменная окружения TEST_DB_NAME.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	cfg, err := appcfg.Load()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}

	// Если указано имя тестовой БД — переопределяем его в конфиге.
	if testDB := os.Getenv("TEST_DB_NAME"); testDB != "" {
		cfg.Database.DBName = testDB
	}

	db, err := database.NewConnection(&cfg.Database, cfg.AppEnv)
	if err != nil {
		t.Fatalf("db connection: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	migrator, err := database.NewMigrator(db)
	if err != nil {
		t.Fatalf("migrator: %v", err)
	}
	if err := migrator.Up(); err != nil && err != database.ErrNoChange {
		t.Fatalf("migrate up: %v", err)
	}

	// Каскад удаляет программы и упражнения вместе с пользователями
	if err := db.Exec("TRUNCATE TABLE users RESTART IDENTITY CASCADE").Error; err != nil {
		t.Fatalf("truncate: %v", err)
	}

	srv, err := server.NewServer(cfg, db)
	if err != nil {
		t.Fatalf("server: %v", err)
	}
	return &TestEnv{Router: srv.GetRouter(), DB: db, Cfg: cfg}
}

// Client — HTTP-клиент поверх роутера, сохраняющий cookie между запросами
// (сессия и remember-cookie ведут себя как в браузере).
type Client struct {
	t       *testing.T
	router  *gin.Engine
	cookies map[string]*http.Cookie
}

// NewClient создаёт клиента с пустым набором cookie.
func (e *TestEnv) NewClient(t *testing.T) *Client {
	return &Client{t: t, router: e.Router, cookies: map[string]*http.Cookie{}}
}

// Get выполняет GET-запрос с накопленными cookie.
func (c *Client) Get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	return c.do(req)
}

// PostForm выполняет POST-запрос с телом формы и накопленными cookie.
func (c *Client) PostForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *Client) do(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)
	for _, cookie := range rec.Result().Cookies() {
		if cookie.MaxAge < 0 {
			delete(c.cookies, cookie.Name)
			continue
		}
		c.cookies[cookie.Name] = cookie
	}
	return rec
}

// Count возвращает количество строк в таблице.
func (e *TestEnv) Count(t *testing.T, table string) int64 {
	t.Helper()
	var n int64
	if err := e.DB.Raw("SELECT COUNT(*) FROM " + table).Scan(&n).Error; err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}
