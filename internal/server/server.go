package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"fittrack/internal/config"
	"fittrack/internal/database"
	authhandler "fittrack/internal/handler/auth"
	"fittrack/internal/handler/health"
	"fittrack/internal/handler/middleware"
	"fittrack/internal/handler/render"
	routinehandler "fittrack/internal/handler/routine"
	pgrepo "fittrack/internal/repository/postgres"
	"fittrack/internal/session"
	"fittrack/internal/templates"
	authuc "fittrack/internal/usecase/auth"
	routineuc "fittrack/internal/usecase/routine"
	"fittrack/pkg/logger"
	"fittrack/pkg/remember"
)

// Server представляет HTTP сервер приложения
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	db         *database.DB
	cfg        *config.Config

	sessions       *session.Manager
	renderer       *render.Renderer
	authHandler    *authhandler.Handler
	routineHandler *routinehandler.Handler
}

// NewServer создает новый экземпляр сервера
func NewServer(cfg *config.Config, db *database.DB) (*Server, error) {
	// Устанавливаем режим Gin в зависимости от окружения
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	tmpl, err := templates.Parse()
	if err != nil {
		return nil, fmt.Errorf("ошибка разбора шаблонов: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	s := &Server{
		router: router,
		db:     db,
		cfg:    cfg,
	}

	// Инициализируем зависимости доменов один раз
	gormDB := db.DB
	userRepo := pgrepo.NewUserRepository(gormDB)
	routineRepo := pgrepo.NewRoutineRepository(gormDB)

	rememberSvc := remember.NewService(&cfg.Session)
	s.sessions = session.NewManager(&cfg.Session, rememberSvc, cfg.AppEnv == "production")
	s.renderer = render.NewRenderer(s.sessions)

	authService := authuc.NewService(userRepo)
	routineService := routineuc.NewService(routineRepo)
	s.authHandler = authhandler.NewHandler(authService, s.sessions, s.renderer)
	s.routineHandler = routinehandler.NewHandler(routineService, s.sessions, s.renderer)

	// Настраиваем middleware и роуты
	s.setupMiddleware(userRepo)
	s.setupRoutes()

	return s, nil
}

// setupMiddleware настраивает middleware для роутера
func (s *Server) setupMiddleware(userRepo *pgrepo.UserRepository) {
	lg := logger.Default()

	// Recovery middleware - должен быть первым для перехвата паник
	s.router.Use(middleware.Recovery(lg, s.renderer.ServerError))

	// RequestID middleware - идентификатор запроса для логов и заголовка ответа
	s.router.Use(middleware.RequestID())

	// Logger middleware - логирование всех запросов
	s.router.Use(middleware.LoggerStructured(lg))

	// CORS middleware - настройка CORS
	s.router.Use(middleware.CORS(&s.cfg.CORS))

	// LoadUser middleware - разрешение сессии в текущего пользователя
	s.router.Use(middleware.LoadUser(s.sessions, userRepo))
}

// setupRoutes настраивает маршруты приложения
func (s *Server) setupRoutes() {
	s.setupHealthRoutes()
	s.setupPublicRoutes()
	s.setupAdminRoutes()

	// Неизвестный адрес — страница 404
	s.router.NoRoute(s.renderer.NotFound)
}

// setupHealthRoutes настраивает health-check эндпоинты.
func (s *Server) setupHealthRoutes() {
	healthHandler := health.NewHandler(s.db, s.cfg.AppEnv)
	// GET /health — базовый health-check сервера (жив ли процесс).
	s.router.GET("/health", healthHandler.Health)
	// GET /health/db — проверка доступности базы данных.
	s.router.GET("/health/db", healthHandler.HealthDB)
}

// setupPublicRoutes настраивает роуты, не требующие аутентификации.
func (s *Server) setupPublicRoutes() {
	// GET / — главная страница со всеми программами, новые первыми.
	s.router.GET("/", s.routineHandler.Index)
	// GET /routine/{slug}/ — страница программы; 404, если слаг неизвестен.
	s.router.GET("/routine/:slug/", s.routineHandler.Detail)

	// GET,POST /login — форма входа и её обработка.
	s.router.GET("/login", s.authHandler.ShowLogin)
	s.router.POST("/login", s.authHandler.Login)
	// GET,POST /signup/ — форма регистрации и её обработка.
	s.router.GET("/signup/", s.authHandler.ShowSignup)
	s.router.POST("/signup/", s.authHandler.Signup)
	// GET /logout — завершение сессии.
	s.router.GET("/logout", s.authHandler.Logout)
}

// setupAdminRoutes настраивает роуты, требующие аутентификации.
func (s *Server) setupAdminRoutes() {
	admin := s.router.Group("/admin")
	admin.Use(middleware.RequireAuth())
	{
		// GET,POST /admin/routine/ — создание программы с упражнениями.
		admin.GET("/routine/", s.routineHandler.ShowCreate)
		admin.POST("/routine/", s.routineHandler.Create)
		// GET /admin/my-routines — программы текущего пользователя.
		admin.GET("/my-routines", s.routineHandler.MyRoutines)
	}
}

// Start запускает HTTP сервер с graceful shutdown
func (s *Server) Start() error {
	address := s.cfg.Server.Address()

	s.httpServer = &http.Server{
		Addr:           address,
		Handler:        s.router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	// Канал для получения сигналов ОС
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Канал для ошибок запуска сервера
	serverErr := make(chan error, 1)

	// Запускаем сервер в отдельной горутине
	go func() {
		log.Printf("HTTP сервер запущен на %s", address)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- fmt.Errorf("ошибка запуска HTTP сервера: %w", err)
		}
	}()

	// Ожидаем либо сигнал для graceful shutdown, либо ошибку запуска
	select {
	case err := <-serverErr:
		// Если сервер не смог запуститься, пытаемся корректно остановить
		log.Printf("Ошибка запуска сервера: %v", err)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpServer.Shutdown(ctx)
		return err
	case sig := <-quit:
		log.Printf("Получен сигнал %v для остановки сервера...", sig)
	}

	// Создаем контекст с таймаутом для graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Останавливаем сервер
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при остановке сервера: %w", err)
	}

	log.Println("HTTP сервер успешно остановлен")
	return nil
}

// GetRouter возвращает роутер (для тестирования)
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}
