package main

import (
	"log"

	"fittrack/internal/config"
	"fittrack/internal/database"
	"fittrack/internal/server"
)

func main() {
	log.Println("Запуск FitTrack...")

	// Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	log.Printf("Конфигурация загружена успешно")
	log.Printf("База данных: %s@%s:%s/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем подключение к базе данных
	db, err := database.NewConnection(&cfg.Database, cfg.AppEnv)
	if err != nil {
		log.Fatalf("Ошибка подключения к базе данных: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Ошибка закрытия подключения к базе данных: %v", err)
		}
	}()

	// Собираем и запускаем HTTP сервер
	srv, err := server.NewServer(cfg, db)
	if err != nil {
		log.Fatalf("Ошибка инициализации сервера: %v", err)
	}
	if err := srv.Start(); err != nil {
		log.Fatalf("Ошибка работы сервера: %v", err)
	}
}
