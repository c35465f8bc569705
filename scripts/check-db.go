package main

import (
	"fmt"
	"log"
	"os"

	"fittrack/internal/config"
	"fittrack/internal/database"
)

func main() {
	log.Println("Проверка подключения к базе данных...")

	// Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	log.Printf("Параметры подключения:")
	log.Printf("  Host: %s", cfg.Database.Host)
	log.Printf("  Port: %s", cfg.Database.Port)
	log.Printf("  User: %s", cfg.Database.User)
	log.Printf("  Database: %s", cfg.Database.DBName)
	log.Printf("  SSL Mode: %s", cfg.Database.SSLMode)

	// Пытаемся подключиться к базе данных
	db, err := database.NewConnection(&cfg.Database, cfg.AppEnv)
	if err != nil {
		log.Fatalf("❌ Ошибка подключения к базе данных: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Ошибка закрытия подключения: %v", err)
		}
	}()

	// Проверяем подключение через Ping
	if err := db.Ping(); err != nil {
		log.Fatalf("❌ Ошибка проверки подключения (Ping): %v", err)
	}

	log.Println("✅ Подключение к базе данных успешно установлено!")

	// Дополнительная проверка - выполняем простой запрос
	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		log.Fatalf("❌ Ошибка выполнения тестового запроса: %v", err)
	}
	if result != 1 {
		log.Printf("❌ Неожиданный результат тестового запроса: %d", result)
		os.Exit(1)
	}

	// Проверяем, что схема накатана: таблицы создаются через cmd/migrate
	var tables int
	err = db.Raw(`SELECT COUNT(*) FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name IN ('users', 'routines', 'exercises')`).
		Scan(&tables).Error
	if err != nil {
		log.Fatalf("❌ Ошибка проверки схемы: %v", err)
	}
	if tables < 3 {
		log.Printf("⚠️  Найдено %d из 3 таблиц. Запустите миграции: go run ./cmd/migrate -up", tables)
		os.Exit(1)
	}

	fmt.Println("\n🎉 Все проверки пройдены! База данных готова к работе.")
}
