package postgres

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/VitaminP8/threadly/internal/config"
	"github.com/VitaminP8/threadly/models"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	_ "modernc.org/sqlite"
)

var DB *gorm.DB

// GetDB возвращает глобальную переменную DB (для тестирования)
func GetDB() *gorm.DB {
	return DB
}

// InitDB подключается к базе данных PostgreSQL и устанавливает глобальную переменную DB
func InitDB() error {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		config.GetEnv("DB_HOST"),
		config.GetEnv("DB_USER"),
		config.GetEnv("DB_PASSWORD"),
		config.GetEnv("DB_NAME"),
		config.GetEnv("DB_PORT"),
		config.GetEnv("DB_SSLMODE"),
	)

	db, err := gorm.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to the database: %w", err)
	}

	DB = db
	log.Println("Successfully connected to the database.")
	return nil
}

// InitSQLite открывает SQLite (чистый Go драйвер) через диалект sqlite3 gorm.
// Подходит для локального запуска и тестов; path может быть ":memory:".
func InitSQLite(path string) error {
	db, err := OpenSQLite(path)
	if err != nil {
		return err
	}
	DB = db
	log.Printf("Using SQLite database at %s", path)
	return nil
}

func OpenSQLite(path string) (*gorm.DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// SQLite допускает одного писателя; для ":memory:" каждое соединение - отдельная база
	sqlDB.SetMaxOpenConns(1)

	db, err := gorm.Open("sqlite3", sqlDB)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	return db, nil
}

// Migrate создает таблицы и индексы
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(&models.User{}, &models.Post{}, &models.Comment{}, &models.Reaction{}).Error
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// одна реакция на пару (автор, цель)
	err = db.Model(&models.Reaction{}).
		AddUniqueIndex("idx_reactions_author_target", "user_id", "target_kind", "target_id").Error
	if err != nil {
		return fmt.Errorf("failed to create reaction unique index: %w", err)
	}

	// для пересчета счетчиков по цели
	err = db.Model(&models.Reaction{}).
		AddIndex("idx_reactions_target", "target_kind", "target_id").Error
	if err != nil {
		return fmt.Errorf("failed to create reaction target index: %w", err)
	}
	return nil
}

// CloseDB закрывает соединение с базой данных
func CloseDB() error {
	if DB == nil {
		return nil
	}

	err := DB.Close()
	if err != nil {
		return fmt.Errorf("failed to close the database connection: %w", err)
	}

	log.Println("Database connection closed.")
	return nil
}

// InitDBWithConnection для тестирования (позволяет инъекцию соединения БД)
func InitDBWithConnection(db *gorm.DB) {
	DB = db
}
