package database

import (
	"codecash/models"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DbInstance struct holds the database connection instance
type DbInstance struct {
	Db *gorm.DB
}

// Database is the global database instance. Db is nil when all connection
// attempts failed; callers must check before touching it.
var Database DbInstance

const (
	connectAttempts   = 5
	connectRetryDelay = 5 * time.Second
)

// ConnectDb establishes a connection to PostgreSQL with bounded retries.
// If every attempt fails the server keeps running without a database: the
// in-memory payment ledger still works, durable history does not.
func ConnectDb() {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	var db *gorm.DB
	var err error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			break
		}
		log.Printf("Database connection failed (attempt %d/%d): %v", attempt, connectAttempts, err)
		if attempt < connectAttempts {
			time.Sleep(connectRetryDelay)
		}
	}
	if err != nil {
		log.Println("All database connection attempts failed. Running with in-memory ledger only.")
		Database = DbInstance{Db: nil}
		return
	}

	// Set up connection pooling
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(0)

	runMigrations(db)

	Database = DbInstance{Db: db}
}

// runMigrations performs database migrations
func runMigrations(db *gorm.DB) {
	log.Println("Running Migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.PasswordReset{},
		&models.Transaction{},
	)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Migrations completed successfully.")
}
