package config

import (
	"fmt"
	"log"
	"os"

	"github.com/inkpress/api-go/models"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// PinStoreConfig points at the S3-compatible bucket the pinning endpoints
// presign against. The API only ever hands out locators; content itself never
// passes through this service.
type PinStoreConfig struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicURL       string
	Region          string
}

func GetPinStoreConfig() *PinStoreConfig {
	return &PinStoreConfig{
		AccountID:       os.Getenv("PINSTORE_ACCOUNT_ID"),
		AccessKeyID:     os.Getenv("PINSTORE_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("PINSTORE_SECRET_ACCESS_KEY"),
		BucketName:      os.Getenv("PINSTORE_BUCKET_NAME"),
		PublicURL:       os.Getenv("PINSTORE_PUBLIC_URL"),
		Region:          "auto",
	}
}

func ConnectDatabase() (*gorm.DB, error) {
	err := godotenv.Load()
	if err != nil {
		// Log the error but don't fail - might be in production without .env file
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost user=inkpress dbname=inkpress port=5432 sslmode=disable"
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return db, nil
}

func InitDB() *gorm.DB {
	dbHost := os.Getenv("DB_HOST")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbPort := os.Getenv("DB_PORT")

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		dbHost, dbUser, dbPassword, dbName, dbPort)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto Migrate models
	db.AutoMigrate(&models.Identity{}, &models.RefreshToken{}, &models.Article{}, &models.Flag{}, &models.Dispute{}, &models.ReputationEvent{}, &models.Subscription{}, &models.Proposal{}, &models.Vote{})

	return db
}
