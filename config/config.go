package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort   string
	DatabaseDSN  string
	AccessSecret string
	BaseURL      string

	KafkaBroker   string
	KafkaTopic    string
	KafkaUsername string
	KafkaPassword string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	CloudinaryURL string
}

func LoadConfig() Config {
	if os.Getenv("ENV") != "prod" {
		if err := godotenv.Overload(); err != nil {
			log.Println("warning: env file not found or could not be loaded:", err)
		}
	}

	return Config{
		ServerPort:   os.Getenv("SERVER_PORT"),
		DatabaseDSN:  os.Getenv("DATABASE_DSN"),
		AccessSecret: os.Getenv("ACCESS_SECRET"),
		BaseURL:      os.Getenv("BASE_URL"),

		KafkaBroker:   os.Getenv("KAFKA_BROKER"),
		KafkaTopic:    os.Getenv("KAFKA_TOPIC"),
		KafkaUsername: os.Getenv("KAFKA_USERNAME"),
		KafkaPassword: os.Getenv("KAFKA_PASSWORD"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),

		CloudinaryURL: os.Getenv("CLOUDINARY_URL"),
	}
}
