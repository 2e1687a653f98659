package api

import (
	"context"
	"log"

	"github.com/CodeCraftStudio/auth_service/config"
	"github.com/CodeCraftStudio/auth_service/infra/queue"
	"github.com/CodeCraftStudio/auth_service/internal/api/rest/handlers"
	"github.com/CodeCraftStudio/auth_service/internal/auth/google"
	"github.com/CodeCraftStudio/auth_service/internal/domain"
	"github.com/CodeCraftStudio/auth_service/internal/helper"
	"github.com/CodeCraftStudio/auth_service/internal/interfaces"
	"github.com/CodeCraftStudio/auth_service/internal/repository"
	"github.com/CodeCraftStudio/auth_service/internal/services"
	"github.com/CodeCraftStudio/auth_service/pkg/cloudinary"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func StartServer(cfg config.Config) {
	app := fiber.New()

	// ---------- CORS ----------
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.BaseURL,
		AllowHeaders:     "Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	// ---------- DB ----------
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DatabaseDSN,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	if err != nil {
		log.Fatalf("database connection error: %v", err)
	}
	log.Println("database connected")

	// ---------- MIGRATION (guarded by advisory lock) ----------
	const migrateLockID int64 = 20260901

	if err := db.Exec("SELECT pg_advisory_lock(?)", migrateLockID).Error; err != nil {
		log.Fatalf("migration lock error: %v", err)
	}
	defer func() {
		_ = db.Exec("SELECT pg_advisory_unlock(?)", migrateLockID).Error
	}()

	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Appointment{},
	); err != nil {
		log.Fatalf("migration error: %v", err)
	}
	log.Println("migration successful")

	// ---------- Infra ----------
	var producer interfaces.ProducerHandler
	if cfg.KafkaBroker != "" {
		producer = queue.NewProducer(
			cfg.KafkaBroker,
			cfg.KafkaTopic,
			cfg.KafkaUsername,
			cfg.KafkaPassword,
		)
	}

	var uploader interfaces.Uploader
	if cfg.CloudinaryURL != "" {
		cld, err := cloudinary.New()
		if err != nil {
			log.Fatalf("cloudinary init error: %v", err)
		}
		uploader = cloudinary.NewCloudinaryUploader(cld)
	}

	var googleProvider *google.Provider
	if cfg.GoogleClientID != "" {
		googleProvider, err = google.New(
			context.Background(),
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.GoogleRedirectURL,
		)
		if err != nil {
			log.Fatalf("google provider init error: %v", err)
		}
	} else {
		log.Println("google sign-in disabled: GOOGLE_CLIENT_ID not set")
	}

	authHelper := helper.SetupAuth(cfg.AccessSecret)

	// ---------- Repositories ----------
	userRepo := repository.NewUserRepository(db)
	apptRepo := repository.NewAppointmentRepository(db)

	// ---------- Services ----------
	authSvc := services.NewAuthService(userRepo, producer, authHelper)
	apptSvc := services.NewAppointmentService(apptRepo, producer)

	// ---------- Handlers ----------
	handlers.NewAuthHandler(authSvc, authHelper, googleProvider).SetupRoutes(app)
	handlers.NewUploadHandler(authSvc, authHelper, uploader).SetupRoutes(app)
	handlers.NewAppointmentHandler(apptSvc, authSvc, authHelper).SetupRoutes(app)

	// ---------- Health ----------
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// ---------- Listen ----------
	addr := cfg.ServerPort
	log.Println("listening on", addr)
	log.Fatal(app.Listen(addr))
}
