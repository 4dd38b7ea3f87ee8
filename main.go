package main

import (
	"log"

	"readiq/config"
	authController "readiq/controllers/auth"
	courseController "readiq/controllers/course"
	enrollmentController "readiq/controllers/enrollment"
	paymentController "readiq/controllers/payment"
	walletController "readiq/controllers/wallet"
	"readiq/database"
	"readiq/gateways"
	"readiq/middleware"
	authRoutes "readiq/routers/authRoutes"
	courseRoutes "readiq/routers/courseRoutes"
	enrollmentRoutes "readiq/routers/enrollmentRoutes"
	paymentRoutes "readiq/routers/paymentRoutes"
	walletRoutes "readiq/routers/walletRoutes"
	"readiq/storage"
	"readiq/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	cfg := config.LoadConfig()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.BootstrapAdmin(db, cfg.AdminEmail); err != nil {
		log.Fatalf("Failed to bootstrap admin account: %v", err)
	}

	objectStore, err := storage.NewClient(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}

	areeba := gateways.NewAreeba(cfg)
	zaincash := gateways.NewZainCash(cfg)
	mailer := utils.NewMailer(cfg)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))

	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	// Serve static files from the public folder
	app.Static("/", "./public")

	protected := middleware.Protected(cfg.JWTKey)
	adminOnly := middleware.AdminOnly(db)

	authRoutes.SetupAuthRoutes(app, authController.New(db, cfg))
	courseRoutes.SetupCourseRoutes(app, courseController.New(db, objectStore, cfg.BaseURL), protected, adminOnly)
	enrollmentRoutes.SetupEnrollmentRoutes(app, enrollmentController.New(db), protected)
	paymentRoutes.SetupPaymentRoutes(app, paymentController.New(db, areeba, zaincash, mailer, cfg.BaseURL), protected)
	walletRoutes.SetupWalletRoutes(app, walletController.New(db), protected, adminOnly)

	sweeper := utils.StartPendingSweeper(db)
	defer sweeper.Stop()

	log.Printf("Server is running on port %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
