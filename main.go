package main

import (
	"log"

	"lms/config"
	paymentController "lms/controllers/payment"
	"lms/database"
	"lms/payment"
	authRoutes "lms/routers/authRoutes"
	cartRoutes "lms/routers/cartRoutes"
	courseRoutes "lms/routers/courseRoutes"
	paymentRoutes "lms/routers/paymentRoutes"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",
		AllowHeaders: "Content-Type,Authorization,Stripe-Signature",
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	provider := payment.NewStripeProvider(config.AppConfig.StripeSecretKey)
	pc := paymentController.New(database.Database.Db, provider, config.AppConfig.StripeWebhookSecret)

	authRoutes.SetupAuthRoutes(app)
	courseRoutes.SetupCourseRoutes(app)
	cartRoutes.SetupCartRoutes(app)
	paymentRoutes.SetupPaymentRoutes(app, pc)

	utils.StartLedgerScheduler()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
