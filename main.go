package main

import (
	"codecash/config"
	derivController "codecash/controllers/deriv"
	mpesaController "codecash/controllers/mpesa"
	"codecash/database"
	"codecash/deriv"
	"codecash/mpesa"
	authRoutes "codecash/routers/authRoutes"
	derivRoutes "codecash/routers/derivRoutes"
	mpesaRoutes "codecash/routers/mpesaRoutes"
	transactionRoutes "codecash/routers/transactionRoutes"
	"codecash/utils"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",
		AllowHeaders: "Content-Type,Authorization,X-Deriv-Token",
	}))

	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${locals:requestid} ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":      "ok",
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"environment": config.AppConfig.MpesaEnv,
		})
	})

	cfg := config.AppConfig
	auth := mpesa.NewAuth(cfg.MpesaEnv, cfg.MpesaConsumerKey, cfg.MpesaConsumerSecret)
	stk := mpesa.NewSTKPush(auth, cfg.MpesaEnv, cfg.MpesaShortcode, cfg.MpesaPasskey, cfg.MpesaCallbackBaseURL)
	b2c := mpesa.NewB2C(auth, cfg.MpesaEnv, cfg.MpesaShortcode, cfg.MpesaInitiatorName, cfg.MpesaSecurityCredential, cfg.MpesaCallbackBaseURL)
	ledger := mpesa.NewMemoryStore()

	mpesaHandler := mpesaController.New(ledger, stk, b2c)
	derivHandler := derivController.New(deriv.New(cfg.DerivAppID))

	authRoutes.SetupAuthRoutes(app)
	mpesaRoutes.SetupMpesaRoutes(app, mpesaHandler)
	transactionRoutes.SetupTransactionRoutes(app)
	derivRoutes.SetupDerivRoutes(app, derivHandler)

	utils.InitializeResetTokenScheduler()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
