package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/amoralabs/amora-backend/internal/analytics"
	"github.com/amoralabs/amora-backend/internal/cache"
	"github.com/amoralabs/amora-backend/internal/handlers"
	"github.com/amoralabs/amora-backend/internal/middleware"
	"github.com/amoralabs/amora-backend/internal/notify"
	"github.com/amoralabs/amora-backend/internal/push"
	"github.com/amoralabs/amora-backend/internal/realtime"
	"github.com/amoralabs/amora-backend/internal/repository"
	"github.com/amoralabs/amora-backend/internal/service"
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName: "Amora Backend",
	})

	// Middleware
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     os.Getenv("ALLOWED_ORIGINS"),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	// Initialize database connection
	db, err := repository.InitDB()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize Redis cache
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if parsedDB, err := strconv.Atoi(dbStr); err == nil {
			redisDB = parsedDB
		}
	}

	redisCache := cache.NewRedisCache(redisAddr, redisPassword, redisDB)
	if err := redisCache.Ping(); err != nil {
		log.Printf("WARNING: Redis connection failed: %v. Running without cache.", err)
		redisCache = nil
	} else {
		log.Println("Redis cache connected successfully")
		defer redisCache.Close()
	}
	syncCache := cache.NewSyncCache(redisCache)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	discussionRepo := repository.NewDiscussionRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	readStateRepo := repository.NewDiscussionReadStateRepository(db)
	pendingRepo := repository.NewPendingNotificationRepository(db)
	subscriptionRepo := repository.NewPushSubscriptionRepository(db)
	deliveryRepo := repository.NewDeliveryRecordRepository(db)
	preferenceRepo := repository.NewNotificationPreferenceRepository(db)

	// Initialize services
	discussionService := service.NewDiscussionService(discussionRepo, readStateRepo, messageRepo, syncCache)
	messageService := service.NewMessageService(messageRepo, discussionRepo, syncCache)

	// Initialize the push pipeline
	vapidKeys, err := push.LoadVAPIDKeys()
	if err != nil {
		log.Fatal("Failed to load VAPID keys:", err)
	}
	sender := push.NewWebPushSender(vapidKeys, os.Getenv("VAPID_SUBSCRIBER"))
	recorder := analytics.NewRecorder(deliveryRepo)
	dispatcher := push.NewDispatcher(subscriptionRepo, sender, recorder)
	aggregator := notify.NewAggregator(pendingRepo, dispatcher, nil)
	pingLimiter := notify.NewPingLimiter(pendingRepo)
	pingService := notify.NewPingService(pendingRepo, pingLimiter, dispatcher)

	// Initialize handlers
	hub := realtime.NewHub()
	wsHandler := handlers.NewWebSocketHandler(discussionService, userRepo, hub)
	notificationHandler := handlers.NewNotificationHandler(aggregator)
	pushHandler := handlers.NewPushHandler(subscriptionRepo, pendingRepo, dispatcher, recorder, vapidKeys)
	pingHandler := handlers.NewPingHandler(pingService, userRepo, hub)
	discussionHandler := handlers.NewDiscussionHandler(discussionService, hub)
	messageHandler := handlers.NewMessageHandler(messageService, discussionService, userRepo, aggregator, hub)
	preferenceHandler := handlers.NewPreferenceHandler(preferenceRepo)

	// Public routes
	api := app.Group("/api", middleware.OriginAllowed())
	api.Get("/push/vapid-key", pushHandler.VAPIDKey)

	// Protected routes
	protected := api.Group("/", middleware.AuthRequired())
	protected.Post("/notifications", notificationHandler.HandleEvent)

	protected.Get("/push/subscriptions", pushHandler.SubscriptionStatus)
	protected.Post("/push/subscriptions", pushHandler.Subscribe)
	protected.Delete("/push/subscriptions", pushHandler.Unsubscribe)
	protected.Post("/push/send", pushHandler.Send)
	protected.Get("/push/analytics", pushHandler.Analytics)
	protected.Post("/push/clicked", pushHandler.Clicked)

	protected.Post(
		"/ping",
		limiter.New(limiter.Config{
			Max:        30,
			Expiration: time.Minute,
		}),
		pingHandler.Send,
	)
	protected.Get("/ping/status", pingHandler.Status)

	protected.Get("/discussions", discussionHandler.List)
	protected.Post("/discussions", discussionHandler.Create)
	protected.Post("/discussions/:id/read", discussionHandler.MarkRead)
	protected.Put("/discussions/:id/status", discussionHandler.SetStatus)
	protected.Get("/discussions/:id/unread", discussionHandler.Unread)
	protected.Get("/discussions/:id/pinned", messageHandler.ListPinned)

	protected.Get("/messages", messageHandler.List)
	protected.Post("/messages", messageHandler.Send)
	protected.Put("/messages/:id/pinned", messageHandler.SetPinned)
	protected.Post("/messages/:id/reactions", messageHandler.React)
	protected.Delete("/messages/:id/reactions", messageHandler.Unreact)

	protected.Get("/preferences", preferenceHandler.List)
	protected.Put("/preferences", preferenceHandler.Set)

	// WebSocket route (websocket upgrade needs special handling)
	app.Use(
		"/ws",
		middleware.OriginAllowed(),
		middleware.AuthRequired(),
		func(c *fiber.Ctx) error {
			// Upgrade to WebSocket
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		},
	)
	app.Get("/ws", websocket.New(wsHandler.HandleWebSocket))

	// Prometheus metrics
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":     "ok",
			"message":    "Amora is running",
			"ws_clients": hub.Count(),
		})
	})

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s...", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
