package api

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/teja-0311/Kisanmarket/internal/ai"
	"github.com/teja-0311/Kisanmarket/internal/api/handlers"
	"github.com/teja-0311/Kisanmarket/internal/api/middleware"
	"github.com/teja-0311/Kisanmarket/internal/config"
	"github.com/teja-0311/Kisanmarket/internal/services"
	"github.com/teja-0311/Kisanmarket/internal/sms"
	"github.com/teja-0311/Kisanmarket/internal/storage"
)

// SetupRouter configures and returns the main Gin engine. smsEnqueuer
// may be nil when the API runs without a background worker.
func SetupRouter(cfg *config.Config, db *mongo.Database, verifier sms.Verifier, smsEnqueuer services.ISMSEnqueuer) *gin.Engine {
	// Initialize services needed by API handlers
	userService := services.NewUserService(db, verifier)
	productService := services.NewProductService(db, services.NewRoleUpgradeHandler(userService))
	cartService := services.NewCartService(db)
	notificationService := services.NewNotificationService(db)
	orderService := services.NewOrderService(db, notificationService, smsEnqueuer)
	assistant := ai.NewOpenAIAssistant(cfg)

	var imageStorage storage.IImageStorage
	if os.Getenv("MOCK_SERVICES") == "true" {
		log.Println("MOCK_SERVICES enabled: Using stub image storage.")
		imageStorage = storage.NewStubStorage()
	} else {
		var err error
		imageStorage, err = storage.NewCloudinaryStorage(cfg)
		if err != nil {
			log.Fatalf("CRITICAL: Failed to initialize Cloudinary storage for API: %v", err)
		}
	}

	r := gin.Default()

	// Apply global middleware first (order matters)
	rateLimiter := middleware.NewRateLimiterMiddleware(cfg)
	r.Use(middleware.CORSMiddleware())
	r.Use(rateLimiter.Limit())

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, cfg)
	productHandler := handlers.NewProductHandler(productService, imageStorage)
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(orderService, notificationService)
	aiHandler := handlers.NewAIHandler(assistant)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/test", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "API is working"})
		})

		// Public routes
		apiGroup.POST("/auth/signup", authHandler.Signup)
		apiGroup.POST("/auth/verify-otp", authHandler.VerifyOTP)
		apiGroup.POST("/auth/login", authHandler.Login)
		apiGroup.POST("/auth/forgot-password", authHandler.ForgotPassword)
		apiGroup.POST("/auth/reset-password", authHandler.ResetPassword)

		apiGroup.GET("/products", productHandler.ListProducts)
		apiGroup.GET("/products/:id", productHandler.GetProductByID)

		// The mobile client addresses carts by phone before login.
		apiGroup.GET("/cart/:phone", cartHandler.GetCart)
		apiGroup.POST("/cart/update", cartHandler.UpdateCart)
		apiGroup.DELETE("/cart/clear/:phone", cartHandler.ClearCart)

		apiGroup.POST("/ai", aiHandler.Ask)

		// Authenticated routes
		authRequired := apiGroup.Group("/")
		authRequired.Use(middleware.AuthMiddleware(cfg.JwtSecret))
		{
			authRequired.POST("/products/add", productHandler.CreateProduct)
			authRequired.GET("/products/mine", productHandler.MyProducts)

			authRequired.POST("/orders", orderHandler.PlaceOrder)
			authRequired.PUT("/orders/:id/status", orderHandler.UpdateOrderStatus)
			authRequired.GET("/orders/farmer", orderHandler.FarmerOrders)
			authRequired.GET("/orders/customer", orderHandler.CustomerOrders)
			authRequired.GET("/orders/notifications", orderHandler.Notifications)
		}
	}

	return r
}
