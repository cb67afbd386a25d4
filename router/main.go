package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/skill-training-api/database"
	"github.com/sahilchouksey/skill-training-api/handlers"
	admin_handlers "github.com/sahilchouksey/skill-training-api/handlers/admin"
	auth_handlers "github.com/sahilchouksey/skill-training-api/handlers/auth"
	course_handlers "github.com/sahilchouksey/skill-training-api/handlers/course"
	payment_handlers "github.com/sahilchouksey/skill-training-api/handlers/payment"
	user_handlers "github.com/sahilchouksey/skill-training-api/handlers/user"
	"github.com/sahilchouksey/skill-training-api/services"
	"github.com/sahilchouksey/skill-training-api/services/payment"
	"github.com/sahilchouksey/skill-training-api/services/storage"
	"github.com/sahilchouksey/skill-training-api/utils/auth"
	"github.com/sahilchouksey/skill-training-api/utils/cache"
	"github.com/sahilchouksey/skill-training-api/utils/middleware"
	"github.com/sahilchouksey/skill-training-api/utils/validation"
	"go.uber.org/zap"
)

// Dependencies are the process-wide collaborators the routes are built from
type Dependencies struct {
	Store      database.Storage
	JWTManager *auth.JWTManager
	// Cache backs the course list and login lockouts. Nil falls back to an
	// in-process cache for lockouts and disables course caching.
	Cache          cache.Cache
	CourseCacheTTL time.Duration
	Files          storage.FileStore
	// Gateway is nil when the payment provider is not configured
	Gateway payment.Gateway
	Payment services.PaymentConfig
	Logger  *zap.Logger
}

func SetupRoutes(app *fiber.App, deps Dependencies) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// Brute force protection needs a counter store; keep it on without Redis
	lockoutCache := deps.Cache
	if lockoutCache == nil {
		lockoutCache = cache.NewMemoryCache()
	}
	bruteForceProtection := middleware.NewBruteForceProtection(lockoutCache, logger.Named("brute_force"))

	authMiddleware := middleware.NewAuthMiddleware(deps.JWTManager, deps.Store.Users())

	// Services
	validator := validation.NewValidator()
	authService := services.NewAuthService(deps.Store.Users(), deps.JWTManager, validator, logger.Named("auth"))
	courseService := services.NewCourseService(deps.Store.Courses(), deps.Cache, deps.CourseCacheTTL, logger.Named("courses"))
	progressService := services.NewProgressService(deps.Store.Users(), deps.Files, logger.Named("progress"))
	paymentService := services.NewPaymentService(deps.Store, deps.Gateway, deps.Payment, logger.Named("payments"))
	adminService := services.NewAdminService(deps.Store.Users(), courseService, logger.Named("admin"))

	// Handlers
	presenter := handlers.NewUserPresenter(deps.Files)
	authHandler := auth_handlers.NewAuthHandler(authService, bruteForceProtection, presenter, logger)
	courseHandler := course_handlers.NewCourseHandler(courseService, logger)
	paymentHandler := payment_handlers.NewPaymentHandler(paymentService, presenter, logger)
	progressHandler := user_handlers.NewProgressHandler(progressService, presenter, logger)
	studentsHandler := admin_handlers.NewStudentsHandler(adminService, presenter, logger)

	// Local uploads are served as static files
	if local, ok := deps.Files.(*storage.LocalStore); ok {
		app.Static(storage.AssignmentsURLPrefix, local.Dir(), fiber.Static{Browse: false})
	}

	api := app.Group("/api")

	api.Get("/health", handlers.HandleCheckHealth(deps.Store, paymentService, logger))

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/signup", authHandler.Signup)
	authGroup.Post("/login", bruteForceProtection.CheckLock(), authHandler.Login)
	authGroup.Get("/me", authMiddleware.Required(), authHandler.Me)

	// Course routes
	courses := api.Group("/courses")
	courses.Get("/", courseHandler.ListCourses)
	courses.Get("/enrolled/user", authMiddleware.Required(), courseHandler.ListEnrolled)
	courses.Get("/:courseId", courseHandler.GetCourse)

	// Payment routes
	payments := api.Group("/payments", authMiddleware.Required())
	payments.Post("/create-order", paymentHandler.CreateOrder)
	payments.Post("/verify", paymentHandler.VerifyPayment)

	// Student routes
	users := api.Group("/users", authMiddleware.Required())
	users.Put("/progress", authMiddleware.RequireStudent(), progressHandler.UpdateProgress)
	users.Post("/assignment", authMiddleware.RequireStudent(), progressHandler.SubmitAssignment)

	// Admin routes
	users.Get("/students", authMiddleware.RequireAdmin(), studentsHandler.ListStudents)
	users.Get("/students/stats", authMiddleware.RequireAdmin(), studentsHandler.Stats)
	users.Get("/students/shortlisted.csv", authMiddleware.RequireAdmin(), studentsHandler.ExportShortlisted)
	users.Put("/:userId/shortlist", authMiddleware.RequireAdmin(), studentsHandler.SetShortlist)
}
