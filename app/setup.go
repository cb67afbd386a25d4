package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sahilchouksey/skill-training-api/api"
	"github.com/sahilchouksey/skill-training-api/config"
	"github.com/sahilchouksey/skill-training-api/database"
	"github.com/sahilchouksey/skill-training-api/router"
	"github.com/sahilchouksey/skill-training-api/services"
	"github.com/sahilchouksey/skill-training-api/services/cron"
	"github.com/sahilchouksey/skill-training-api/services/payment"
	"github.com/sahilchouksey/skill-training-api/services/storage"
	"github.com/sahilchouksey/skill-training-api/utils/auth"
	"github.com/sahilchouksey/skill-training-api/utils/cache"
	"github.com/sahilchouksey/skill-training-api/utils/logger"
	"github.com/sahilchouksey/skill-training-api/utils/middleware"
	"go.uber.org/zap"
)

func SetupAndRunServer() error {

	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	log := logger.Must(getEnv.IsProduction())
	defer log.Sync()

	store, err := database.Open(getEnv)
	if err != nil {
		log.Error("failed to connect to database",
			zap.String("driver", getEnv.DB_DRIVER),
			zap.Error(err))
		return err
	}

	if err := store.Init(); err != nil {
		log.Error("failed to initialize database", zap.Error(err))
		store.Close()
		return err
	}

	seeder := database.NewSeeder(store, database.SeedConfig{
		AdminEmail:        getEnv.ADMIN_EMAIL,
		AdminPassword:     getEnv.ADMIN_PASSWORD,
		AllowDefaultAdmin: !getEnv.IsProduction(),
	})
	if err := seeder.SeedAll(context.Background()); err != nil {
		log.Error("failed to seed database", zap.Error(err))
		store.Close()
		return err
	}

	// Redis is optional; without it lockouts stay in-process and courses are not cached
	var sharedCache cache.Cache
	redisCache, err := cache.NewRedisCache(getEnv.REDIS_URL)
	if err != nil {
		log.Warn("redis unavailable, using in-process cache", zap.Error(err))
	} else {
		sharedCache = redisCache
	}

	var gateway payment.Gateway
	if getEnv.PaymentsConfigured() {
		gateway = payment.NewRazorpayGateway(payment.RazorpayConfig{
			KeyID:     getEnv.RAZORPAY_KEY_ID,
			KeySecret: getEnv.RAZORPAY_KEY_SECRET,
		})
		log.Info("razorpay configured")
	} else {
		log.Warn("razorpay credentials not configured, payment endpoints will answer 503")
	}
	paymentConfig := services.PaymentConfig{
		Currency:        getEnv.PAYMENT_CURRENCY,
		VerifySignature: getEnv.RAZORPAY_VERIFY_SIGNATURE,
	}

	files, err := openFileStore(getEnv)
	if err != nil {
		log.Error("failed to set up assignment storage", zap.Error(err))
		store.Close()
		return err
	}

	// Initialize Cron Manager (only if enabled via environment variable)
	var cronManager *cron.CronManager
	if getEnv.CRON_ENABLED {
		payments := services.NewPaymentService(store, gateway, paymentConfig, log.Named("payments"))
		cronManager = cron.NewCronManager(store.Users(), payments, files, log)
		if err := cronManager.Start(); err != nil {
			// Don't fail the app, just log the warning
			log.Warn("failed to start cron jobs", zap.Error(err))
			cronManager = nil
		}
	}

	// Defer closing DB, cache and stopping cron jobs
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		if redisCache != nil {
			redisCache.Close()
		}
		store.Close()
	}()

	// Init API
	server := api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT), log)
	app := server.GetEngine()

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    getEnv.ALLOWED_ORIGINS,
		RateLimitRequests: 300,
		RateLimitWindow:   time.Minute,
		AccessLog:         true,
		Logger:            log,
	})

	router.SetupRoutes(app, router.Dependencies{
		Store: store,
		JWTManager: auth.NewJWTManager(auth.JWTConfig{
			Secret: getEnv.JWT_SECRET,
			Expiry: getEnv.JWT_EXPIRY,
			Issuer: getEnv.JWT_ISSUER,
		}),
		Cache:          sharedCache,
		CourseCacheTTL: getEnv.COURSE_CACHE_TTL,
		Files:          files,
		Gateway:        gateway,
		Payment:        paymentConfig,
		Logger:         log,
	})

	// Graceful shutdown on SIGINT/SIGTERM
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info("shutting down server")
		if err := server.Shutdown(); err != nil {
			log.Error("server shutdown failed", zap.Error(err))
		}
	}()

	return server.Run()
}

// openFileStore selects where assignment uploads are written
func openFileStore(env *config.EnviornmentVariable) (storage.FileStore, error) {
	switch env.UPLOAD_BACKEND {
	case "local":
		return storage.NewLocalStore(env.UPLOAD_DIR)
	case "spaces":
		return storage.NewSpacesStore(storage.SpacesConfig{
			AccessKey: env.DO_SPACES_KEY,
			SecretKey: env.DO_SPACES_SECRET,
			Bucket:    env.DO_SPACES_BUCKET,
			Region:    env.DO_SPACES_REGION,
			Endpoint:  env.DO_SPACES_ENDPOINT,
			CDNURL:    env.DO_SPACES_CDN_URL,
		})
	default:
		return nil, fmt.Errorf("unsupported UPLOAD_BACKEND %q", env.UPLOAD_BACKEND)
	}
}
