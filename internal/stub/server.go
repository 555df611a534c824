package stub

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/danaam/danaam-go/domain"
	"github.com/danaam/danaam-go/internal/config"
	"github.com/danaam/danaam-go/internal/stub/auth"
	"github.com/danaam/danaam-go/internal/stub/handlers"
	"github.com/danaam/danaam-go/internal/stub/middleware"
	"github.com/danaam/danaam-go/internal/stub/notifications"
	"github.com/danaam/danaam-go/internal/stub/otpstore"
	"github.com/danaam/danaam-go/internal/stub/storage"
)

// Run starts the stub backend and blocks serving HTTP.
func Run(cfg *config.Config) error {
	gin.SetMode(cfg.GinMode)

	gdb, err := storage.Open(cfg.DSN, cfg.SQLitePath)
	if err != nil {
		return err
	}
	if err := storage.AutoMigrate(gdb); err != nil {
		return err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.StubRedisAddr,
		Password: cfg.StubRedisPassword,
		DB:       cfg.StubRedisDB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return err
	}

	cas, err := auth.NewCasbinService(gdb, cfg.CasbinModelPath)
	if err != nil {
		return err
	}
	if err := cas.SeedPolicies(); err != nil {
		return err
	}

	passwordSvc := auth.NewPasswordService()
	tokenSvc := auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTTL, cfg.RefreshTTL)
	notificationSvc := notifications.NewTwilioService(cfg.TwilioSID, cfg.TwilioToken, cfg.TwilioFrom)

	userRepo := storage.NewUserRepository(gdb)
	regRepo := storage.NewRegistrationRequestRepository(gdb)
	challenges := otpstore.NewRedisStore(rdb, cfg.OTPTTL, 10*time.Minute)

	if err := seedAdmin(userRepo, passwordSvc, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return err
	}

	otpCfg := handlers.OTPConfig{
		Length:       cfg.OTPLength,
		TTL:          cfg.OTPTTL,
		MaxAttempts:  cfg.OTPMaxAttempts,
		ResendLimit:  cfg.OTPResendLimit,
		ResendWindow: cfg.OTPResendWindow,
	}
	authH := handlers.NewAuthHandlers(userRepo, passwordSvc, tokenSvc, challenges, notificationSvc, otpCfg)
	profileH := handlers.NewProfileHandlers(userRepo)
	userH := handlers.NewUserHandlers(userRepo)
	regH := handlers.NewRegistrationHandlers(regRepo, userRepo, passwordSvc, challenges, notificationSvc)

	r := BuildRouter(authH, profileH, userH, regH, middleware.Auth(tokenSvc), cas.E)

	addr := ":" + cfg.StubPort
	log.Printf("stub backend listening on %s", addr)
	return http.ListenAndServe(addr, r)
}

// seedAdmin creates the bootstrap admin account if no user holds the
// configured email yet.
func seedAdmin(userRepo domain.UserRepository, passwordSvc domain.PasswordService, email, password string) error {
	ctx := context.Background()
	if _, err := userRepo.FindByEmail(ctx, email); err == nil {
		return nil
	}
	hash, err := passwordSvc.Hash(password)
	if err != nil {
		return err
	}
	admin := &domain.StubUser{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		UserClass:    domain.ClassAdmin,
		FirstName:    "Platform",
		LastName:     "Admin",
		Enabled:      true,
		CreatedAt:    time.Now(),
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		return err
	}
	log.Printf("seeded admin account %s", email)
	return nil
}
