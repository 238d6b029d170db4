package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/meinhoongagan/homeservice/config"
	"github.com/meinhoongagan/homeservice/cron"
	"github.com/meinhoongagan/homeservice/db"
	"github.com/meinhoongagan/homeservice/logger"
	"github.com/meinhoongagan/homeservice/middleware"
	"github.com/meinhoongagan/homeservice/redis"
	"github.com/meinhoongagan/homeservice/routes"
	"github.com/meinhoongagan/homeservice/services"
	"github.com/meinhoongagan/homeservice/utils"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("homeservice: %v", err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	zlog, err := logger.New(cfg.IsProduction())
	if err != nil {
		return err
	}
	defer zlog.Sync()

	gdb, err := db.Open(cfg.DatabaseURL, zlog)
	if err != nil {
		return err
	}
	if sqlDB, err := gdb.DB(); err == nil {
		defer sqlDB.Close()
	}
	if cfg.AutoMigrate {
		if err := db.Migrate(gdb); err != nil {
			return err
		}
		zlog.Info("database migrated")
	}

	identity := services.NewIdentity(gdb)
	if cfg.Admin.Email != "" && cfg.Admin.Password != "" {
		if err := identity.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			return err
		}
	}

	var (
		revoker services.TokenRevoker
		checker middleware.RevocationChecker
	)
	if cfg.Redis.Addr != "" {
		client, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer client.Close()
		denylist := redis.NewTokenDenylist(client)
		revoker, checker = denylist, denylist
	} else {
		zlog.Warn("REDIS_ADDR not set, logout will not revoke tokens")
	}

	files, err := newFileStore(ctx, cfg)
	if err != nil {
		return err
	}

	auth := services.NewAuthService(
		gdb,
		identity,
		newMailer(cfg, zlog),
		files,
		services.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL),
		revoker,
		services.AuthOptions{TicketTTL: cfg.Auth.OTPTTL, MaxAttempts: cfg.Auth.OTPMaxAttempts},
		zlog,
	)

	app := routes.New(routes.Deps{
		Auth:               auth,
		Profiles:           services.NewProfileService(gdb),
		Catalog:            services.NewCatalogService(gdb, zlog),
		Bookings:           services.NewBookingService(gdb, zlog),
		Messaging:          services.NewMessagingService(gdb, zlog),
		Admin:              services.NewAdminService(gdb, identity, zlog),
		JWTSecret:          cfg.Auth.JWTSecret,
		Denylist:           checker,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Log:                zlog,
	})

	scheduler, err := cron.Start(cfg.CronSpec, auth, zlog)
	if err != nil {
		return err
	}
	defer scheduler.Stop()

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zlog.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

func newFileStore(ctx context.Context, cfg *config.Config) (utils.FileStore, error) {
	if cfg.Storage.Driver == "s3" {
		return utils.NewS3Store(ctx, cfg.S3.Region, cfg.S3.Bucket)
	}
	c := cfg.Cloudinary
	return utils.NewCloudinaryStore(c.CloudName, c.APIKey, c.APISecret, c.UploadPreset)
}

// newMailer falls back to logging the message when SMTP is not configured,
// which keeps local sign-ups usable.
func newMailer(cfg *config.Config, log *zap.Logger) utils.Mailer {
	s := cfg.SMTP
	if s.Host == "" {
		log.Warn("SMTP_HOST not set, verification emails will only be logged")
		return utils.NewLogMailer(log)
	}
	from := s.From
	if from == "" {
		from = s.User
	}
	return utils.NewSMTPMailer(s.Host, s.Port, s.User, s.Password, from, log)
}
