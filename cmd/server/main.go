package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	auth "github.com/nastiaknik/go-contacts-auth"
	"github.com/nastiaknik/go-contacts-auth/mailer/sendgrid"
	"github.com/nastiaknik/go-contacts-auth/social/google"
)

func main() {
	zl := zerolog.New(os.Stdout).With().
		Str("role", "server").
		Timestamp().
		Logger()

	log := zerologAdapter{zl}

	cfg, err := auth.LoadConfig()
	if err != nil {
		zl.Fatal().Err(err).Msg("error loading configuration")
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DSN)
	if err != nil {
		zl.Fatal().Err(err).Msg("error opening database")
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	ctx := context.Background()
	if _, err := db.NewCreateTable().
		Model((*auth.User)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		zl.Fatal().Err(err).Msg("error creating users table")
	}

	repo := auth.NewRepositoryManager(db)
	provider := auth.NewUserProvider(repo.Users())

	auther := auth.NewAuthenticator(provider, repo.Users(), cfg).
		WithLogger(log)

	mailer := buildMailer(cfg, log)
	decoder := buildDecoder(cfg, zl)

	controller := auth.NewAuthController(
		auth.WithControllerLogger(log),
		auth.WithControllerRepo(repo),
		auth.WithControllerAuther(auther),
		auth.WithControllerMailer(mailer),
		auth.WithControllerTokens(auther.TokenService()),
		auth.WithControllerDecoder(decoder),
		auth.WithControllerResetTTL(cfg.ResetTokenTTL),
	)

	protected := auth.NewSessionGuard(auther, auther.TokenService(), cfg, log)

	app := fiber.New(fiber.Config{
		AppName:      "contacts-auth",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	api := app.Group("/api/auth")
	auth.RegisterAuthRoutes(api, controller, protected)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			zl.Fatal().Err(err).Msg("server stopped")
		}
	}()

	zl.Info().Str("port", cfg.Port).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info().Msg("shutting down")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		zl.Error().Err(err).Msg("error during shutdown")
	}

	if err := db.Close(); err != nil {
		zl.Error().Err(err).Msg("error closing database")
	}
}

func buildMailer(cfg *auth.EnvConfig, log auth.Logger) auth.Mailer {
	if cfg.SendGridAPIKey == "" {
		log.Warn("SENDGRID_API_KEY not set, mail delivery is logged only")
		return auth.LogMailer{Logger: log}
	}

	return sendgrid.New(sendgrid.Config{
		APIKey:          cfg.SendGridAPIKey,
		From:            cfg.MailFrom,
		FrontendBaseURL: cfg.FrontendBaseURL,
	})
}

func buildDecoder(cfg *auth.EnvConfig, zl zerolog.Logger) auth.AssertionDecoder {
	decoder, err := google.New(google.Config{JWKSURL: cfg.GoogleJWKSURL})
	if err != nil {
		zl.Fatal().Err(err).Msg("error building Google decoder")
	}
	return decoder
}

// zerologAdapter satisfies auth.Logger. Calls follow the message plus
// key/value pairs convention; odd trailing arguments fall back to printf
// formatting.
type zerologAdapter struct {
	zl zerolog.Logger
}

func (a zerologAdapter) Debug(format string, args ...any) { a.emit(a.zl.Debug(), format, args) }
func (a zerologAdapter) Info(format string, args ...any)  { a.emit(a.zl.Info(), format, args) }
func (a zerologAdapter) Warn(format string, args ...any)  { a.emit(a.zl.Warn(), format, args) }
func (a zerologAdapter) Error(format string, args ...any) { a.emit(a.zl.Error(), format, args) }

func (a zerologAdapter) emit(evt *zerolog.Event, msg string, args []any) {
	if len(args) == 0 {
		evt.Msg(msg)
		return
	}

	if len(args)%2 == 0 {
		fields := true
		for i := 0; i < len(args); i += 2 {
			if _, ok := args[i].(string); !ok {
				fields = false
				break
			}
		}
		if fields {
			for i := 0; i < len(args); i += 2 {
				evt.Any(args[i].(string), args[i+1])
			}
			evt.Msg(msg)
			return
		}
	}

	evt.Msg(fmt.Sprintf(msg, args...))
}
