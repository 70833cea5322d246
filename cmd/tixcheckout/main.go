package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/kirinyoku/tix-checkout/docs"
	"github.com/kirinyoku/tix-checkout/internal/app"
	"github.com/kirinyoku/tix-checkout/internal/config"
	httpgin "github.com/kirinyoku/tix-checkout/internal/transport/http/gin"
)

// @title TixCheckout API
// @version 1.0
// @description Ticket checkout: selection, pricing, promo codes and payment.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.New()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// tixcheckout token <user-id> [role] prints a bearer token for local testing.
	if len(os.Args) > 1 && os.Args[1] == "token" {
		if err := printToken(cfg, os.Args[2:]); err != nil {
			logger.Error("failed to issue token", "error", err)
			os.Exit(1)
		}
		return
	}

	ctx := context.Background()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to create application", "error", err)
		os.Exit(1)
	}

	if err := application.Run(ctx); err != nil {
		logger.Error("application finished with error", "error", err)
		os.Exit(1)
	}
}

func printToken(cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: tixcheckout token <user-id> [role]")
	}

	role := ""
	if len(args) > 1 {
		role = args[1]
	}

	token, err := httpgin.IssueToken(cfg.Auth.JWTSecret, args[0], role, 24*time.Hour)
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}
