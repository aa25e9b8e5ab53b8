package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"gtask_miniapp/internal/api"
	"gtask_miniapp/internal/bot"
	"gtask_miniapp/internal/repository"
	"gtask_miniapp/internal/service"
	"gtask_miniapp/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	err = logger.Initialize(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	repo, err := repository.New(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	botAPI, err := bot.NewAPI(cfg.Telegram.BotToken)
	if err != nil {
		zapLogger.Fatal("Failed to initialize telegram bot", zap.Error(err))
	}
	sender := bot.NewSender(botAPI)

	feed := api.NewBalanceFeed()

	percent := service.DefaultReferralPercent
	if cfg.Ledger.ReferralPercent > 0 {
		percent = decimal.NewFromFloat(cfg.Ledger.ReferralPercent)
	}
	policy := service.NewPercentBonusPolicy(percent)
	dispatcher := service.NewDispatcher(sender, feed, cfg.Ledger.NotifyTimeout)

	accountService := service.NewAccountService(repo)
	completionService := service.NewTaskCompletionService(repo, policy, dispatcher, cfg.Ledger.StoreTimeout)
	broadcaster := service.NewBroadcaster(repo, sender, cfg.Ledger.BroadcastPerSecond)

	tgBot := bot.New(botAPI, sender, accountService, broadcaster, cfg.Telegram.AdminID, cfg.Telegram.MiniAppURL)
	go tgBot.Run(context.Background())

	router := gin.New()
	router.Use(gin.Recovery())

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{
		http.MethodHead,
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
	}
	config.AllowHeaders = []string{"*"}
	config.AllowCredentials = true
	config.MaxAge = 12 * time.Hour

	router.Use(cors.New(config))

	a := router.Group("/api/v1")
	api.NewUserRoutes(a, accountService)
	api.NewTaskRoutes(a, completionService)
	api.NewBalanceFeedRoutes(a, feed)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	zapLogger.Info("Starting server", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		zapLogger.Fatal("Failed to start server", zap.Error(err))
	}
}
