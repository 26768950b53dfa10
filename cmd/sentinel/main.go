package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sentinel/internal/api"
	"sentinel/internal/bot"
	"sentinel/internal/config"
	"sentinel/internal/exchange"
	"sentinel/internal/websocket"
	"sentinel/pkg/crypto"
	"sentinel/pkg/utils"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		// Логгер еще не инициализирован
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := utils.InitGlobalLogger(utils.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	defer logger.Sync()

	// Секретный ключ биржи: открытым текстом или шифртекстом в окружении
	secretKey := cfg.Exchange.SecretKey
	if cfg.Exchange.EncryptedSecretKey != "" {
		secretKey, err = crypto.DecryptWithKeyString(cfg.Exchange.EncryptedSecretKey, cfg.Security.EncryptionKey)
		if err != nil {
			utils.Error("failed to decrypt exchange secret key", utils.Err(err))
			os.Exit(1)
		}
	}

	client := exchange.NewClient(cfg.Exchange.APIKey, secretKey, cfg.Exchange.BaseURL)

	// Проверка учётных данных до запуска цикла: отказ API означает
	// невалидный ключ и фатален, сетевые сбои оставляем циклу
	checkCtx, checkCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if _, err := client.GetAccount(checkCtx, "USDT"); err != nil {
		var apiErr *exchange.APIError
		if errors.As(err, &apiErr) {
			utils.Error("exchange rejected credentials", utils.Err(err))
			checkCancel()
			os.Exit(1)
		}
		utils.Warn("credential check inconclusive, continuing", utils.Err(err))
	}
	checkCancel()

	// WebSocket hub для live-снимков состояния
	hub := websocket.NewHub()
	go hub.Run()

	// Источник запросов: интерактивный prompt или слот для HTTP API
	var source bot.TrackingSource
	var apiSource *bot.APISource
	if cfg.Bot.Interactive {
		source = bot.NewPromptSource(os.Stdin, os.Stdout)
	} else {
		apiSource = bot.NewAPISource()
		source = apiSource
	}

	engine := bot.NewEngine(cfg.Bot, client, source, hub, logger.Sugar().With("component", "engine"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engineDone := make(chan struct{})
	go func() {
		defer close(engineDone)
		if err := engine.Run(ctx); err != nil && err != context.Canceled {
			utils.Error("engine stopped", utils.Err(err))
		}
	}()

	// HTTP API, метрики и WebSocket endpoint
	router := api.SetupRoutes(&api.Dependencies{
		Engine:    engine,
		Source:    apiSource,
		Hub:       hub,
		TokenHash: cfg.Security.APITokenHash,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		utils.Info("starting server",
			utils.String("addr", server.Addr),
			utils.Bool("https", cfg.Server.UseHTTPS),
			utils.Bool("interactive", cfg.Bot.Interactive),
		)
		var serveErr error
		if cfg.Server.UseHTTPS {
			serveErr = server.ListenAndServeTLS(cfg.Server.CertFile, cfg.Server.KeyFile)
		} else {
			serveErr = server.ListenAndServe()
		}
		if serveErr != nil && serveErr != http.ErrServerClosed {
			utils.Error("server failed", utils.Err(serveErr))
			stop()
		}
	}()

	<-ctx.Done()

	utils.Info("shutting down")

	// Даем движку завершить текущий тик; выставленные защитные
	// ордера остаются на бирже и продолжают охранять позицию
	select {
	case <-engineDone:
	case <-time.After(10 * time.Second):
		utils.Warn("engine did not stop in time")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		utils.Error("server forced to shutdown", utils.Err(err))
		os.Exit(1)
	}

	utils.Info("server exited")
}
