package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/deephumans/deephumans/internal/ai"
	"github.com/deephumans/deephumans/internal/config"
	"github.com/deephumans/deephumans/internal/db"
	"github.com/deephumans/deephumans/internal/filestore"
	"github.com/deephumans/deephumans/internal/handler"
	"github.com/deephumans/deephumans/internal/job"
	"github.com/deephumans/deephumans/internal/mail"
	"github.com/deephumans/deephumans/internal/middleware"
	"github.com/deephumans/deephumans/internal/repo"
	"github.com/deephumans/deephumans/internal/schedule"
	"github.com/deephumans/deephumans/internal/service"
	"github.com/deephumans/deephumans/internal/session"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "deephumans",
		Short: "deephumans backend server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run deephumans server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			conn, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(conn); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, conn)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, conn *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("file_store", cfg.FileStore.Type),
	)

	userRepo := repo.NewUserRepo(conn)
	chatRepo := repo.NewChatMessageRepo(conn)

	sessionStore := session.NewStore(100000, time.Duration(cfg.SessionIdleMinutes)*time.Minute)
	mailSender := mail.NewMailer(cfg.Mail)

	jwtTTL := time.Hour * time.Duration(cfg.JWTTTLHours)
	authService := service.NewAuthService(userRepo, []byte(cfg.JWTSecret), jwtTTL)
	resetService := service.NewPasswordResetService(
		userRepo,
		mailSender,
		time.Duration(cfg.ResetCodeTTLMinutes)*time.Minute,
	)

	providerArgs := cfg.AI.Data
	if providerArgs == nil {
		providerArgs = map[string]interface{}{}
	}
	aiProvider, err := ai.NewProvider(cfg.AI.Provider, providerArgs)
	if err != nil {
		return fmt.Errorf("init ai provider: %w", err)
	}
	assistant := service.NewAssistantService(
		aiProvider,
		cfg.AI.Model,
		ai.Options{
			Temperature: cfg.AI.Options.Temperature,
			TopP:        cfg.AI.Options.TopP,
			TopK:        cfg.AI.Options.TopK,
			MaxTokens:   cfg.AI.Options.MaxTokens,
		},
		time.Duration(cfg.AI.TimeoutSeconds)*time.Second,
	)
	chatService := service.NewChatService(chatRepo, assistant)

	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}

	deps := handler.RouterDeps{
		Auth:          handler.NewAuthHandler(authService),
		PasswordReset: handler.NewPasswordResetHandler(resetService),
		Chat:          handler.NewChatHandler(chatService),
		Characters:    handler.NewCharacterHandler(store),
		Users:         userRepo,
		JWTSecret:     []byte(cfg.JWTSecret),
		ForgotWindow:  time.Duration(cfg.ForgotCooldownSecs) * time.Second,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.CORSAllowlist),
			gzip.Gzip(gzip.DefaultCompression),
			session.Middleware(sessionStore, cfg.SessionIdleMinutes*60),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	if err := scheduler.AddJob(job.NewChatRetentionJob(chatRepo, cfg.ChatRetentionDays), "30 3 * * *"); err != nil {
		return fmt.Errorf("schedule retention job: %w", err)
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
