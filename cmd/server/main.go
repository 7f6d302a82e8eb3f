package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vsuitehq/gigster-backend/internal/ai"
	"github.com/vsuitehq/gigster-backend/internal/config"
	"github.com/vsuitehq/gigster-backend/internal/db"
	"github.com/vsuitehq/gigster-backend/internal/goroutine"
	httpHandlers "github.com/vsuitehq/gigster-backend/internal/http/handlers"
	httpRouter "github.com/vsuitehq/gigster-backend/internal/http/router"
	"github.com/vsuitehq/gigster-backend/internal/logger"
	"github.com/vsuitehq/gigster-backend/internal/mailer"
	"github.com/vsuitehq/gigster-backend/internal/pdf"
	"github.com/vsuitehq/gigster-backend/internal/repository"
	"github.com/vsuitehq/gigster-backend/internal/service"
	"github.com/vsuitehq/gigster-backend/internal/storage"
	"github.com/vsuitehq/gigster-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	logLevel := "info"
	if cfg.Env == "development" {
		logLevel = "debug"
		logger.Init(logLevel)
		logger.SetTextFormatter()
	} else {
		logger.Init(logLevel)
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Инициализируем вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	docStorage, err := storage.NewDocumentStorage(cfg.DocsStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	// Внешние интеграции. Пустой URL в конфигурации отключает провайдера,
	// клиенты сами сообщают об этом через Enabled.
	pdfClient := pdf.NewClient(cfg.PDFRenderURL)
	aiClient := ai.NewClient(cfg.AIBaseURL, cfg.AIModel)
	smtpMailer := mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)
	smsSender := mailer.NewWebhookSMS(cfg.SMSWebhookURL)

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	clientRepo := repository.NewClientRepository(dbConn)
	projectRepo := repository.NewProjectRepository(dbConn)
	taskRepo := repository.NewTaskRepository(dbConn)
	timeLogRepo := repository.NewTimeLogRepository(dbConn)
	templateRepo := repository.NewTemplateRepository(dbConn)
	proposalRepo := repository.NewProposalRepository(dbConn)
	invoiceRepo := repository.NewInvoiceRepository(dbConn)
	contractRepo := repository.NewContractRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)

	// Сервисы.
	authService := service.NewAuthService(userRepo, tokenManager)
	notificationService := service.NewNotificationService(notificationRepo, smtpMailer, smsSender)
	clientService := service.NewClientService(clientRepo)
	projectService := service.NewProjectService(projectRepo)
	taskService := service.NewTaskService(taskRepo, notificationService)
	timeLogService := service.NewTimeLogService(timeLogRepo)
	templateService := service.NewTemplateService(templateRepo, aiClient)
	proposalService := service.NewProposalService(
		proposalRepo,
		templateRepo,
		clientService,
		notificationService,
		pdfClient,
		docStorage,
		cfg.PublicBaseURL,
		int(cfg.ProposalExpiryDays),
	)
	invoiceService := service.NewInvoiceService(invoiceRepo, clientRepo, notificationService, pdfClient, docStorage)
	paymentService := service.NewPaymentService(invoiceRepo, notificationService)
	contractService := service.NewContractService(contractRepo, clientRepo, notificationService)
	dashboardService := service.NewDashboardService(taskRepo, timeLogRepo, invoiceRepo, contractRepo)

	// Вебсокеты.
	hub := ws.NewHub()
	go hub.Run()
	notificationService.SetHub(hub)

	// Фоновый обход просроченных счетов и контрактов без подписи.
	sweeper := service.NewSweeper(invoiceRepo, contractRepo, clientRepo, notificationService, cfg.SweepInterval)
	goroutine.SafeGoWithContext(ctx, sweeper.Run)

	// HTTP хэндлеры.
	h := httpRouter.Handlers{
		Auth:         httpHandlers.NewAuthHandler(authService),
		Client:       httpHandlers.NewClientHandler(clientService),
		Project:      httpHandlers.NewProjectHandler(projectService),
		Task:         httpHandlers.NewTaskHandler(taskService),
		TimeLog:      httpHandlers.NewTimeLogHandler(timeLogService),
		Template:     httpHandlers.NewTemplateHandler(templateService),
		Proposal:     httpHandlers.NewProposalHandler(proposalService),
		Invoice:      httpHandlers.NewInvoiceHandler(invoiceService),
		Payment:      httpHandlers.NewPaymentHandler(paymentService),
		Contract:     httpHandlers.NewContractHandler(contractService),
		Notification: httpHandlers.NewNotificationHandler(notificationService),
		Dashboard:    httpHandlers.NewDashboardHandler(dashboardService),
		WS:           httpHandlers.NewWSHandler(hub, tokenManager),
		Health:       httpHandlers.NewHealthHandler(dbConn),
	}

	engine := httpRouter.SetupRouter(cfg, h, tokenManager)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
