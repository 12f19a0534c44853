// @title           Compras API
// @version         1.0
// @description     Solicitudes de cotización, comparación de propuestas y órdenes de compra.
// @BasePath        /
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/Compras-api/docs"
	"github.com/jhoicas/Compras-api/internal/application/auth"
	appemail "github.com/jhoicas/Compras-api/internal/application/email"
	"github.com/jhoicas/Compras-api/internal/application/ports"
	"github.com/jhoicas/Compras-api/internal/application/purchasing"
	"github.com/jhoicas/Compras-api/internal/application/usecase"
	infraai "github.com/jhoicas/Compras-api/internal/infrastructure/ai"
	"github.com/jhoicas/Compras-api/internal/infrastructure/mail"
	"github.com/jhoicas/Compras-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/Compras-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Compras-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Compras-api/internal/infrastructure/report"
	"github.com/jhoicas/Compras-api/internal/infrastructure/scheduler"
	"github.com/jhoicas/Compras-api/internal/infrastructure/xmlexport"
	httpRouter "github.com/jhoicas/Compras-api/internal/interfaces/http"
	"github.com/jhoicas/Compras-api/pkg/config"
	"github.com/jhoicas/Compras-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(cfg.DB.ConnectionString(), log.Component("migrate")); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB, log.Component("postgres"))
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	prom := metrics.New(cfg.Metrics.Namespace)

	companyRepo := postgres.NewCompanyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	requestRepo := postgres.NewQuotationRequestRepository(pool)
	proposalRepo := postgres.NewProposalRepository(pool)
	orderRepo := postgres.NewPurchaseOrderRepository(pool)
	emailRepo := postgres.NewEmailMessageRepository(pool)
	creditRepo := postgres.NewAICreditRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Correo saliente: sin SMTP los envíos responden 503
	var sender ports.EmailSender
	if cfg.SMTP.Enabled() {
		sender = mail.NewSMTPSender(cfg.SMTP, log.Component("smtp"))
	} else {
		log.Warn().Msg("SMTP no configurado: no se enviarán solicitudes ni órdenes")
	}
	var inbox ports.InboxFetcher
	if cfg.IMAP.Enabled() {
		inbox = mail.NewIMAPFetcher(cfg.IMAP, log.Component("imap"))
	} else {
		log.Warn().Msg("IMAP no configurado: la sincronización del buzón está desactivada")
	}

	var llm ports.LLMService
	switch cfg.AI.Provider {
	case "gemini":
		llm = infraai.NewGeminiService(cfg.AI.GeminiAPIKey, cfg.AI.GeminiModel)
	default:
		llm = infraai.NewAnthropicService(cfg.AI.AnthropicAPIKey, cfg.AI.AnthropicModel)
	}

	pdfGenerator := infrapdf.NewMarotoPDFGenerator()
	xmlExporter := xmlexport.NewUBLOrderExporter()
	xlsxGenerator := report.NewExcelGenerator()

	companyUC := usecase.NewCompanyUseCase(companyRepo, creditRepo, cfg.AI.InitialCredits)
	userUC := usecase.NewUserUseCase(userRepo)
	categoryUC := usecase.NewCategoryUseCase(categoryRepo)
	productUC := usecase.NewProductUseCase(productRepo, categoryRepo)
	supplierUC := usecase.NewSupplierUseCase(supplierRepo)
	moduleSvc := usecase.NewModuleService(companyRepo, time.Duration(cfg.App.ModuleCacheSeconds)*time.Second)
	aiUC := usecase.NewAIUseCase(llm, creditRepo, prom, log.Component("ai"))
	authUC := auth.NewAuthUseCase(userRepo, companyRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	quotationUC := purchasing.NewQuotationUseCase(purchasing.QuotationDeps{
		Requests:  requestRepo,
		Suppliers: supplierRepo,
		Products:  productRepo,
		Companies: companyRepo,
		Sender:    sender,
		Metrics:   prom,
		Log:       log.Component("quotations"),
	})
	proposalUC := purchasing.NewProposalUseCase(requestRepo, proposalRepo, supplierRepo, txRunner, prom, log.Component("proposals"))
	analysisUC := purchasing.NewAnalysisUseCase(requestRepo, proposalRepo, supplierRepo, companyRepo, xlsxGenerator, prom, log.Component("analysis"))
	orderUC := purchasing.NewPurchaseOrderUseCase(purchasing.PurchaseOrderDeps{
		Analysis:  analysisUC,
		Requests:  requestRepo,
		Orders:    orderRepo,
		Suppliers: supplierRepo,
		Companies: companyRepo,
		Tx:        txRunner,
		PDF:       pdfGenerator,
		XML:       xmlExporter,
		Sender:    sender,
		Metrics:   prom,
		Log:       log.Component("orders"),
	})
	emailUC := appemail.NewUseCase(appemail.Deps{
		Emails:     emailRepo,
		Requests:   requestRepo,
		Suppliers:  supplierRepo,
		Inbox:      inbox,
		Classifier: aiUC,
		Tx:         txRunner,
		Metrics:    prom,
		Log:        log.Component("emails"),
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 60,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.HTTP.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(httpRouter.RequestLogger(log.Component("http"), prom))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath:    "/",
		FileContent: []byte(docs.SwaggerInfo.ReadDoc()),
		Path:        "docs",
		Title:       "Compras API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(prom.Registry, promhttp.HandlerOpts{})))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		CompanyUC:   companyUC,
		UserUC:      userUC,
		CategoryUC:  categoryUC,
		ProductUC:   productUC,
		SupplierUC:  supplierUC,
		AIUC:        aiUC,
		Modules:     moduleSvc,
		QuotationUC: quotationUC,
		ProposalUC:  proposalUC,
		AnalysisUC:  analysisUC,
		OrderUC:     orderUC,
		EmailUC:     emailUC,
		AITimeout:   30 * time.Second,
		JWTSecret:   cfg.JWT.Secret,
	})

	// Sondeo periódico del buzón
	var jobs *scheduler.Scheduler
	if cfg.Jobs.EmailPollCron != "" && inbox != nil {
		jobs = scheduler.New(log.Component("scheduler"))
		if err := jobs.AddInboxPolling(cfg.Jobs.EmailPollCron, cfg.IMAP.CompanyID, emailUC, 2*time.Minute); err != nil {
			log.Fatal().Err(err).Msg("programar sondeo del buzón")
		}
		jobs.Start()
	}

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if jobs != nil {
		jobs.Stop(shutdownCtx)
	}
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
