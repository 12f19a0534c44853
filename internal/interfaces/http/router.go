package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Compras-api/internal/application/auth"
	"github.com/jhoicas/Compras-api/internal/application/email"
	"github.com/jhoicas/Compras-api/internal/application/purchasing"
	"github.com/jhoicas/Compras-api/internal/application/usecase"
	"github.com/jhoicas/Compras-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	CompanyUC   *usecase.CompanyUseCase
	UserUC      *usecase.UserUseCase
	CategoryUC  *usecase.CategoryUseCase
	ProductUC   *usecase.ProductUseCase
	SupplierUC  *usecase.SupplierUseCase
	AIUC        *usecase.AIUseCase
	Modules     moduleChecker
	QuotationUC *purchasing.QuotationUseCase
	ProposalUC  *purchasing.ProposalUseCase
	AnalysisUC  *purchasing.AnalysisUseCase
	OrderUC     *purchasing.PurchaseOrderUseCase
	EmailUC     *email.UseCase
	AITimeout   time.Duration
	JWTSecret   string
}

// Router registra las rutas de la API.
//
// Roles: admin todo; comprador opera compras y catálogo; consulta sólo lectura.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	companyHandler := NewCompanyHandler(deps.CompanyUC)
	// alta de empresa pública: es el primer paso antes de registrar usuarios
	api.Post("/companies", companyHandler.Create)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	adminOnly := RequireRole(entity.RoleAdmin)
	writers := RequireRole(entity.RoleAdmin, entity.RoleComprador)

	companies := protected.Group("/companies")
	companies.Get("/", adminOnly, companyHandler.List)
	companies.Get("/:id", companyHandler.GetByID)

	users := protected.Group("/users")
	userHandler := NewUserHandler(deps.UserUC)
	users.Get("/me", userHandler.Me)
	users.Get("/", adminOnly, userHandler.List)

	// Catálogo
	categories := protected.Group("/categories")
	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories.Get("/", categoryHandler.List)
	categories.Get("/:id", categoryHandler.Get)
	categories.Post("/", writers, categoryHandler.Create)
	categories.Put("/:id", writers, categoryHandler.Update)
	categories.Delete("/:id", adminOnly, categoryHandler.Delete)

	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/", writers, productHandler.Create)
	products.Put("/:id", writers, productHandler.Update)
	products.Delete("/:id", adminOnly, productHandler.Delete)

	suppliers := protected.Group("/suppliers")
	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	suppliers.Get("/", supplierHandler.List)
	suppliers.Get("/:id", supplierHandler.Get)
	suppliers.Post("/", writers, supplierHandler.Create)
	suppliers.Put("/:id", writers, supplierHandler.Update)
	suppliers.Delete("/:id", adminOnly, supplierHandler.Delete)

	// Compras (módulo purchasing)
	requirePurchasing := RequireModule(entity.ModulePurchasing, deps.Modules)

	rfq := protected.Group("/quotation-requests", requirePurchasing)
	quotationHandler := NewQuotationHandler(deps.QuotationUC)
	rfq.Get("/", quotationHandler.List)
	rfq.Get("/:id", quotationHandler.Get)
	rfq.Post("/", writers, quotationHandler.Create)
	rfq.Put("/:id", writers, quotationHandler.Update)
	rfq.Delete("/:id", writers, quotationHandler.Delete)
	rfq.Post("/:id/send", writers, quotationHandler.Send)
	rfq.Post("/:id/cancel", writers, quotationHandler.Cancel)

	proposalHandler := NewProposalHandler(deps.ProposalUC)
	rfq.Get("/:id/proposals", proposalHandler.List)
	rfq.Get("/:id/proposals/:proposal_id", proposalHandler.Get)
	rfq.Post("/:id/proposals", writers, proposalHandler.Create)
	rfq.Put("/:id/proposals/:proposal_id", writers, proposalHandler.Update)
	rfq.Delete("/:id/proposals/:proposal_id", writers, proposalHandler.Delete)

	analysisHandler := NewAnalysisHandler(deps.AnalysisUC)
	rfq.Get("/:id/analysis", analysisHandler.Analyze)
	rfq.Get("/:id/analysis/export", analysisHandler.Export)
	rfq.Post("/:id/analysis/selection", analysisHandler.Select)

	orderHandler := NewPurchaseOrderHandler(deps.OrderUC)
	rfq.Post("/:id/purchase-orders", writers, orderHandler.Generate)

	orders := protected.Group("/purchase-orders", requirePurchasing)
	orders.Get("/", orderHandler.List)
	orders.Get("/:id", orderHandler.Get)
	orders.Get("/:id/pdf", orderHandler.PDF)
	orders.Get("/:id/xml", orderHandler.XML)
	orders.Patch("/:id/status", writers, orderHandler.UpdateStatus)
	orders.Post("/:id/send", writers, orderHandler.Send)

	// Buzón (módulo email)
	emails := protected.Group("/emails", RequireModule(entity.ModuleEmail, deps.Modules))
	emailHandler := NewEmailHandler(deps.EmailUC, deps.AITimeout)
	emails.Get("/", emailHandler.List)
	emails.Get("/:id", emailHandler.Get)
	emails.Post("/sync", writers, emailHandler.Sync)
	emails.Post("/:id/classify", writers, RequireModule(entity.ModuleAI, deps.Modules), emailHandler.Classify)
	emails.Post("/:id/convert", writers, emailHandler.Convert)
	emails.Post("/:id/ignore", writers, emailHandler.Ignore)

	// Créditos IA
	ai := protected.Group("/ai", RequireModule(entity.ModuleAI, deps.Modules))
	aiHandler := NewAIHandler(deps.AIUC)
	ai.Get("/credits", aiHandler.Credits)
	ai.Post("/credits", adminOnly, aiHandler.AddCredits)
}
