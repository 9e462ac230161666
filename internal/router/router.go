package router

import (
	"time"

	"github.com/raw-dani/pos-only/internal/config"
	"github.com/raw-dani/pos-only/internal/handler"
	"github.com/raw-dani/pos-only/internal/infra"
	"github.com/raw-dani/pos-only/internal/middleware"
	"github.com/raw-dani/pos-only/internal/rbac"
	"github.com/raw-dani/pos-only/internal/repository"
	"github.com/raw-dani/pos-only/internal/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Services is the service layer shared by the HTTP router and the job workers.
type Services struct {
	Auth           service.AuthService
	Users          service.UserService
	Categories     service.CategoryService
	Products       service.ProductService
	PaymentMethods service.PaymentMethodService
	Settings       service.SettingService
	Invoices       service.InvoiceService
	Reports        service.ReportService
}

// NewServices wires repositories into services.
// Dependency graph: Service ← Repository ← DB/Redis
// rdb may be nil (settings are then read from the database on every call);
// receipts may be nil (no receipt jobs are enqueued).
func NewServices(cfg *config.Config, db *gorm.DB, rdb *redis.Client, numbers service.InvoiceNumberer, receipts service.ReceiptQueue) *Services {
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	methodRepo := repository.NewPaymentMethodRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)

	var cache service.SettingCache
	if rdb != nil {
		cache = infra.NewSettingCache(rdb)
	}
	settingSvc := service.NewSettingService(settingRepo, cache)

	return &Services{
		Auth:           service.NewAuthService(userRepo, cfg),
		Users:          service.NewUserService(userRepo, roleRepo),
		Categories:     service.NewCategoryService(categoryRepo),
		Products:       service.NewProductService(productRepo, categoryRepo),
		PaymentMethods: service.NewPaymentMethodService(methodRepo),
		Settings:       settingSvc,
		Invoices:       service.NewInvoiceService(invoiceRepo, productRepo, userRepo, methodRepo, settingSvc, numbers, receipts),
		Reports:        service.NewReportService(invoiceRepo, settingSvc),
	}
}

// New returns a configured Gin engine serving svcs.
func New(cfg *config.Config, svcs *Services, db *gorm.DB, rdb *redis.Client, mailBreaker *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	handler.ExposeInternalErrors(cfg.IsDevelopment())

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigin))
	r.Use(middleware.Metrics())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	authH := handler.NewAuthHandler(svcs.Auth)
	usersH := handler.NewUsersHandler(svcs.Users)
	categoriesH := handler.NewCategoriesHandler(svcs.Categories)
	productsH := handler.NewProductsHandler(svcs.Products)
	methodsH := handler.NewPaymentMethodsHandler(svcs.PaymentMethods)
	settingsH := handler.NewSettingsHandler(svcs.Settings)
	invoicesH := handler.NewInvoicesHandler(svcs.Invoices)
	reportsH := handler.NewReportsHandler(svcs.Reports)

	// Public
	if db != nil {
		r.GET("/health", handler.Health(db, rdb, mailBreaker))
	}
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.GET("/me", middleware.JWTAuth(svcs.Auth), authH.Me)
	}

	protected := api.Group("", middleware.JWTAuth(svcs.Auth))
	perm := middleware.RequirePermission

	products := protected.Group("/products")
	{
		products.GET("", perm(rbac.ProductsRead), productsH.List)
		products.GET("/:id", perm(rbac.ProductsRead), productsH.Get)
		products.POST("", perm(rbac.ProductsCreate), productsH.Create)
		products.PUT("/:id", perm(rbac.ProductsUpdate), productsH.Update)
		products.DELETE("/:id", perm(rbac.ProductsDelete), productsH.Deactivate)
		products.PATCH("/:id/reactivate", perm(rbac.ProductsUpdate), productsH.Reactivate)
	}

	categories := protected.Group("/categories")
	{
		categories.GET("", perm(rbac.CategoriesRead), categoriesH.List)
		categories.POST("", perm(rbac.CategoriesCreate), categoriesH.Create)
		categories.PUT("/:id", perm(rbac.CategoriesUpdate), categoriesH.Update)
		categories.DELETE("/:id", perm(rbac.CategoriesDelete), categoriesH.Delete)
	}

	invoices := protected.Group("/invoices")
	{
		invoices.GET("", perm(rbac.InvoicesRead), invoicesH.List)
		invoices.GET("/:id", perm(rbac.InvoicesRead), invoicesH.Get)
		invoices.GET("/:id/receipt", perm(rbac.InvoicesRead), invoicesH.Receipt)
		invoices.POST("", perm(rbac.InvoicesCreate), invoicesH.Create)
		invoices.PUT("/:id/pay", perm(rbac.InvoicesUpdate), invoicesH.Pay)
	}

	reports := protected.Group("/reports")
	{
		reports.GET("/sales", perm(rbac.ReportsRead), reportsH.Sales)
		reports.GET("/sales/pdf", perm(rbac.ReportsRead, rbac.ReportsExport), reportsH.SalesPDF)
	}

	settings := protected.Group("/settings")
	{
		settings.GET("", perm(rbac.SettingsRead), settingsH.Get)
		settings.PUT("", perm(rbac.SettingsUpdate), settingsH.Update)
	}

	methods := protected.Group("/payment-methods")
	{
		// Cashiers need the list to take payment.
		methods.GET("", middleware.RequireAnyPermission(rbac.PaymentMethodsRead, rbac.InvoicesCreate), methodsH.List)
		methods.POST("", perm(rbac.PaymentMethodsCreate), methodsH.Create)
		methods.PUT("/:id", perm(rbac.PaymentMethodsUpdate), methodsH.Update)
		methods.DELETE("/:id", perm(rbac.PaymentMethodsDelete), methodsH.Deactivate)
	}

	users := protected.Group("/users", middleware.RequireMinRole(rbac.RoleAdmin))
	{
		users.GET("", perm(rbac.UsersRead), usersH.List)
		users.POST("", perm(rbac.UsersCreate), usersH.Create)
		users.PUT("/:id", perm(rbac.UsersUpdate), usersH.Update)
		users.PUT("/:id/reset-password", perm(rbac.UsersUpdate), usersH.ResetPassword)
		users.DELETE("/:id", perm(rbac.UsersDelete), usersH.Deactivate)
	}
	protected.GET("/roles", perm(rbac.UsersRead), usersH.ListRoles)

	// Swagger UI, only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
