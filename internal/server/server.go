package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/neocommerce/storefront/internal/category"
	categorydomain "github.com/neocommerce/storefront/internal/category/domain"
	"github.com/neocommerce/storefront/internal/checkout"
	"github.com/neocommerce/storefront/internal/config"
	"github.com/neocommerce/storefront/internal/download"
	"github.com/neocommerce/storefront/internal/observability"
	obsmiddleware "github.com/neocommerce/storefront/internal/observability/logger"
	obsmetrics "github.com/neocommerce/storefront/internal/observability/metrics"
	obstracing "github.com/neocommerce/storefront/internal/observability/tracing"
	"github.com/neocommerce/storefront/internal/order"
	orderdomain "github.com/neocommerce/storefront/internal/order/domain"
	"github.com/neocommerce/storefront/internal/payment"
	paymentdomain "github.com/neocommerce/storefront/internal/payment/domain"
	"github.com/neocommerce/storefront/internal/product"
	productdomain "github.com/neocommerce/storefront/internal/product/domain"
	"github.com/neocommerce/storefront/internal/settings"
	settingsdomain "github.com/neocommerce/storefront/internal/settings/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	settings.Module,
	category.Module,
	product.Module,
	order.Module,
	payment.Module,
	checkout.Module,
	download.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	settingsSvc     settingsdomain.Service
	categorySvc     categorydomain.Service
	productSvc      productdomain.Service
	orderSvc        orderdomain.Service
	paymentSvc      paymentdomain.Service
	checkoutSvc     *checkout.Service
	downloadSvc     *download.Service
	checkoutLimiter *rateLimiter
	downloadLimiter *rateLimiter
	obsMetrics      *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	SettingsSvc settingsdomain.Service
	CategorySvc categorydomain.Service
	ProductSvc  productdomain.Service
	OrderSvc    orderdomain.Service
	PaymentSvc  paymentdomain.Service
	CheckoutSvc *checkout.Service
	DownloadSvc *download.Service
	ObsMetrics  *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		settingsSvc:     p.SettingsSvc,
		categorySvc:     p.CategorySvc,
		productSvc:      p.ProductSvc,
		orderSvc:        p.OrderSvc,
		paymentSvc:      p.PaymentSvc,
		checkoutSvc:     p.CheckoutSvc,
		downloadSvc:     p.DownloadSvc,
		checkoutLimiter: newRateLimiter(10, time.Minute),
		downloadLimiter: newRateLimiter(60, time.Minute),
		obsMetrics:      p.ObsMetrics,
	}

	svc.registerPublicRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerPublicRoutes() {
	api := s.engine.Group("/api")

	api.GET("/products", s.ListProducts)
	api.GET("/products/:id", s.GetProduct)
	api.GET("/categories", s.ListCategories)
	api.GET("/settings", s.GetPublicSettings)

	api.POST("/checkout/:gateway", s.rateLimited(s.checkoutLimiter, "checkout"), s.CreateCheckout)
	api.POST("/payments/webhooks/:gateway", s.HandlePaymentWebhook)

	api.POST("/downloads/resolve", s.rateLimited(s.downloadLimiter, "downloads"), s.ResolveDownload)
	api.GET("/downloads/file", s.rateLimited(s.downloadLimiter, "downloads"), s.DownloadFile)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/api/admin", s.AdminRequired())

	admin.GET("/products", s.AdminListProducts)
	admin.POST("/products", s.AdminCreateProduct)
	admin.GET("/products/:id", s.AdminGetProduct)
	admin.PATCH("/products/:id", s.AdminUpdateProduct)
	admin.DELETE("/products/:id", s.AdminArchiveProduct)

	admin.GET("/categories", s.AdminListCategories)
	admin.POST("/categories", s.AdminCreateCategory)
	admin.PATCH("/categories/:id", s.AdminUpdateCategory)
	admin.DELETE("/categories/:id", s.AdminDeleteCategory)

	admin.GET("/settings", s.AdminGetSettings)
	admin.PATCH("/settings", s.AdminUpdateSettings)

	admin.GET("/orders", s.AdminListOrders)
}

func (s *Server) rateLimited(limiter *rateLimiter, endpoint string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if !limiter.Allow(key) {
			s.obsMetrics.RecordRateLimitDenied(c.Request.Context(), endpoint, "window_exhausted")
			AbortWithError(c, ErrTooManyRequest)
			return
		}
		s.obsMetrics.RecordRateLimitAllowed(c.Request.Context(), endpoint)
		c.Next()
	}
}
