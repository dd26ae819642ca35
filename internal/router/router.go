package router

import (
	"net/http"
	"strings"

	"github.com/storefront/internal/config"
	adminhandlers "github.com/storefront/internal/http/handlers/admin"
	publichandlers "github.com/storefront/internal/http/handlers/public"
	"github.com/storefront/internal/http/response"
	"github.com/storefront/internal/logger"
	"github.com/storefront/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)

	redisClient := c.Cache.Redis()
	loginRule := RateLimitRule{
		Prefix:        c.Cache.Key("rate:login"),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		MessageKey:    "error.too_many_requests",
	}
	registerRule := loginRule
	registerRule.Prefix = c.Cache.Key("rate:register")

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(logger.Z()))
	r.Use(MetricsMiddleware(c.Metrics))
	r.Use(CORSMiddleware(cfg.CORS))

	r.GET("/healthz", func(ctx *gin.Context) {
		response.Success(ctx, gin.H{"status": "ok"})
	})
	if c.Metrics != nil {
		metricsPath := strings.TrimSpace(cfg.Metrics.Path)
		if metricsPath == "" {
			metricsPath = "/metrics"
		}
		r.GET(metricsPath, gin.WrapH(c.Metrics.Handler()))
	}

	// 公开接口
	r.POST("/register", RateLimitMiddleware(redisClient, registerRule, KeyByIPAndJSONField("email")), publicHandler.Register)
	r.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.Login)
	r.GET("/captcha/image", publicHandler.GetImageCaptcha)
	r.GET("/products", publicHandler.GetProducts)
	r.GET("/products/:id", publicHandler.GetProduct)
	r.POST("/orders", publicHandler.CreateOrder)
	r.GET("/media/*filepath", publicHandler.ServeMedia)

	authed := r.Group("")
	authed.Use(JWTAuthMiddleware(c.AuthService), RBACMiddleware(c.AuthzService))
	{
		authed.GET("/me", publicHandler.Me)
		authed.POST("/register-affiliate", publicHandler.RegisterAffiliate)
		authed.POST("/create-payment-intent", publicHandler.CreatePaymentIntent)

		affiliate := authed.Group("/affiliate")
		{
			affiliate.GET("/link/:productId", publicHandler.GetAffiliateLink)
			affiliate.GET("/commission-data", publicHandler.GetCommissionData)
			affiliate.GET("/stats", publicHandler.GetAffiliateStats)
		}

		admin := authed.Group("/admin")
		{
			admin.POST("/products", adminHandler.CreateProduct)
			admin.PUT("/products/:id", adminHandler.UpdateProduct)
			admin.DELETE("/products/:id", adminHandler.DeleteProduct)

			admin.GET("/orders", adminHandler.ListOrders)
			admin.GET("/orders/:id", adminHandler.GetOrder)

			admin.POST("/shipping-preview", adminHandler.ShippingPreview)
			admin.POST("/upload-media", adminHandler.UploadMedia)

			admin.GET("/affiliate-settings", adminHandler.GetAffiliateSettings)
			admin.PUT("/affiliate-settings", adminHandler.UpdateAffiliateSettings)
			admin.GET("/affiliate-stats", adminHandler.GetAffiliateStats)

			admin.GET("/affiliates", adminHandler.ListAffiliates)
			admin.GET("/affiliates/payouts", adminHandler.ListAffiliatePayouts)
			admin.GET("/affiliates/orphans", adminHandler.ListOrphanReferrals)
			admin.PUT("/affiliates/:id/commission", adminHandler.UpdateAffiliateCommission)
			admin.POST("/affiliates/:id/approve", adminHandler.ApproveAffiliate)
			admin.POST("/affiliates/:id/suspend", adminHandler.SuspendAffiliate)
			admin.POST("/affiliates/:id/payout", adminHandler.ProcessAffiliatePayout)
		}
	}

	r.NoRoute(func(ctx *gin.Context) {
		response.Error(ctx, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	})

	return r
}
