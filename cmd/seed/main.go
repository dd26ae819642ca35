package main

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/storefront/internal/config"
	"github.com/storefront/internal/constants"
	"github.com/storefront/internal/logger"
	"github.com/storefront/internal/provider"
	"github.com/storefront/internal/service"
)

const (
	defaultSeedAdminEmail     = "admin@example.com"
	defaultSeedAffiliateEmail = "affiliate@example.com"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	stdLog := logger.StdLogger()

	container, err := provider.NewContainer(cfg)
	if err != nil {
		stdLog.Fatalf("Failed to init container: %v", err)
	}
	defer func() { _ = container.Close() }()

	ctx := context.Background()

	// 管理员与示例推广员
	adminPass := strings.TrimSpace(os.Getenv("SF_SEED_ADMIN_PASSWORD"))
	if adminPass == "" {
		stdLog.Printf("SF_SEED_ADMIN_PASSWORD not set, skipping admin seed")
	} else {
		seedUser(ctx, container, envOr("SF_SEED_ADMIN_EMAIL", defaultSeedAdminEmail), adminPass, constants.RoleAdmin)
	}
	if affiliatePass := strings.TrimSpace(os.Getenv("SF_SEED_AFFILIATE_PASSWORD")); affiliatePass != "" {
		if user := seedUser(ctx, container, defaultSeedAffiliateEmail, affiliatePass, constants.RoleAffiliate); user > 0 {
			if _, err := container.AffiliateService.Approve(ctx, user); err != nil {
				stdLog.Printf("Failed to approve affiliate %d: %v", user, err)
			}
		}
	}

	// 商品
	existing, err := container.ProductService.List(ctx)
	if err != nil {
		stdLog.Fatalf("Failed to list products: %v", err)
	}
	if len(existing) > 0 {
		stdLog.Printf("Products already exist (%d), skipping", len(existing))
		return
	}
	for _, input := range seedProducts() {
		product, err := container.ProductService.Create(ctx, input)
		if err != nil {
			stdLog.Printf("Failed to create product: %v", err)
			continue
		}
		stdLog.Printf("Created product: %d %s", product.ID, product.Name)
	}
}

func seedUser(ctx context.Context, c *provider.Container, email, password, role string) int {
	user, err := c.AuthService.Register(ctx, service.RegisterInput{
		Email:         email,
		Password:      password,
		RoleRequested: role,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailExists) || errors.Is(err, service.ErrAdminExists) {
			logger.Infow("seed_user_exists", "email", email, "role", role)
			return 0
		}
		logger.Errorw("seed_user_failed", "email", email, "role", role, "error", err)
		return 0
	}
	logger.Infow("seed_user_created", "user_id", user.ID, "email", email, "role", role)
	return user.ID
}

func seedProducts() []service.ProductInput {
	return []service.ProductInput{
		{
			Name:        strPtr("Classic Tee"),
			Type:        strPtr("apparel"),
			Category:    strPtr("clothing"),
			Description: strPtr("Heavyweight cotton t-shirt"),
			Price:       service.Number(25),
			Weight:      service.Number(0.4),
			Options: &service.ProductOptionsInput{
				Sizes:  []string{"S", "M", "L", "XL"},
				Colors: []string{"black", "white"},
			},
		},
		{
			Name:        strPtr("Daily Multivitamin"),
			Type:        strPtr("supplement"),
			Category:    strPtr(constants.ProductCategorySupplements),
			Description: strPtr("60 capsules"),
			Price:       service.Number(19.99),
			PromoPrice:  numPtr(service.Number(14.99)),
			Weight:      service.Number(0.3),
		},
	}
}

func envOr(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func strPtr(s string) *string { return &s }

func numPtr(n service.NumberField) *service.NumberField { return &n }
