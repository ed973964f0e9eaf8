package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"retaildesk/backend/internal/config"
	"retaildesk/backend/internal/service"
)

const strongSecret = "0123456789abcdef0123456789abcdef"

func TestValidateSecurityConfigRejectsWeakValues(t *testing.T) {
	err := validateSecurityConfig(config.Config{AuthSecret: "short"})
	if err == nil {
		t.Fatalf("expected weak security config to be rejected")
	}
}

func TestValidateSecurityConfigRequiresAdminPair(t *testing.T) {
	err := validateSecurityConfig(config.Config{AuthSecret: strongSecret, SeedAdminEmail: "owner@shop.test"})
	if err == nil {
		t.Fatalf("expected admin email without password to be rejected")
	}
}

func TestValidateSecurityConfigAcceptsStrongValues(t *testing.T) {
	err := validateSecurityConfig(config.Config{
		AuthSecret:        strongSecret,
		SeedAdminEmail:    "owner@shop.test",
		SeedAdminPassword: "correct-horse",
	})
	if err != nil {
		t.Fatalf("expected strong config to pass, got %v", err)
	}
}

func TestBootstrapSeedsEmptyCatalogOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	fixture := "categories:\n  - name: Hats\nproducts:\n  - sku: hat-1\n    name: Straw Hat\n    category: Hats\n    selling_price: \"30\"\n"
	if err := os.WriteFile(path, []byte(fixture), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	cfg := config.Config{
		StorageBackend:    config.BackendMemory,
		SeedFile:          path,
		SeedAdminEmail:    "owner@shop.test",
		SeedAdminPassword: "correct-horse",
	}
	ctx := context.Background()

	backend, closers, err := openBackend(ctx, cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("open backend: %v", err)
	}
	if len(closers) != 0 {
		t.Fatalf("expected no closers for the memory backend, got %d", len(closers))
	}
	svc := service.New(backend, zap.NewNop())
	if err := svc.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := bootstrap(ctx, svc, cfg, zap.NewNop()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if err := bootstrap(ctx, svc, cfg, zap.NewNop()); err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}

	products := svc.ListProducts(ctx)
	if len(products) != 1 || products[0].SKU != "HAT-1" {
		t.Fatalf("expected the seeded hat only, got %+v", products)
	}
	if _, err := svc.Login(ctx, "owner@shop.test", "correct-horse"); err != nil {
		t.Fatalf("expected bootstrapped admin to log in: %v", err)
	}
}

func TestOpenBackendDefaultsToSeededMemory(t *testing.T) {
	ctx := context.Background()
	backend, _, err := openBackend(ctx, config.Config{StorageBackend: config.BackendMemory}, zap.NewNop())
	if err != nil {
		t.Fatalf("open backend: %v", err)
	}
	svc := service.New(backend, zap.NewNop())
	if err := svc.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(svc.ListProducts(ctx)) == 0 {
		t.Fatalf("expected the demo catalog without a seed file")
	}
}
