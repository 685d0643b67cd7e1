// Command seed-db prepares a fresh database: it runs migrations, creates
// the admin account, and loads a demo catalog from a JSON file.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/glowmart/glowmart-api/internal/domain/product"
	"github.com/glowmart/glowmart-api/internal/domain/user"
	"github.com/glowmart/glowmart-api/internal/storage/postgres"
)

type productJSON struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Brand       string          `json:"brand"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	ImageURL    string          `json:"imageUrl"`
}

func main() {
	var (
		databaseURL   string
		productsFile  string
		adminEmail    string
		adminPassword string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "", "path to products JSON file (optional)")
	flag.StringVar(&adminEmail, "admin-email", "", "admin account email (or GLOW_ADMIN_EMAIL env)")
	flag.StringVar(&adminPassword, "admin-password", "", "admin account password (or GLOW_ADMIN_PASSWORD env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if adminEmail == "" {
		adminEmail = os.Getenv("GLOW_ADMIN_EMAIL")
	}
	if adminPassword == "" {
		adminPassword = os.Getenv("GLOW_ADMIN_PASSWORD")
	}
	if adminEmail == "" || adminPassword == "" {
		slog.Error("admin credentials are required: set --admin-email/--admin-password or GLOW_ADMIN_EMAIL/GLOW_ADMIN_PASSWORD")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, adminEmail, adminPassword); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, adminEmail, adminPassword string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedAdmin(ctx, postgres.NewUserRepository(pool), adminEmail, adminPassword); err != nil {
		return errors.Wrap(err, "seed admin")
	}

	if productsFile != "" {
		if err := seedProducts(ctx, postgres.NewProductRepository(pool), productsFile); err != nil {
			return errors.Wrap(err, "seed products")
		}
	}

	return nil
}

func seedAdmin(ctx context.Context, users *postgres.UserRepository, email, password string) error {
	hash, err := user.HashPassword(password)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}

	u := &user.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		Name:         "Store Admin",
		Role:         user.RoleAdmin,
		CreatedAt:    time.Now(),
	}
	if err := users.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			slog.Info("admin account already exists", slog.String("email", email))
			return nil
		}
		return err
	}

	slog.Info("created admin account", slog.String("email", email))
	return nil
}

func seedProducts(ctx context.Context, products *postgres.ProductRepository, path string) error {
	slog.Info("reading products file", slog.String("path", path))

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var entries []productJSON
	if err := json.Unmarshal(data, &entries); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("creating products", slog.Int("count", len(entries)))

	now := time.Now()
	for _, e := range entries {
		p := &product.Product{
			ID:          uuid.New().String(),
			Name:        e.Name,
			Description: e.Description,
			Brand:       e.Brand,
			Category:    e.Category,
			Price:       e.Price,
			Stock:       e.Stock,
			Visible:     true,
			ImageURL:    e.ImageURL,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := products.Create(ctx, p); err != nil {
			return errors.Wrapf(err, "create product %q", e.Name)
		}

		slog.Info("created product", slog.String("name", e.Name))
	}

	return nil
}
