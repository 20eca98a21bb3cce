package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nevtar/ordercore/internal/domain/user"
	"github.com/nevtar/ordercore/internal/storage/postgres"
)

type productJSON struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
	Currency    string `json:"currency"`
	Active      *bool  `json:"active"`
}

type userJSON struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

func main() {
	var (
		databaseURL  string
		productsFile string
		usersFile    string
		pepper       string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.StringVar(&usersFile, "users-file", "db/seed/users.json", "path to users JSON file")
	flag.StringVar(&pepper, "credential-pepper", "", "HMAC pepper for password hashing (or ORDER_CREDENTIAL_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if pepper == "" {
		pepper = os.Getenv("ORDER_CREDENTIAL_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, usersFile, pepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, usersFile, pepper string) error {
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

	if err := seedProducts(ctx, pool, productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if err := seedUsers(ctx, pool, usersFile, pepper); err != nil {
		return errors.Wrap(err, "seed users")
	}

	return nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	const q = `
INSERT INTO products (id, name, description, price_cents, currency, active)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    currency = EXCLUDED.currency,
    active = EXCLUDED.active,
    updated_at = now()`

	for _, p := range products {
		currency := p.Currency
		if currency == "" {
			currency = "USD"
		}
		active := true
		if p.Active != nil {
			active = *p.Active
		}
		if _, err := pool.Exec(ctx, q, p.ID, p.Name, p.Description, p.PriceCents, currency, active); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}
	}

	slog.Info("products seeded", slog.Int("count", len(products)))
	return nil
}

func seedUsers(ctx context.Context, pool *pgxpool.Pool, usersFile, pepper string) error {
	slog.Info("reading users file", slog.String("path", usersFile))

	data, err := os.ReadFile(usersFile)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Info("users file not found, skipping", slog.String("path", usersFile))
			return nil
		}
		return errors.Wrap(err, "read users file")
	}

	var users []userJSON
	if err := json.Unmarshal(data, &users); err != nil {
		return errors.Wrap(err, "parse users JSON")
	}

	hasher := user.NewHMACHasher([]byte(pepper))

	const q = `
INSERT INTO users (id, email, password_hash, display_name)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO NOTHING`

	for _, u := range users {
		hash, err := hasher.Hash(u.Password)
		if err != nil {
			return errors.Wrapf(err, "hash password for %s", u.Email)
		}
		email := user.NormalizeEmail(u.Email)
		if _, err := pool.Exec(ctx, q, u.ID, email, hash, u.DisplayName); err != nil {
			return errors.Wrapf(err, "insert user %s", email)
		}
	}

	slog.Info("users seeded", slog.Int("count", len(users)))
	return nil
}
