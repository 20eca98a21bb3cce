//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/nevtar/ordercore/internal/access"
	"github.com/nevtar/ordercore/internal/domain/order"
	"github.com/nevtar/ordercore/internal/domain/user"
	"github.com/nevtar/ordercore/internal/handler"
	pgstore "github.com/nevtar/ordercore/internal/storage/postgres"
	"github.com/nevtar/ordercore/pkg/health"
	"github.com/nevtar/ordercore/pkg/httpmiddleware"
)

var (
	baseURL    string
	httpClient *http.Client
	pool       *pgxpool.Pool
)

// Response types — defined locally so the HTTP tests stay black-box.

type userResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

type productResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	Currency   string `json:"currency"`
	Active     bool   `json:"active"`
}

type orderResponse struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	Status     string `json:"status"`
	Currency   string `json:"currency"`
	TotalCents int64  `json:"total_cents"`
}

type itemResponse struct {
	ID                  string `json:"id"`
	OrderID             string `json:"order_id"`
	ProductID           string `json:"product_id"`
	ProductNameSnapshot string `json:"product_name_snapshot"`
	UnitPriceCents      *int64 `json:"unit_price_cents"`
	Quantity            int    `json:"quantity"`
	LineTotalCents      int64  `json:"line_total_cents"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func TestMain(m *testing.M) {
	os.Exit(testMain(m))
}

func testMain(m *testing.M) int {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pg, err := tcpostgres.Run(ctx, "postgres:17-alpine",
		tcpostgres.WithDatabase("orders"),
		tcpostgres.WithUsername("orders"),
		tcpostgres.WithPassword("orders"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		log.Printf("start postgres: %v", err)
		return 1
	}
	defer func() {
		if err := testcontainers.TerminateContainer(pg); err != nil {
			log.Printf("terminate postgres: %v", err)
		}
	}()

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		log.Printf("connection string: %v", err)
		return 1
	}

	pool, err = pgstore.NewPool(ctx, dsn)
	if err != nil {
		log.Printf("create pool: %v", err)
		return 1
	}
	defer pool.Close()

	if err := pgstore.RunMigrations(ctx, pool); err != nil {
		log.Printf("run migrations: %v", err)
		return 1
	}

	srv := newServer(ctx)
	defer srv.Close()

	baseURL = srv.URL
	httpClient = srv.Client()
	log.Printf("API available at %s", baseURL)

	return m.Run()
}

// newServer wires the real repositories, services, and middleware chain
// the way internal/app.Run does, served over httptest.
func newServer(ctx context.Context) *httptest.Server {
	lg := zap.NewNop()

	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthSvc.SetReady(true)

	userRepo := pgstore.NewUserRepository(pool)
	productRepo := pgstore.NewProductRepository(pool)
	orderRepo := pgstore.NewOrderRepository(pool)
	itemRepo := pgstore.NewOrderItemRepository(pool)

	userSvc := user.NewService(userRepo, user.NewHMACHasher([]byte("integration-pepper")))
	orderSvc := order.NewService(
		orderRepo,
		itemRepo,
		order.NewSnapshotResolver(productRepo, lg),
		order.NewTotalRecalculator(itemRepo, orderRepo, lg),
		access.AllowAll{},
	)

	h := handler.New(userSvc, productRepo, orderSvc)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", h.Routes()))

	return httptest.NewServer(httpmiddleware.Wrap(mux,
		httpmiddleware.Recovery(),
		httpmiddleware.CORS(httpmiddleware.CORSConfig{
			AllowOrigins: []string{"*"},
			AllowHeaders: []string{"Content-Type", "Authorization"},
			MaxAge:       86400,
		}),
		httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
			Max:    10000,
			Window: time.Minute,
		}),
		httpmiddleware.RequestID(),
		httpmiddleware.InjectLogger(lg),
		httpmiddleware.LogRequests(),
	))
}

// HTTP helpers.

func do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var rd *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(data)
	} else {
		rd = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, baseURL+path, rd)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func doGet(t *testing.T, path string) *http.Response {
	t.Helper()
	return do(t, http.MethodGet, path, nil)
}

func doPost(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	return do(t, http.MethodPost, path, body)
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

// registerUser creates a user with a unique email and returns it.
func registerUser(t *testing.T, tag string) userResponse {
	t.Helper()

	resp := doPost(t, "/api/v1/users", map[string]string{
		"email":    fmt.Sprintf("%s-%d@example.com", tag, time.Now().UnixNano()),
		"password": "integration-pass",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register user: expected 201, got %d", resp.StatusCode)
	}
	return decodeJSON[userResponse](t, resp)
}

// createProduct creates a catalog product and returns it.
func createProduct(t *testing.T, name string, priceCents int64) productResponse {
	t.Helper()

	resp := doPost(t, "/api/v1/products", map[string]any{
		"name":        name,
		"price_cents": priceCents,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create product: expected 201, got %d", resp.StatusCode)
	}
	return decodeJSON[productResponse](t, resp)
}

// createOrder opens a pending order for the user and returns it.
func createOrder(t *testing.T, userID string) orderResponse {
	t.Helper()

	resp := doPost(t, "/api/v1/orders", map[string]string{"user_id": userID})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create order: expected 201, got %d", resp.StatusCode)
	}
	return decodeJSON[orderResponse](t, resp)
}
