package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"dolfin/internal/handlers"
	"dolfin/internal/logger"
	"dolfin/internal/middleware"
	"dolfin/internal/models"
	"dolfin/internal/provider"
	"dolfin/internal/services"
	"dolfin/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB       *gorm.DB
	Router   *gin.Engine
	Provider *stubProvider
}

// stubProvider implements provider.Client with canned responses.
type stubProvider struct {
	accountID string
	linkURL   string
	records   []provider.Record
	listCalls int
}

func (s *stubProvider) CreateAccount(ctx context.Context, profile provider.Profile) (string, error) {
	return s.accountID, nil
}

func (s *stubProvider) CreateAuthLink(ctx context.Context, providerAccountID string) (string, error) {
	return s.linkURL, nil
}

func (s *stubProvider) ListTransactions(ctx context.Context, providerAccountID string, limit int, filter string) ([]provider.Record, error) {
	s.listCalls++
	return s.records, nil
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:integration%d?mode=memory&cache=shared&_foreign_keys=on", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Transaction{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory
// SQLite database and a stub provider.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)
	stub := &stubProvider{
		accountID: "basiq-integration",
		linkURL:   "https://connect.example/link/abc",
	}

	// Services
	userService := services.NewUserService(db)
	transactionService := services.NewTransactionService(db)
	linkService := services.NewLinkService(userService, stub)
	syncService := services.NewSyncService(userService, transactionService, stub)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	linkHandler := handlers.NewLinkHandler(linkService)
	transactionHandler := handlers.NewTransactionHandler(syncService, transactionService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	link := protected.Group("/link")
	link.POST("", linkHandler.Register)
	link.GET("/url", linkHandler.GetLinkURL)

	protected.POST("/sync", transactionHandler.Sync)
	protected.GET("/transactions", transactionHandler.GetCachedTransactions)
	protected.DELETE("/transactions", transactionHandler.ClearTransactions)

	return &testApp{DB: db, Router: router, Provider: stub}
}

// doJSON performs a request against the test router with an optional body and
// bearer token, returning the recorder.
func (app *testApp) doJSON(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	return w
}

// registerUser registers a user through the API and returns the auth token.
func (app *testApp) registerUser(t *testing.T, email string) string {
	t.Helper()

	w := app.doJSON(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":      email,
		"mobile":     "+61400000001",
		"first_name": "Flow",
		"last_name":  "Tester",
		"password":   "password123",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register failed with status %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse register response: %v", err)
	}
	return resp.Token
}

// decodeErrorCode extracts the error code from a JSON error response.
func decodeErrorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse error response %q: %v", w.Body.String(), err)
	}
	return resp.Error.Code
}
