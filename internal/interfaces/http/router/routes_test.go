package router

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	catalogapp "github.com/charro/storefront/internal/application/catalog"
	identityapp "github.com/charro/storefront/internal/application/identity"
	orderapp "github.com/charro/storefront/internal/application/order"
	"github.com/charro/storefront/internal/application/report"
	"github.com/charro/storefront/internal/domain/catalog"
	"github.com/charro/storefront/internal/domain/identity"
	"github.com/charro/storefront/internal/infrastructure/auth"
	"github.com/charro/storefront/internal/infrastructure/config"
	"github.com/charro/storefront/internal/infrastructure/persistence"
	"github.com/charro/storefront/internal/infrastructure/storage"
	"github.com/charro/storefront/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	t        *testing.T
	engine   *gin.Engine
	users    *persistence.GormUserRepository
	products *persistence.GormProductRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := zaptest.NewLogger(t)

	db, err := persistence.NewDatabaseFromDialector(sqlite.Open(":memory:"), log)
	require.NoError(t, err)
	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{
		App:      config.AppConfig{Name: "storefront", Env: "test"},
		JWT:      config.JWTConfig{Secret: "router-test-secret", Expiration: time.Minute},
		HTTP:     config.HTTPConfig{MaxBodySize: 10 << 20},
		Checkout: config.CheckoutConfig{TaxRate: decimal.RequireFromString("0.15"), LowStockThreshold: 3},
	}

	userRepo := persistence.NewGormUserRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	tokens := auth.NewTokenService(cfg.JWT)
	images := storage.NewStubImageStorage("http://cdn.test/images")

	productSvc := catalogapp.NewProductService(productRepo, images, "http://cdn.test/products", log)
	orderSvc := orderapp.NewOrderService(orderRepo, productRepo, cfg.Checkout.TaxRate, log)

	engine, stop, err := NewEngine(
		Dependencies{Config: cfg, Logger: log, Tokens: tokens, Users: userRepo},
		Handlers{
			Product: handler.NewProductHandler(productSvc),
			Auth:    handler.NewAuthHandler(identityapp.NewAuthService(userRepo, tokens, log)),
			Order:   handler.NewOrderHandler(orderSvc),
			Admin: handler.NewAdminHandler(
				report.NewDashboardService(orderRepo, userRepo, productRepo, cfg.Checkout.LowStockThreshold, log),
				productSvc,
				identityapp.NewUserService(userRepo, log),
				orderSvc,
			),
			System: handler.NewSystemHandler("storefront", "test", db),
		},
	)
	require.NoError(t, err)
	t.Cleanup(stop)

	return &testServer{t: t, engine: engine, users: userRepo, products: productRepo}
}

// result wraps a recorded response for gjson lookups.
type result struct {
	code int
	body gjson.Result
}

func (r result) Get(path string) gjson.Result { return r.body.Get(path) }

func (s *testServer) do(method, path, token string, body any) result {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return result{code: w.Code, body: gjson.ParseBytes(w.Body.Bytes())}
}

func (s *testServer) register(name, email string) string {
	s.t.Helper()
	res := s.do(http.MethodPost, "/api/v1/user/register", "", map[string]string{
		"name": name, "email": email, "password": "secret123",
	})
	require.Equal(s.t, http.StatusCreated, res.code, res.body.Raw)
	return res.Get("data.token").String()
}

func (s *testServer) promote(email string, role identity.Role) {
	s.t.Helper()
	ctx := context.Background()
	user, err := s.users.FindByEmail(ctx, email)
	require.NoError(s.t, err)
	require.NoError(s.t, user.SetRole(role))
	require.NoError(s.t, s.users.Update(ctx, user))
}

func (s *testServer) seedProduct(title string, price int64, stock int) *catalog.Product {
	s.t.Helper()
	p, err := catalog.NewProduct("", title, decimal.NewFromInt(price), catalog.ProductType("shirts"), catalog.GenderMen)
	require.NoError(s.t, err)
	require.NoError(s.t, p.SetSizes([]catalog.Size{catalog.SizeM, catalog.SizeL}))
	require.NoError(s.t, p.SetStock(stock))
	p.SetImages([]string{"front.jpg"})
	p.SetTags([]string{"shirt"})
	require.NoError(s.t, s.products.Save(context.Background(), p))
	return p
}

func TestHealthAndInfo(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, 200, s.do(http.MethodGet, "/health", "", nil).code)
	assert.Equal(t, 200, s.do(http.MethodGet, "/ready", "", nil).code)

	info := s.do(http.MethodGet, "/api/v1/system/info", "", nil)
	assert.Equal(t, "storefront", info.Get("data.name").String())
}

func TestCatalogRoutes(t *testing.T) {
	s := newTestServer(t)
	shirt := s.seedProduct("Men's Raven Tee", 30, 5)

	list := s.do(http.MethodGet, "/api/v1/products?gender=all", "", nil)
	require.Equal(t, 200, list.code)
	assert.Equal(t, int64(1), list.Get("data.#").Int())
	assert.Equal(t, "http://cdn.test/products/front.jpg", list.Get("data.0.images.0").String())

	one := s.do(http.MethodGet, "/api/v1/products/"+shirt.Slug, "", nil)
	assert.Equal(t, shirt.ID.String(), one.Get("data.id").String())
	assert.Equal(t, "30", one.Get("data.price").String())

	missing := s.do(http.MethodGet, "/api/v1/products/nope", "", nil)
	assert.Equal(t, 404, missing.code)
	assert.Equal(t, "NOT_FOUND", missing.Get("error.code").String())

	found := s.do(http.MethodGet, "/api/v1/search/RAVEN", "", nil)
	assert.Equal(t, int64(1), found.Get("data.#").Int())
}

func TestAuthRoutes(t *testing.T) {
	s := newTestServer(t)
	token := s.register("Jane Doe", "jane@example.com")
	require.NotEmpty(t, token)

	dup := s.do(http.MethodPost, "/api/v1/user/register", "", map[string]string{
		"name": "Jane Again", "email": "JANE@example.com", "password": "secret123",
	})
	assert.Equal(t, 409, dup.code)

	bad := s.do(http.MethodPost, "/api/v1/user/login", "", map[string]string{"email": "not-an-email", "password": "x"})
	assert.Equal(t, 400, bad.code)
	assert.Equal(t, "VALIDATION_ERROR", bad.Get("error.code").String())
	assert.Equal(t, "email", bad.Get("error.details.0.field").String())

	wrong := s.do(http.MethodPost, "/api/v1/user/login", "", map[string]string{"email": "jane@example.com", "password": "wrongpass"})
	assert.Equal(t, 401, wrong.code)
	assert.Equal(t, "INVALID_CREDENTIALS", wrong.Get("error.code").String())

	login := s.do(http.MethodPost, "/api/v1/user/login", "", map[string]string{"email": "jane@example.com", "password": "secret123"})
	assert.Equal(t, 200, login.code)
	assert.Equal(t, "client", login.Get("data.user.role").String())

	renewed := s.do(http.MethodGet, "/api/v1/user/validate-token", login.Get("data.token").String(), nil)
	assert.Equal(t, 200, renewed.code)
	assert.NotEmpty(t, renewed.Get("data.token").String())

	invalid := s.do(http.MethodGet, "/api/v1/user/validate-token", "garbage-token-value", nil)
	assert.Equal(t, 401, invalid.code)
}

func orderBody(productID string, total string) map[string]any {
	return map[string]any{
		"order_items": []map[string]any{
			{"product_id": productID, "size": "M", "quantity": 3, "price": "1"},
		},
		"shipping_address": map[string]string{
			"first_name": "Jane", "last_name": "Doe", "address": "1 Main St",
			"zip": "12345", "city": "Springfield", "country": "US", "phone": "555-0100",
		},
		"total": total,
	}
}

func TestOrderRoutes(t *testing.T) {
	s := newTestServer(t)
	shirt := s.seedProduct("Checkout Tee", 20, 10)
	token := s.register("Buyer One", "buyer@example.com")
	other := s.register("Buyer Two", "other@example.com")

	unauth := s.do(http.MethodPost, "/api/v1/orders", "", orderBody(shirt.ID.String(), "69"))
	assert.Equal(t, 401, unauth.code)

	mismatch := s.do(http.MethodPost, "/api/v1/orders", token, orderBody(shirt.ID.String(), "3"))
	assert.Equal(t, 422, mismatch.code)
	assert.Equal(t, "TOTAL_MISMATCH", mismatch.Get("error.code").String())

	empty := s.do(http.MethodPost, "/api/v1/orders", token, map[string]any{"order_items": []any{}})
	assert.Equal(t, "EMPTY_CART", empty.Get("error.code").String())

	created := s.do(http.MethodPost, "/api/v1/orders", token, orderBody(shirt.ID.String(), "69"))
	require.Equal(t, 201, created.code, created.body.Raw)
	orderID := created.Get("data.id").String()
	assert.Equal(t, "69", created.Get("data.total").String())
	assert.Equal(t, "9", created.Get("data.tax").String())
	assert.False(t, created.Get("data.is_paid").Bool())

	mine := s.do(http.MethodGet, "/api/v1/orders", token, nil)
	assert.Equal(t, int64(1), mine.Get("meta.total").Int())

	assert.Equal(t, 200, s.do(http.MethodGet, "/api/v1/orders/"+orderID, token, nil).code)
	assert.Equal(t, 404, s.do(http.MethodGet, "/api/v1/orders/"+orderID, other, nil).code)
}

func TestAdminRoutes(t *testing.T) {
	s := newTestServer(t)
	s.seedProduct("Stocked Tee", 20, 10)
	s.seedProduct("Low Tee", 20, 2)
	empty := s.seedProduct("Empty Tee", 20, 0)

	clientToken := s.register("Client", "client@example.com")
	adminToken := s.register("Admin", "admin@example.com")
	s.promote("admin@example.com", identity.RoleAdmin)

	forbidden := s.do(http.MethodGet, "/api/v1/admin/dashboard", clientToken, nil)
	assert.Equal(t, 403, forbidden.code)

	order := s.do(http.MethodPost, "/api/v1/orders", clientToken, orderBody(empty.ID.String(), "69"))
	require.Equal(t, 201, order.code, order.body.Raw)
	orderID := order.Get("data.id").String()

	dash := s.do(http.MethodGet, "/api/v1/admin/dashboard", adminToken, nil)
	require.Equal(t, 200, dash.code, dash.body.Raw)
	data := dash.Get("data")
	assert.Equal(t, int64(1), data.Get("number_of_orders").Int())
	assert.Equal(t, int64(0), data.Get("paid_orders").Int())
	assert.Equal(t, int64(1), data.Get("not_paid_orders").Int())
	assert.Equal(t, int64(1), data.Get("number_of_clients").Int())
	assert.Equal(t, int64(3), data.Get("number_of_products").Int())
	assert.Equal(t, int64(1), data.Get("products_with_no_inventory").Int())
	assert.Equal(t, int64(2), data.Get("low_inventory").Int())

	paid := s.do(http.MethodPost, "/api/v1/admin/orders/"+orderID+"/pay", adminToken, map[string]string{"transaction_id": "txn-42"})
	require.Equal(t, 200, paid.code, paid.body.Raw)
	assert.True(t, paid.Get("data.is_paid").Bool())

	again := s.do(http.MethodPost, "/api/v1/admin/orders/"+orderID+"/pay", adminToken, map[string]string{"transaction_id": "txn-43"})
	assert.Equal(t, "ALREADY_PAID", again.Get("error.code").String())

	users := s.do(http.MethodGet, "/api/v1/admin/users?role=client", adminToken, nil)
	assert.Equal(t, int64(1), users.Get("meta.total").Int())

	clientID := users.Get("data.0.id").String()
	changed := s.do(http.MethodPut, "/api/v1/admin/users", adminToken, map[string]string{"user_id": clientID, "role": "SEO"})
	assert.Equal(t, "SEO", changed.Get("data.role").String())

	created := s.do(http.MethodPost, "/api/v1/admin/products", adminToken, map[string]any{
		"title": "New Hoodie", "price": "55.5", "sizes": []string{"S", "xl"},
		"type": "hoodies", "gender": "women", "in_stock": 4,
	})
	require.Equal(t, 201, created.code, created.body.Raw)
	assert.Equal(t, "new_hoodie", created.Get("data.slug").String())

	badSize := s.do(http.MethodPost, "/api/v1/admin/products", adminToken, map[string]any{
		"title": "Bad Hoodie", "price": "10", "sizes": []string{"HUGE"}, "type": "hoodies", "gender": "women",
	})
	assert.Equal(t, "VALIDATION_ERROR", badSize.Get("error.code").String())

	productID := created.Get("data.id").String()
	updated := s.do(http.MethodPut, "/api/v1/admin/products/"+productID, adminToken, map[string]any{"in_stock": 0})
	assert.Equal(t, int64(0), updated.Get("data.in_stock").Int())

	listed := s.do(http.MethodGet, "/api/v1/admin/products?page_size=2", adminToken, nil)
	assert.Equal(t, int64(4), listed.Get("meta.total").Int())
	assert.Equal(t, int64(2), listed.Get("meta.total_pages").Int())
}

func TestAdminUpload(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.register("Admin", "admin@example.com")
	s.promote("admin@example.com", identity.RoleSuperUser)

	upload := func(content []byte) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("file", "shirt.png")
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/upload", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+adminToken)
		w := httptest.NewRecorder()
		s.engine.ServeHTTP(w, req)
		return w
	}

	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)
	w := upload(png)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, gjson.GetBytes(w.Body.Bytes(), "data.url").String(), "http://cdn.test/images/products/")

	w = upload([]byte("%PDF-1.4 not an image"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_FILE_TYPE", gjson.GetBytes(w.Body.Bytes(), "error.code").String())
}
