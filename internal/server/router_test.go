package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/example/smartblinds/internal/config"
	"github.com/example/smartblinds/internal/datamodels/adminuser"
	"github.com/example/smartblinds/internal/datamodels/order"
	"github.com/example/smartblinds/internal/notify"
	"github.com/example/smartblinds/internal/service"
)

type stubOrderRepo struct{}

func (stubOrderRepo) Create(ctx context.Context, o *order.Order) error { return nil }
func (stubOrderRepo) GetByRef(ctx context.Context, ref string) (*order.Order, error) {
	return nil, errors.New("no such order")
}
func (stubOrderRepo) List(ctx context.Context, f order.Filter, limit, offset int) ([]*order.Order, error) {
	return nil, nil
}
func (stubOrderRepo) Count(ctx context.Context, f order.Filter) (int64, error) { return 0, nil }
func (stubOrderRepo) UpdateStatus(ctx context.Context, ref string, s order.Status) error {
	return nil
}
func (stubOrderRepo) Delete(ctx context.Context, ref string) (*order.Order, error) {
	return nil, errors.New("no such order")
}

type stubAdminRepo struct{}

func (stubAdminRepo) GetByUsername(ctx context.Context, username string) (*adminuser.AdminUser, error) {
	return nil, errors.New("no such admin")
}
func (stubAdminRepo) Create(ctx context.Context, u *adminuser.AdminUser) error { return nil }
func (stubAdminRepo) Update(ctx context.Context, u *adminuser.AdminUser) error { return nil }
func (stubAdminRepo) Count(ctx context.Context) (int64, error)                 { return 1, nil }

func newPublicTestApp(t *testing.T) *iris.Application {
	t.Helper()
	repo := stubOrderRepo{}
	mailer := notify.NewMailer(&config.SMTPConfig{}, zap.NewNop())
	notifier := service.NewNotificationService(nil, repo, mailer, zap.NewNop())

	app := iris.New()
	app.Logger().SetLevel("disable")
	mountPublicAPI(app, publicDeps{
		payments: service.NewPaymentService(nil, "eur", zap.NewNop()),
		orders:   service.NewOrderService(repo, nil, notifier, nil, zap.NewNop()),
		queries:  service.NewQueryService(repo, zap.NewNop()),
		notifier: notifier,
	})
	if err := app.Build(); err != nil {
		t.Fatalf("build app: %v", err)
	}
	return app
}

func newAdminTestApp(t *testing.T) *iris.Application {
	t.Helper()
	repo := stubOrderRepo{}
	mailer := notify.NewMailer(&config.SMTPConfig{}, zap.NewNop())
	notifier := service.NewNotificationService(nil, repo, mailer, zap.NewNop())
	jwt := &config.JWTConfig{Secret: "test-secret"}

	app := iris.New()
	app.Logger().SetLevel("disable")
	mountAdminAPI(app, adminDeps{
		orders:  service.NewOrderService(repo, nil, notifier, nil, zap.NewNop()),
		queries: service.NewQueryService(repo, zap.NewNop()),
		admins:  service.NewAdminService(stubAdminRepo{}, jwt, zap.NewNop()),
		jwt:     jwt,
	})
	if err := app.Build(); err != nil {
		t.Fatalf("build app: %v", err)
	}
	return app
}

func doRequest(app *iris.Application, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func TestPublicWrongMethodAnswers405(t *testing.T) {
	app := newPublicTestApp(t)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/confirm-payment"},
		{http.MethodGet, "/api/create-payment-intent"},
		{http.MethodGet, "/api/send-order-confirmation"},
		{http.MethodDelete, "/api/get-orders"},
	}
	for _, tc := range cases {
		if rec := doRequest(app, tc.method, tc.path); rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s = %d, want %d", tc.method, tc.path, rec.Code, http.StatusMethodNotAllowed)
		}
	}
}

func TestPublicRoutingStillServesAndRejects(t *testing.T) {
	app := newPublicTestApp(t)

	if rec := doRequest(app, http.MethodGet, "/api/health"); rec.Code != http.StatusOK {
		t.Errorf("GET /api/health = %d, want 200", rec.Code)
	}
	if rec := doRequest(app, http.MethodGet, "/api/get-orders"); rec.Code != http.StatusOK {
		t.Errorf("GET /api/get-orders = %d, want 200", rec.Code)
	}
	if rec := doRequest(app, http.MethodGet, "/api/no-such-route"); rec.Code != http.StatusNotFound {
		t.Errorf("GET /api/no-such-route = %d, want 404", rec.Code)
	}
}

func TestAdminWrongMethodAnswers405(t *testing.T) {
	app := newAdminTestApp(t)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/update-order-status"},
		{http.MethodGet, "/api/login"},
		{http.MethodPost, "/api/delete-order"},
	}
	for _, tc := range cases {
		if rec := doRequest(app, tc.method, tc.path); rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s = %d, want %d", tc.method, tc.path, rec.Code, http.StatusMethodNotAllowed)
		}
	}
}
