package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/outreachly/outreach-backend/internal/controller"
	"github.com/outreachly/outreach-backend/internal/handler"
	"github.com/outreachly/outreach-backend/internal/logger"
	"github.com/outreachly/outreach-backend/internal/middleware"
	"github.com/outreachly/outreach-backend/internal/repository"
	"github.com/outreachly/outreach-backend/internal/router"
	"github.com/outreachly/outreach-backend/internal/service"
)

func newTestRouter(t *testing.T) (http.Handler, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	dbx := sqlx.NewDb(conn, "postgres")
	log := logger.Nop()

	emails := &repository.EmailRepository{DB: dbx}
	c := router.Controllers{
		Email:    &controller.EmailController{EmailService: &service.EmailService{EmailRepo: emails, Log: log}, Log: log},
		Tracking: &controller.TrackingController{TrackingService: &service.TrackingService{EmailRepo: emails, Log: log}},
		Import:   &controller.ImportController{Log: log},
		FollowUp: &controller.FollowUpController{Log: log},
	}
	return router.New(c, handler.New(dbx, nil, log), middleware.New(log), []string{"http://localhost:5173"}), mock
}

func TestTrackRouteServesPixelForUnknownID(t *testing.T) {
	r, _ := newTestRouter(t)

	// a malformed id never reaches the store
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/track/does-not-exist", nil))

	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/gif" {
		t.Errorf("expected pixel, got %d %q", w.Code, w.Header().Get("Content-Type"))
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("request id middleware not applied")
	}
}

func TestCORSPreflight(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/send-email", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("expected allowed origin echoed, got %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/api/send-email", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unknown origin should not be allowed, got %q", got)
	}
}

func TestHealthRoute(t *testing.T) {
	r, mock := newTestRouter(t)
	mock.ExpectPing()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUnknownRoute(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
