package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fekuna/omnipos-backoffice-service/internal/auth"
	"github.com/fekuna/omnipos-backoffice-service/internal/model"
	"github.com/fekuna/omnipos-backoffice-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type stubPinger struct{ err error }

func (p stubPinger) PingContext(context.Context) error { return p.err }

type stubResolver map[string]*auth.UserContext

func (s stubResolver) ResolveSession(_ context.Context, userID string) (*auth.UserContext, error) {
	return s[userID], nil
}

func newTestRouter(t *testing.T, db Pinger) (*gin.Engine, *auth.TokenManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	resolver := stubResolver{
		"owner":  {UserID: "owner", BusinessID: "b1", Roles: []model.Role{model.RoleOwner}},
		"driver": {UserID: "driver", BusinessID: "b1", Roles: []model.Role{model.RoleDriver}},
		"fresh":  {UserID: "fresh"},
	}
	mw := auth.NewMiddleware(tokens, resolver, logger.NewNop())
	r := NewRouter(RouterConfig{AppEnv: "development", CORSOrigins: []string{"http://localhost:5173"}}, &Handlers{}, mw, db, logger.NewNop())
	return r, tokens
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"database up", nil, http.StatusOK},
		{"database down", errors.New("connection refused"), http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRouter(t, stubPinger{err: tt.err})
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

// Every case is rejected by middleware before a handler runs.
func TestRouteGuards(t *testing.T) {
	r, tokens := newTestRouter(t, stubPinger{})
	token := func(user string) string {
		tok, _, err := tokens.Issue(user, user+"@example.com")
		if err != nil {
			t.Fatal(err)
		}
		return tok
	}

	tests := []struct {
		name   string
		method string
		path   string
		user   string
		want   int
	}{
		{"no token", http.MethodGet, "/api/v1/inventory", "", http.StatusUnauthorized},
		{"unknown user", http.MethodGet, "/api/v1/me", "ghost", http.StatusUnauthorized},
		{"not onboarded", http.MethodGet, "/api/v1/orders", "fresh", http.StatusForbidden},
		{"driver on inventory", http.MethodGet, "/api/v1/inventory", "driver", http.StatusForbidden},
		{"driver on team", http.MethodGet, "/api/v1/team", "driver", http.StatusForbidden},
		{"owner on driver routes", http.MethodGet, "/api/v1/driver/orders", "owner", http.StatusForbidden},
		{"owner on admin", http.MethodGet, "/api/v1/admin/stats", "owner", http.StatusForbidden},
		{"owner on admin function", http.MethodPost, "/api/v1/functions/admin-update-profile", "owner", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.user != "" {
				req.Header.Set("Authorization", "Bearer "+token(tt.user))
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(logger.NewNop()), AccessLog(logger.NewNop()))
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestGRPCHealth(t *testing.T) {
	srv, hs := NewGRPCServer(logger.NewNop())
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go srv.Serve(lis)
	defer srv.Stop()

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	client := healthpb.NewHealthClient(conn)

	check := func() healthpb.HealthCheckResponse_ServingStatus {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		res, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
		if err != nil {
			t.Fatalf("health check: %v", err)
		}
		return res.Status
	}

	if got := check(); got != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("before bootstrap = %v", got)
	}
	SetServing(hs, true)
	if got := check(); got != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("after bootstrap = %v", got)
	}
}
