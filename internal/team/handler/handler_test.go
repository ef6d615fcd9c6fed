package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-backoffice-service/internal/apperror"
	"github.com/fekuna/omnipos-backoffice-service/internal/auth"
	"github.com/fekuna/omnipos-backoffice-service/internal/model"
	"github.com/fekuna/omnipos-backoffice-service/internal/team/dto"
	"github.com/fekuna/omnipos-backoffice-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

type stubUseCase struct {
	got *dto.DeleteUserInput
	err error
}

func (s *stubUseCase) ListMembers(context.Context, string) ([]*model.TeamMember, error) {
	return nil, nil
}

func (s *stubUseCase) Invite(context.Context, *dto.InviteInput) (*dto.InviteResult, error) {
	return nil, nil
}

func (s *stubUseCase) RemoveMember(context.Context, *dto.RemoveMemberInput) error { return nil }

func (s *stubUseCase) DeleteUser(_ context.Context, input *dto.DeleteUserInput) error {
	s.got = input
	return s.err
}

func TestDeleteUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	owner := &auth.UserContext{UserID: "boss", BusinessID: "b1", Roles: []model.Role{model.RoleOwner}}
	admin := &auth.UserContext{UserID: "adm", BusinessID: "b1", Roles: []model.Role{model.RoleAdmin}}

	tests := []struct {
		name      string
		user      *auth.UserContext
		body      string
		ucErr     error
		want      int
		wantOwner bool
	}{
		{"no session", nil, `{"user_id":"x"}`, nil, http.StatusUnauthorized, false},
		{"malformed body", owner, `{`, nil, http.StatusBadRequest, false},
		{"owner succeeds", owner, `{"user_id":"drv"}`, nil, http.StatusOK, true},
		{"admin is flagged as non owner", admin, `{"user_id":"drv"}`, apperror.Forbidden("Only business owners can delete users"), http.StatusForbidden, false},
		{"not found", owner, `{"user_id":"ghost"}`, apperror.NotFound("User not found in your business"), http.StatusNotFound, true},
		{"storage failure", owner, `{"user_id":"drv"}`, apperror.Internal("Failed to delete user", context.DeadlineExceeded), http.StatusInternalServerError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &stubUseCase{err: tt.ucErr}
			h := NewTeamHandler(uc, logger.NewNop())

			r := gin.New()
			r.POST("/functions/delete-user", func(c *gin.Context) {
				if tt.user != nil {
					auth.SetUser(c, tt.user)
				}
				c.Next()
			}, h.DeleteUser)

			req := httptest.NewRequest(http.MethodPost, "/functions/delete-user", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
			if uc.got != nil && uc.got.CallerIsOwner != tt.wantOwner {
				t.Errorf("CallerIsOwner = %v, want %v", uc.got.CallerIsOwner, tt.wantOwner)
			}
			if tt.want == http.StatusOK && !strings.Contains(w.Body.String(), `"success":true`) {
				t.Errorf("body = %s", w.Body.String())
			}
		})
	}
}
