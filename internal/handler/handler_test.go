package handler_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"farm-management/internal/config"
	"farm-management/internal/domain"
	"farm-management/internal/handler"
	"farm-management/internal/middleware"
	"farm-management/internal/mocks"
	"farm-management/internal/service/navigation"
	"farm-management/internal/service/notification"
)

type testApp struct {
	app   *fiber.App
	nav   *mocks.NavigationService
	notif *mocks.NotificationService
	user  *domain.User
}

func newTestApp(t *testing.T, user *domain.User) *testApp {
	t.Helper()

	ta := &testApp{
		nav:   new(mocks.NavigationService),
		notif: new(mocks.NotificationService),
		user:  user,
	}
	h := &handler.Handlers{
		Navigation:   handler.NewNavigationHandler(ta.nav),
		Shell:        handler.NewShellHandler(ta.nav, ta.notif),
		Notification: handler.NewNotificationHandler(ta.notif),
		Admin:        handler.NewAdminHandler(ta.notif),
	}

	app := fiber.New(fiber.Config{ErrorHandler: middleware.NewErrorHandler(zap.NewNop())})
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		if ta.user != nil {
			c.Locals(middleware.UserContextKey, ta.user)
			c.Locals(middleware.UserIDContextKey, ta.user.ID)
		}
		return c.Next()
	})

	api.Get("/navigation", h.Navigation.Get)
	api.Get("/shell", h.Shell.Get)
	api.Get("/notifications", h.Notification.List)
	api.Get("/notifications/unread-count", h.Notification.GetUnreadCount)
	api.Post("/notifications/mark-all-read", h.Notification.MarkAllAsRead)
	api.Delete("/notifications/session", h.Notification.ReleaseSession)
	api.Patch("/notifications/:id/read", h.Notification.MarkAsRead)
	api.Post("/notifications/:id/delete-request", h.Notification.RequestDelete)
	api.Delete("/notifications/:id", h.Notification.Delete)
	api.Get("/farms/:farmId/notifications", h.Notification.List)
	api.Post("/admin/notifications", middleware.RequireAnyRole(domain.RoleAdmin, domain.RoleSuperuser), h.Admin.SendNotification)

	ta.app = app
	return ta
}

func (ta *testApp) do(t *testing.T, method, target string, body io.Reader) (*http.Response, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp, out
}

func farmUser() *domain.User {
	return &domain.User{ID: uuid.New(), UserType: domain.UserTypeFarmUser, IsActive: true}
}

func TestNavigationHandler_Get(t *testing.T) {
	user := farmUser()
	ta := newTestApp(t, user)

	ta.nav.On("Resolve", mock.Anything, user, "/farm/42/dashboard", "42").
		Return(&navigation.Menu{Role: domain.RoleFarmUser, RoleLabel: "farm_user", Entries: []domain.NavEntry{{Label: "Dashboard"}}}, nil).Once()

	resp, body := ta.do(t, http.MethodGet, "/api/v1/navigation?path=/farm/42/dashboard&farm_id=42", nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "farm_user", body["role"])
	assert.Len(t, body["entries"], 1)
	ta.nav.AssertExpectations(t)
}

func TestNavigationHandler_FarmDenied(t *testing.T) {
	user := farmUser()
	ta := newTestApp(t, user)

	ta.nav.On("Resolve", mock.Anything, user, "/farm/9/sales", "").Return(nil, navigation.ErrFarmAccessDenied).Once()

	resp, body := ta.do(t, http.MethodGet, "/api/v1/navigation?path=/farm/9/sales", nil)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body["code"])
	assert.Equal(t, "Farm not found or access denied", body["message"])
}

func TestNavigationHandler_Unauthenticated(t *testing.T) {
	ta := newTestApp(t, nil)

	resp, body := ta.do(t, http.MethodGet, "/api/v1/navigation", nil)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", body["code"])
}

func TestShellHandler_Get(t *testing.T) {
	user := farmUser()
	ta := newTestApp(t, user)

	ta.nav.On("Resolve", mock.Anything, user, "/farm/42/calendar", "").
		Return(&navigation.Menu{Role: domain.RoleFarmUser}, nil).Once()
	ta.notif.On("GetUnreadCount", mock.Anything, domain.Scope{UserID: user.ID, FarmID: "42"}).Return(int64(3), nil).Once()

	resp, body := ta.do(t, http.MethodGet, "/api/v1/shell?path=/farm/42/calendar", nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(3), body["unread_count"])
	assert.NotNil(t, body["menu"])
	ta.nav.AssertExpectations(t)
	ta.notif.AssertExpectations(t)
}

func TestShellHandler_PropagatesFailure(t *testing.T) {
	user := farmUser()
	ta := newTestApp(t, user)

	ta.nav.On("Resolve", mock.Anything, user, "/dashboard", "").Return(nil, domain.ErrNoRole).Once()
	ta.notif.On("GetUnreadCount", mock.Anything, domain.Scope{UserID: user.ID}).Return(int64(0), nil).Maybe()

	resp, body := ta.do(t, http.MethodGet, "/api/v1/shell?path=/dashboard", nil)

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", body["code"])
}

func TestNotificationHandler_List(t *testing.T) {
	user := farmUser()
	ta := newTestApp(t, user)
	scope := domain.Scope{UserID: user.ID, FarmID: "42"}

	ta.notif.On("Feed", mock.Anything, scope, notification.FilterDue).
		Return(&notification.Snapshot{Scope: scope, Filter: notification.FilterDue, Items: []notification.View{}}, nil).Twice()

	resp, body := ta.do(t, http.MethodGet, "/api/v1/farms/42/notifications?filter=due", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "due", body["filter"])

	resp, _ = ta.do(t, http.MethodGet, "/api/v1/notifications?filter=due&farm_id=42", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ta.notif.AssertExpectations(t)
}

func TestNotificationHandler_UnknownFilter(t *testing.T) {
	ta := newTestApp(t, farmUser())

	resp, body := ta.do(t, http.MethodGet, "/api/v1/notifications?filter=everything", nil)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "BAD_REQUEST", body["code"])
	ta.notif.AssertNotCalled(t, "Feed", mock.Anything, mock.Anything, mock.Anything)
}

func TestNotificationHandler_MarkAsRead(t *testing.T) {
	user := farmUser()
	ta := newTestApp(t, user)
	id := uuid.New()

	ta.notif.On("MarkAsRead", mock.Anything, domain.Scope{UserID: user.ID}, id).
		Return(&notification.Snapshot{Counts: notification.Counts{All: 2, Unread: 1}}, nil).Once()

	resp, body := ta.do(t, http.MethodPatch, "/api/v1/notifications/"+id.String()+"/read", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["counts"].(map[string]any)["unread"])

	resp, _ = ta.do(t, http.MethodPatch, "/api/v1/notifications/not-a-uuid/read", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	ta.notif.On("MarkAsRead", mock.Anything, domain.Scope{UserID: user.ID}, mock.Anything).Return(nil, notification.ErrNotFound).Once()
	resp, _ = ta.do(t, http.MethodPatch, "/api/v1/notifications/"+uuid.NewString()+"/read", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNotificationHandler_MarkAllAsRead(t *testing.T) {
	user := farmUser()
	ta := newTestApp(t, user)

	ta.notif.On("MarkAllAsRead", mock.Anything, domain.Scope{UserID: user.ID}).
		Return(&notification.Snapshot{Notice: &notification.Notice{Level: notification.NoticeSuccess, Message: "All notifications marked as read"}}, nil).Once()

	resp, body := ta.do(t, http.MethodPost, "/api/v1/notifications/mark-all-read", nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", body["notice"].(map[string]any)["level"])
}

func TestNotificationHandler_DeleteFlow(t *testing.T) {
	user := farmUser()
	ta := newTestApp(t, user)
	scope := domain.Scope{UserID: user.ID}
	id := uuid.New()

	ta.notif.On("RequestDelete", mock.Anything, scope, id).
		Return(&notification.Confirmation{Token: "tok", NotificationID: id, Prompt: "Are you sure?"}, nil).Once()

	resp, body := ta.do(t, http.MethodPost, "/api/v1/notifications/"+id.String()+"/delete-request", nil)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "tok", body["token"])

	resp, _ = ta.do(t, http.MethodDelete, "/api/v1/notifications/"+id.String(), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "confirmation token is required")

	ta.notif.On("ConfirmDelete", mock.Anything, scope, id, "stale").Return(nil, notification.ErrInvalidConfirmation).Once()
	resp, body = ta.do(t, http.MethodDelete, "/api/v1/notifications/"+id.String()+"?confirm=stale", nil)
	assert.Equal(t, http.StatusGone, resp.StatusCode)
	assert.Equal(t, "GONE", body["code"])

	ta.notif.On("ConfirmDelete", mock.Anything, scope, id, "tok").Return(&notification.Snapshot{}, nil).Once()
	resp, _ = ta.do(t, http.MethodDelete, "/api/v1/notifications/"+id.String()+"?confirm=tok", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ta.notif.AssertExpectations(t)
}

func TestNotificationHandler_ReleaseSession(t *testing.T) {
	user := farmUser()
	ta := newTestApp(t, user)

	ta.notif.On("Release", domain.Scope{UserID: user.ID}).Return().Once()

	resp, _ := ta.do(t, http.MethodDelete, "/api/v1/notifications/session", nil)

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	ta.notif.AssertExpectations(t)
}

func TestNotificationHandler_InternalError(t *testing.T) {
	user := farmUser()
	ta := newTestApp(t, user)

	ta.notif.On("GetUnreadCount", mock.Anything, domain.Scope{UserID: user.ID}).Return(int64(0), errors.New("boom")).Once()

	resp, body := ta.do(t, http.MethodGet, "/api/v1/notifications/unread-count", nil)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "INTERNAL_ERROR", body["code"])
	assert.Equal(t, "Internal server error", body["message"])
	assert.NotEmpty(t, body["trace_id"])
}

func TestAdminHandler_SendNotification(t *testing.T) {
	admin := &domain.User{ID: uuid.New(), UserType: domain.UserTypeAgronomist, IsActive: true}
	payload := `{"farm_id":"42","title":"Frost warning","message":"Cover seedlings tonight","send_email":true}`

	t.Run("Admin", func(t *testing.T) {
		ta := newTestApp(t, admin)
		ta.notif.On("Send", mock.Anything, admin, domain.SendNotificationInput{
			FarmID:    "42",
			Title:     "Frost warning",
			Message:   "Cover seedlings tonight",
			SendEmail: true,
		}).Return(&notification.SendResult{FarmID: "42", Created: 3}, nil).Once()

		resp, body := ta.do(t, http.MethodPost, "/api/v1/admin/notifications", strings.NewReader(payload))

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, float64(3), body["created"])
		ta.notif.AssertExpectations(t)
	})

	t.Run("Farm user forbidden", func(t *testing.T) {
		ta := newTestApp(t, farmUser())

		resp, body := ta.do(t, http.MethodPost, "/api/v1/admin/notifications", strings.NewReader(payload))

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "FORBIDDEN", body["code"])
		ta.notif.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Invalid input", func(t *testing.T) {
		ta := newTestApp(t, admin)
		ta.notif.On("Send", mock.Anything, admin, mock.Anything).Return(nil, notification.ErrInvalidInput).Once()

		resp, _ := ta.do(t, http.MethodPost, "/api/v1/admin/notifications", strings.NewReader(`{"farm_id":"42"}`))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestNotificationHandler_FarmBoardsKeepTheirScope(t *testing.T) {
	user := farmUser()
	notifRepo := new(mocks.NotificationRepository)
	farmRepo := new(mocks.FarmRepository)

	svc := notification.NewService(notifRepo, new(mocks.UserRepository), farmRepo, nil, nil, &config.Config{
		NotificationFetchLimit: 50,
		DeleteConfirmTTL:       time.Minute,
		BoardIdleTTL:           time.Hour,
	}, zap.NewNop())
	t.Cleanup(svc.Shutdown)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.NewErrorHandler(zap.NewNop())})
	h := handler.NewNotificationHandler(svc)
	app.Get("/farms/:farmId/notifications", func(c *fiber.Ctx) error {
		c.Locals(middleware.UserContextKey, user)
		c.Locals(middleware.UserIDContextKey, user.ID)
		return c.Next()
	}, h.List)

	farmRepo.On("HasAccess", mock.Anything, mock.Anything, user.ID).Return(true, nil)

	var (
		mu      sync.Mutex
		queried []string
	)
	farmAStarted := make(chan struct{})
	releaseFarmA := make(chan struct{})
	notifRepo.On("ListByScope", mock.Anything, mock.Anything, 50).
		Run(func(args mock.Arguments) {
			farmID := strings.Clone(args.Get(1).(domain.Scope).FarmID)
			mu.Lock()
			queried = append(queried, farmID)
			mu.Unlock()
			if farmID == "AAAAAAAA" {
				close(farmAStarted)
				<-releaseFarmA
			}
		}).
		Return([]domain.Notification{}, nil)

	get := func(farmID string) (*http.Response, error) {
		return app.Test(httptest.NewRequest(http.MethodGet, "/farms/"+farmID+"/notifications", nil), -1)
	}

	resp, err := get("BBBBBBBB")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	type result struct {
		resp *http.Response
		err  error
	}
	farmADone := make(chan result, 1)
	go func() {
		resp, err := get("AAAAAAAA")
		farmADone <- result{resp, err}
	}()
	<-farmAStarted

	resp, err = get("BBBBBBBB")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	close(releaseFarmA)
	farmA := <-farmADone
	require.NoError(t, farmA.err)
	assert.Equal(t, http.StatusOK, farmA.resp.StatusCode)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"BBBBBBBB", "AAAAAAAA", "BBBBBBBB"}, queried)
	farmRepo.AssertCalled(t, "HasAccess", mock.Anything, "BBBBBBBB", user.ID)
	farmRepo.AssertCalled(t, "HasAccess", mock.Anything, "AAAAAAAA", user.ID)
}
