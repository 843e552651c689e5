package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farm-management/internal/config"
)

func TestRender_FarmNotification(t *testing.T) {
	html, err := render("farm_notification.html", farmNotificationData{
		Title:    "Spray window",
		Name:     "Alice",
		FarmName: "North Field",
		Message:  "Spray block <B> before 10am",
		Link:     "https://farm.example.com/notifications",
	})

	require.NoError(t, err)
	assert.Contains(t, html, "<title>Spray window</title>")
	assert.Contains(t, html, "Hello Alice,")
	assert.Contains(t, html, "for <strong>North Field</strong>")
	assert.Contains(t, html, "Spray block &lt;B&gt; before 10am")
	assert.Contains(t, html, `href="https://farm.example.com/notifications"`)
}

func TestRender_WithoutFarm(t *testing.T) {
	html, err := render("farm_notification.html", farmNotificationData{Title: "Hi", Name: "Bob", Message: "m"})

	require.NoError(t, err)
	assert.NotContains(t, html, "<strong>")
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, err := render("missing.html", farmNotificationData{})
	assert.Error(t, err)
}

func TestFarmNotificationSubject(t *testing.T) {
	assert.Equal(t, "Harvest due - North Field", farmNotificationSubject("Harvest due", "North Field"))
	assert.Equal(t, "Harvest due", farmNotificationSubject("Harvest due", ""))
}

func TestSendFarmNotificationEmail(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/emails"), r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"email-1"}`))
	}))
	defer srv.Close()

	svc := NewService(&config.Config{
		ResendAPIKey: "re_test",
		FromEmail:    "noreply@farm.example.com",
		Domain:       "farm.example.com",
	}).(*service)
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	svc.client.BaseURL = base

	err = svc.SendFarmNotificationEmail(context.Background(), "alice@example.com", "Alice", "North Field", "Harvest due", "Harvest in 3 days")

	require.NoError(t, err)
	assert.Equal(t, "Harvest due - North Field", got["subject"])
	assert.Equal(t, "Farm Management <noreply@farm.example.com>", got["from"])
	assert.Equal(t, []any{"alice@example.com"}, got["to"])
	assert.Contains(t, got["html"], "Harvest in 3 days")
	assert.Contains(t, got["html"], "https://farm.example.com/notifications")
}
