package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/campushub/backend/internal/models"
	"github.com/campushub/backend/internal/notify"
	"github.com/campushub/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

// newTestContext builds an echo context for a handler-level test. A zero
// userID leaves the request unauthenticated.
func newTestContext(method, target, body string, userID uint) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != 0 {
		c.Set("user", &models.JwtCustomClaims{UserID: userID, Username: "tester"})
	}
	return c, rec
}

// newTestNotifier wires a notify.Service over mock repositories. The dispatch
// loop is not started; tests that assert on async delivery start it themselves.
func newTestNotifier() (*notify.Service, *repositories.MockNotificationRepository, *repositories.MockUserRepository, *repositories.MockGroupRepository) {
	notifRepo := &repositories.MockNotificationRepository{}
	userRepo := &repositories.MockUserRepository{}
	groupRepo := &repositories.MockGroupRepository{}
	svc := notify.NewService(log.New(io.Discard, "", 0), notifRepo, userRepo, groupRepo, noopPusher{})
	return svc, notifRepo, userRepo, groupRepo
}

type noopPusher struct{}

func (noopPusher) SendToUser(userID uint, event string, payload interface{}) {}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func httpErrorCode(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T: %v", err, err)
	}
	return he.Code
}
