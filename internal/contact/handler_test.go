package contact

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chris-code08/Day-71-blog-for-deployment/internal/render"
	"github.com/chris-code08/Day-71-blog-for-deployment/internal/telemetry/metrics"
)

type mailerMock struct {
	sent    []Message
	sendErr error
}

func (m *mailerMock) Send(msg Message) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, msg)
	return nil
}

func newHandlerTestSetup(t *testing.T) (*mailerMock, *mux.Router) {
	t.Helper()

	renderer, err := render.New()
	require.NoError(t, err)

	mailer := &mailerMock{}
	handler := NewHandler(mailer, renderer, metrics.NewTestManager())

	router := mux.NewRouter()
	handler.SetupRoutes(router)

	return mailer, router
}

func postContactForm(router *mux.Router, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/contact", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestHandler_handleContactPage(t *testing.T) {
	_, router := newHandlerTestSetup(t)

	req := httptest.NewRequest("GET", "/contact", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Contact Me")
}

func TestHandler_handleContact(t *testing.T) {
	mailer, router := newHandlerTestSetup(t)

	rr := postContactForm(router, url.Values{
		"name":    {"Mila"},
		"email":   {"mila@example.com"},
		"phone":   {"+49123456"},
		"message": {"hello there"},
	})

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Successfully sent your message")
	assert.Contains(t, rr.Body.String(), "Reference:")

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "Mila", mailer.sent[0].Name)
	assert.Equal(t, "mila@example.com", mailer.sent[0].Email)
	assert.Equal(t, "+49123456", mailer.sent[0].Phone)
	assert.Equal(t, "hello there", mailer.sent[0].Message)
}

func TestHandler_handleContact_missingFields(t *testing.T) {
	mailer, router := newHandlerTestSetup(t)

	rr := postContactForm(router, url.Values{
		"name":  {"Mila"},
		"phone": {"+49123456"},
	})

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Name, email and message are required")
	// submitted values survive the round trip
	assert.Contains(t, rr.Body.String(), "Mila")
	assert.Empty(t, mailer.sent)
}

func TestHandler_handleContact_mailerFailure(t *testing.T) {
	mailer, router := newHandlerTestSetup(t)
	mailer.sendErr = errors.New("smtp down")

	rr := postContactForm(router, url.Values{
		"name":    {"Mila"},
		"email":   {"mila@example.com"},
		"message": {"hello there"},
	})

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Failed to send your message")
	assert.Empty(t, mailer.sent)
}
