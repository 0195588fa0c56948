package handlers_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/linesmerrill/rider-safety-api/api"
	"github.com/linesmerrill/rider-safety-api/api/handlers"
	"github.com/linesmerrill/rider-safety-api/api/testhelpers"
	"github.com/linesmerrill/rider-safety-api/config"
	"github.com/linesmerrill/rider-safety-api/databases"
	"github.com/linesmerrill/rider-safety-api/databases/mocks"
	"github.com/linesmerrill/rider-safety-api/models"
	"github.com/linesmerrill/rider-safety-api/moderation"
)

type fixedVerdict models.Verdict

func (v fixedVerdict) Classify(context.Context, []byte, string) models.Verdict {
	return models.Verdict(v)
}

// recordingDispatcher stands in for the scan worker pool
type recordingDispatcher struct {
	dispatched chan models.Message
}

func (d *recordingDispatcher) Dispatch(msg models.Message) bool {
	d.dispatched <- msg
	return true
}

type fixture struct {
	users    *mocks.UserDatabase
	flags    *mocks.ContentFlagDatabase
	images   *mocks.ImageDatabase
	blobs    *mocks.BlobStore
	messages *mocks.MessageDatabase
	scans    *recordingDispatcher
	conf     config.Config
	verdict  models.Verdict
	noBlobs  bool
}

func newFixture() *fixture {
	return &fixture{
		users:    &mocks.UserDatabase{},
		flags:    &mocks.ContentFlagDatabase{},
		images:   &mocks.ImageDatabase{},
		blobs:    &mocks.BlobStore{},
		messages: &mocks.MessageDatabase{},
		scans:    &recordingDispatcher{dispatched: make(chan models.Message, 8)},
		conf: config.Config{
			JWTSecret:         testhelpers.TestSecret,
			MaxUploadBytes:    1 << 20,
			RateLimitMessages: 100,
			RateLimitUploads:  100,
			RateLimitWindow:   time.Minute,
		},
		verdict: models.VerdictApproved,
	}
}

func (f *fixture) router() *mux.Router {
	logs := &mocks.ModerationLogDatabase{}
	logs.On("InsertOne", mock.Anything, mock.Anything).Return(nil).Maybe()
	audit := moderation.NewAuditLog(logs)
	accounts := moderation.NewAccounts(f.users, audit)

	var blobs databases.BlobStore = f.blobs
	if f.noBlobs {
		blobs = nil
	}

	a := handlers.App{Config: f.conf, Metrics: api.NewMetricsCollector(16)}
	svc := handlers.Services{
		Accounts: accounts,
		Queue:    moderation.NewQueue(f.flags, accounts, audit),
		Images:   moderation.NewImages(fixedVerdict(f.verdict), blobs, f.images, audit, f.conf.MaxUploadBytes),
		Scans:    f.scans,
		Messages: f.messages,
	}
	return a.New(context.Background(), svc, api.NewFixedWindowCounter(f.conf.RateLimitWindow))
}

// do sends a request through the full router; an empty userID sends no token
func do(t *testing.T, r http.Handler, method, path string, body io.Reader, userID string, roles ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if userID != "" {
		testhelpers.Authorize(t, req, userID, roles...)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestHealthCheck(t *testing.T) {
	rr := do(t, newFixture().router(), "GET", "/health", nil, "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"alive": true}`, rr.Body.String())
}

func TestRoutesRequireToken(t *testing.T) {
	r := newFixture().router()
	for _, path := range []string{"/api/v1/admin/flags", "/api/v1/admin/images", "/api/v1/admin/users/rider-1/risk-flags"} {
		rr := do(t, r, "GET", path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}
}

func TestMetricsHandlerIsForModerators(t *testing.T) {
	r := newFixture().router()

	assert.Equal(t, http.StatusForbidden, do(t, r, "GET", "/api/v1/admin/metrics", nil, "rider-1").Code)

	rr := do(t, r, "GET", "/api/v1/admin/metrics", nil, "admin-1", models.RoleAdmin)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"routes"`)
}
