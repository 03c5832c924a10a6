package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/enosefelix/job-finder-sub000/internal/api/dto"
	"github.com/enosefelix/job-finder-sub000/internal/api/http/handlers"
	"github.com/enosefelix/job-finder-sub000/internal/auth"
	"github.com/enosefelix/job-finder-sub000/internal/domain"
	"github.com/enosefelix/job-finder-sub000/internal/events"
	"github.com/enosefelix/job-finder-sub000/internal/observability"
	"github.com/enosefelix/job-finder-sub000/internal/repository"
	"github.com/enosefelix/job-finder-sub000/internal/service"
	"github.com/enosefelix/job-finder-sub000/internal/storage"
)

type testServer struct {
	t      *testing.T
	app    *fiber.App
	store  *repository.MemoryStore
	tokens *auth.TokenManager
	blobs  *storage.LocalStorage
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := repository.NewMemoryStore()
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	prom := fiberprometheus.NewWithRegistry(reg, "job-finder-test", "fiber", "", nil)
	blobs, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	dispatcher := events.NewInMemoryDispatcher(nil)
	validate := dto.NewValidator()
	listings := service.NewListingService(service.ListingDependencies{Store: store, Dispatcher: dispatcher, Metrics: metrics})
	deletions := service.NewDeletionService(service.DeletionDependencies{Store: store, Blobs: blobs, Dispatcher: dispatcher, Metrics: metrics})
	users := service.NewUserService(service.UserDependencies{Store: store, Dispatcher: dispatcher, Metrics: metrics})
	sweeper := service.NewBlobSweeper(service.BlobSweeperDependencies{Store: store, Blobs: blobs, Metrics: metrics, BatchSize: 10, MaxAttempts: 3})
	tokens := auth.NewTokenManager("test-secret", 5)

	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), metrics, prom, 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("job-finder", "test", nil),
		Listings:       handlers.NewListingsHandler(listings, deletions, validate),
		Admin:          handlers.NewAdminHandler(users, sweeper, validate),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, store.Repos().Users),
		Prometheus:     prom,
	})
	return &testServer{t: t, app: app, store: store, tokens: tokens, blobs: blobs}
}

func (s *testServer) user(email string, role domain.UserRole) domain.User {
	s.t.Helper()
	u := domain.User{Email: email, Role: role, Status: domain.UserStatusActive, Verified: true}
	require.NoError(s.t, s.store.Repos().Users.Create(context.Background(), &u))
	return u
}

func (s *testServer) listing(creator domain.User, status domain.ListingStatus) domain.JobListing {
	s.t.Helper()
	l := domain.JobListing{Title: "Go Developer", Status: status, CreatedBy: creator.ID}
	require.NoError(s.t, s.store.Repos().Listings.Create(context.Background(), &l))
	return l
}

func (s *testServer) do(method, path string, as *domain.User, body any) (int, envelope) {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		token, _, err := s.tokens.GenerateToken(as.ID, as.Role)
		require.NoError(s.t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(s.t, json.Unmarshal(raw, &env))
	}
	return resp.StatusCode, env
}

func TestHealthAndUnknownRoute(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(http.MethodGet, "/health/live", nil, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = s.do(http.MethodGet, "/health/ready", nil, nil)
	assert.Equal(t, http.StatusOK, status)

	status, env := s.do(http.MethodGet, "/nowhere", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestUpdateListingStatus(t *testing.T) {
	s := newTestServer(t)
	admin := s.user("admin@example.com", domain.UserRoleAdmin)
	member := s.user("member@example.com", domain.UserRoleUser)
	listing := s.listing(member, domain.ListingStatusPending)
	path := "/admin/job-listings/" + listing.ID + "/status"

	status, env := s.do(http.MethodPatch, path, &admin, map[string]string{"status": "APPROVED"})
	require.Equal(t, http.StatusOK, status)
	var body map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Equal(t, "APPROVED", body["status"])
	assert.Equal(t, admin.ID, body["approved_by"])
	poster := body["poster"].(map[string]any)
	assert.Equal(t, "member@example.com", poster["email"])
	assert.NotContains(t, poster, "password_hash")

	status, env = s.do(http.MethodPatch, path, &admin, map[string]string{"status": "APPROVED"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_TRANSITION", env.Error.Code)
	assert.Equal(t, "Job listing is already Approved", env.Error.Message)

	status, env = s.do(http.MethodPatch, path, &admin, map[string]string{"status": "ARCHIVED"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)

	status, _ = s.do(http.MethodPatch, path, &member, map[string]string{"status": "REJECTED"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.do(http.MethodPatch, path, nil, map[string]string{"status": "REJECTED"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env = s.do(http.MethodPatch, "/admin/job-listings/"+uuid.NewString()+"/status", &admin, map[string]string{"status": "REJECTED"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Job Listing not found", env.Error.Message)
}

func TestGetListing(t *testing.T) {
	s := newTestServer(t)
	member := s.user("member@example.com", domain.UserRoleUser)
	listing := s.listing(member, domain.ListingStatusPending)

	status, env := s.do(http.MethodGet, "/job-listings/"+listing.ID, &member, nil)
	require.Equal(t, http.StatusOK, status)
	var body dto.ListingResponse
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Equal(t, "Pending", body.StatusLabel)

	status, env = s.do(http.MethodGet, "/job-listings/not-a-uuid", &member, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
}

func TestDeleteListing(t *testing.T) {
	s := newTestServer(t)
	owner := s.user("owner@example.com", domain.UserRoleUser)
	stranger := s.user("stranger@example.com", domain.UserRoleUser)
	listing := s.listing(owner, domain.ListingStatusApproved)

	resume := "resumes/owner.pdf"
	require.NoError(t, os.MkdirAll(filepath.Join(s.blobs.Root(), "resumes"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(s.blobs.Root(), resume), []byte("pdf"), 0o644))
	require.NoError(t, s.store.Repos().Applications.Create(context.Background(), &domain.JobListingApplication{
		JobListingID: listing.ID, UserID: stranger.ID, Resume: &resume,
	}))

	status, env := s.do(http.MethodDelete, "/job-listings/"+listing.ID, &stranger, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	status, env = s.do(http.MethodDelete, "/job-listings/"+listing.ID, &owner, nil)
	require.Equal(t, http.StatusOK, status)
	var result service.DeletionResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, int64(1), result.ApplicationsDeleted)
	assert.Equal(t, 1, result.BlobsDeleted)

	_, err := os.Stat(filepath.Join(s.blobs.Root(), resume))
	assert.True(t, os.IsNotExist(err))

	status, env = s.do(http.MethodDelete, "/job-listings/"+listing.ID, &owner, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Job Listing not found", env.Error.Message)
}

func TestAdminUserRoutesAndSweep(t *testing.T) {
	s := newTestServer(t)
	admin := s.user("admin@example.com", domain.UserRoleAdmin)
	member := s.user("member@example.com", domain.UserRoleUser)
	approved := s.listing(member, domain.ListingStatusApproved)

	status, env := s.do(http.MethodPost, "/admin/users/"+member.ID+"/suspend", &admin, nil)
	require.Equal(t, http.StatusOK, status)
	var suspension dto.SuspensionResponse
	require.NoError(t, json.Unmarshal(env.Data, &suspension))
	assert.Equal(t, int64(1), suspension.ListingsDowngraded)
	assert.Equal(t, domain.UserStatusSuspended, suspension.User.Status)

	got, err := s.store.Repos().Listings.GetByID(context.Background(), approved.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ListingStatusPending, got.Status)

	status, _ = s.do(http.MethodGet, "/job-listings/"+approved.ID, &member, nil)
	assert.Equal(t, http.StatusUnauthorized, status, "suspended users cannot act")

	status, env = s.do(http.MethodPost, "/admin/users/"+member.ID+"/suspend", &admin, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "User is already Suspended", env.Error.Message)

	status, env = s.do(http.MethodPatch, "/admin/job-listings/"+approved.ID+"/status", &admin, map[string]string{"status": "APPROVED"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	status, _ = s.do(http.MethodPost, "/admin/users/"+member.ID+"/reactivate", &admin, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = s.do(http.MethodPatch, "/admin/job-listings/"+approved.ID+"/status", &admin, map[string]string{"status": "APPROVED"})
	assert.Equal(t, http.StatusOK, status, "approval works again after reactivation")

	status, env = s.do(http.MethodPost, "/admin/blob-deletions/sweep", &admin, nil)
	require.Equal(t, http.StatusOK, status)
	var sweep service.SweepResult
	require.NoError(t, json.Unmarshal(env.Data, &sweep))
	assert.Zero(t, sweep.Scanned)

	status, env = s.do(http.MethodGet, "/admin/blob-deletions", &admin, nil)
	require.Equal(t, http.StatusOK, status)
	var pending []dto.BlobDeletionResponse
	require.NoError(t, json.Unmarshal(env.Data, &pending))
	assert.Empty(t, pending)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	admin := s.user("admin@example.com", domain.UserRoleAdmin)
	listing := s.listing(admin, domain.ListingStatusPending)

	status, _ := s.do(http.MethodPatch, "/admin/job-listings/"+listing.ID+"/status", &admin, map[string]string{"status": "REJECTED"})
	require.Equal(t, http.StatusOK, status)

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "jobfinder_listing_transitions_total")
}
