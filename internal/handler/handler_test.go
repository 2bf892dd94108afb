package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	commonsRoutes "karmahub/commons/routes"
	memoryCache "karmahub/internal/cache/memory"
	"karmahub/internal/config"
	"karmahub/internal/handler"
	"karmahub/internal/identity"
	"karmahub/internal/logger"
	"karmahub/internal/notification"
	"karmahub/internal/repository/memory"
	"karmahub/internal/routes"
	"karmahub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	creator = "user-creator"
	helper  = "user-helper"
	other   = "user-other"
	admin   = "user-admin"
)

type envelope struct {
	Status    string          `json:"status"`
	ErrorCode int             `json:"errorCode"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	Errors    []struct {
		ErrorCode int             `json:"errorCode"`
		Message   string          `json:"message"`
		Data      json.RawMessage `json:"data"`
	} `json:"errors"`
}

type api struct {
	t      *testing.T
	store  *memory.Store
	router *gin.Engine
}

func newAPI(t *testing.T) *api {
	t.Helper()

	log := logger.NewNopLogger()
	store := memory.NewStore()
	stores := config.MemoryStores(store)
	sink := notification.NewLogSink(log)

	engine := service.NewLifecycleEngine(stores, nil, service.EngineConfig{}, log)
	queries := service.NewJobQueries(stores, service.NewErrorReporter(sink, log), log)
	profiles := service.NewProfileService(stores, memoryCache.NewMemoryCache(), 0, log)
	settlement, err := service.NewSettlementService(stores, profiles, "", log)
	require.NoError(t, err)

	deps := commonsRoutes.RouteDependencies{Logger: log}
	router := commonsRoutes.NewRouter(commonsRoutes.RouterConfig{ServiceName: "karmahub-test", Version: "v1"}, deps)
	routes.InitHealthRoutes(router, handler.NewHealthHandler(log, "karmahub-test", "v1"), log)
	routes.InitJobRoutes(router, handler.NewJobHandler(log, engine, queries, sink), log)
	routes.InitTicketRoutes(router, handler.NewTicketHandler(log, engine, queries, sink), log)
	routes.InitProfileRoutes(router, handler.NewProfileHandler(log, profiles, stores.ActivityLog, sink), log)
	routes.InitAdminRoutes(router, handler.NewAdminHandler(log, settlement, queries,
		config.AdminConfig{UserIDs: []string{admin}}, sink), log)

	return &api{t: t, store: store, router: router}
}

func (a *api) do(method, path, userID string, body any) (int, envelope) {
	a.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(identity.HeaderUserID, userID)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

type jobData struct {
	Job struct {
		JobID               string `json:"job_id"`
		Status              string `json:"status"`
		PendingAcceptanceID string `json:"pending_acceptance_id"`
	} `json:"job"`
	Notice *notification.Notice `json:"notice"`
}

type applicationData struct {
	Application struct {
		ApplicationID string `json:"application_id"`
		Status        string `json:"status"`
	} `json:"application"`
}

type acceptanceData struct {
	Ticket struct {
		TicketID string `json:"ticket_id"`
		Status   string `json:"status"`
	} `json:"ticket"`
}

func paidJob() map[string]any {
	return map[string]any{
		"title":        "Umzugshilfe",
		"description":  "Zwei Stunden Kisten tragen",
		"category":     "moving",
		"job_type":     "paid",
		"budget":       40,
		"karma_reward": 15,
		"location":     "Berlin",
	}
}

func (a *api) createJob(body map[string]any) string {
	a.t.Helper()
	code, env := a.do(http.MethodPost, "/api/v1/jobs", creator, body)
	require.Equal(a.t, http.StatusOK, code, env.Message)
	return decode[jobData](a.t, env.Data).Job.JobID
}

func (a *api) apply(jobID, userID string) string {
	a.t.Helper()
	code, env := a.do(http.MethodPost, "/api/v1/jobs/"+jobID+"/applications", userID, map[string]any{"message": "Ich helfe gern"})
	require.Equal(a.t, http.StatusOK, code, env.Message)
	return decode[applicationData](a.t, env.Data).Application.ApplicationID
}

func TestHealthAndMetrics(t *testing.T) {
	a := newAPI(t)

	code, env := a.do(http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "SUCCESS", env.Status)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "karmahub_http_requests_total")
}

func TestMutationsRequireIdentity(t *testing.T) {
	a := newAPI(t)

	code, env := a.do(http.MethodPost, "/api/v1/jobs", "", paidJob())
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "FAILED", env.Status)
}

func TestErrorMapping(t *testing.T) {
	a := newAPI(t)
	jobID := a.createJob(paidJob())
	a.apply(jobID, helper)

	invalid := paidJob()
	invalid["title"] = "   "

	tests := []struct {
		name   string
		method string
		path   string
		user   string
		body   any
		want   int
	}{
		{name: "validation", method: http.MethodPost, path: "/api/v1/jobs", user: creator, body: invalid, want: http.StatusBadRequest},
		{name: "malformed body", method: http.MethodPost, path: "/api/v1/jobs", user: creator, body: "not an object", want: http.StatusBadRequest},
		{name: "not found", method: http.MethodGet, path: "/api/v1/jobs/missing", want: http.StatusNotFound},
		{name: "duplicate application", method: http.MethodPost, path: "/api/v1/jobs/" + jobID + "/applications", user: helper, body: map[string]any{}, want: http.StatusConflict},
		{name: "creator applies", method: http.MethodPost, path: "/api/v1/jobs/" + jobID + "/applications", user: creator, body: map[string]any{}, want: http.StatusBadRequest},
		{name: "cancel by stranger", method: http.MethodPost, path: "/api/v1/jobs/" + jobID + "/cancel", user: other, want: http.StatusForbidden},
		{name: "applications of foreign job", method: http.MethodGet, path: "/api/v1/jobs/" + jobID + "/applications", user: other, want: http.StatusForbidden},
		{name: "unknown route", method: http.MethodGet, path: "/api/v1/nowhere", want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := a.do(tt.method, tt.path, tt.user, tt.body)
			assert.Equal(t, tt.want, code, env.Message)
			assert.Equal(t, "FAILED", env.Status)
			assert.Equal(t, tt.want, env.ErrorCode)
		})
	}
}

func TestJobFlowOverHTTP(t *testing.T) {
	a := newAPI(t)
	jobID := a.createJob(paidJob())
	applicationID := a.apply(jobID, helper)
	a.apply(jobID, other)

	code, env := a.do(http.MethodPost, "/api/v1/jobs/"+jobID+"/applications/"+applicationID+"/accept", creator,
		map[string]any{"applicant_id": helper})
	require.Equal(t, http.StatusOK, code, env.Message)
	ticketID := decode[acceptanceData](t, env.Data).Ticket.TicketID
	require.NotEmpty(t, ticketID)

	code, env = a.do(http.MethodGet, "/api/v1/applications/mine", other, nil)
	require.Equal(t, http.StatusOK, code)
	mine := decode[struct {
		Applications []struct {
			Status string `json:"status"`
		} `json:"applications"`
	}](t, env.Data)
	require.Len(t, mine.Applications, 1)
	assert.Equal(t, "rejected", mine.Applications[0].Status)

	code, _ = a.do(http.MethodPost, "/api/v1/tickets/"+ticketID+"/complete", helper, nil)
	require.Equal(t, http.StatusOK, code)

	code, env = a.do(http.MethodPost, "/api/v1/jobs/"+jobID+"/ratings", creator,
		map[string]any{"rated_id": helper, "score": 5, "comment": "Super"})
	require.Equal(t, http.StatusOK, code, env.Message)

	code, _ = a.do(http.MethodPost, "/api/v1/jobs/"+jobID+"/ratings", creator,
		map[string]any{"rated_id": helper, "score": 4})
	assert.Equal(t, http.StatusConflict, code)

	code, env = a.do(http.MethodGet, "/api/v1/jobs/"+jobID, "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "completed", decode[jobData](t, env.Data).Job.Status)
}

func TestPartialAcceptanceOverHTTP(t *testing.T) {
	a := newAPI(t)
	jobID := a.createJob(paidJob())
	applicationID := a.apply(jobID, helper)

	a.store.InjectFault("tickets.create", errors.New("throttled"))
	code, env := a.do(http.MethodPost, "/api/v1/jobs/"+jobID+"/applications/"+applicationID+"/accept", creator,
		map[string]any{"applicant_id": helper})

	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "PARTIAL_SUCCESS", env.Status)
	require.Len(t, env.Errors, 1)

	partial := decode[struct {
		FailedStep string `json:"failed_step"`
		ResumePath string `json:"resume_path"`
	}](t, env.Errors[0].Data)
	assert.Equal(t, "open_ticket", partial.FailedStep)
	assert.Equal(t, "/api/v1/jobs/"+jobID+"/acceptance/resume", partial.ResumePath)

	a.store.ClearFault("tickets.create")
	code, env = a.do(http.MethodPost, partial.ResumePath, creator, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.NotEmpty(t, decode[acceptanceData](t, env.Data).Ticket.TicketID)

	code, env = a.do(http.MethodGet, "/api/v1/jobs/"+jobID, "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, decode[jobData](t, env.Data).Job.PendingAcceptanceID)
}

func TestStoreFailureIsServerError(t *testing.T) {
	a := newAPI(t)
	a.store.InjectFault("jobs.create", errors.New("connection reset"))

	code, env := a.do(http.MethodPost, "/api/v1/jobs", creator, paidJob())
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.NotContains(t, env.Message, "connection reset")
}

func TestListingsDegradeToEmpty(t *testing.T) {
	a := newAPI(t)
	a.createJob(paidJob())
	a.store.InjectFault("jobs.list", errors.New("timeout"))

	code, env := a.do(http.MethodGet, "/api/v1/jobs", "", nil)
	require.Equal(t, http.StatusOK, code)
	listing := decode[struct {
		Jobs []json.RawMessage `json:"jobs"`
	}](t, env.Data)
	assert.NotNil(t, listing.Jobs)
	assert.Empty(t, listing.Jobs)
}

func TestAdminSettlement(t *testing.T) {
	a := newAPI(t)
	jobID := a.createJob(paidJob())
	applicationID := a.apply(jobID, helper)

	_, env := a.do(http.MethodPost, "/api/v1/jobs/"+jobID+"/applications/"+applicationID+"/accept", creator,
		map[string]any{"applicant_id": helper})
	ticketID := decode[acceptanceData](t, env.Data).Ticket.TicketID
	code, _ := a.do(http.MethodPost, "/api/v1/tickets/"+ticketID+"/complete", creator, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = a.do(http.MethodPost, "/api/v1/admin/tickets/"+ticketID+"/release-payment", creator, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = a.do(http.MethodPost, "/api/v1/admin/tickets/"+ticketID+"/release-payment", admin, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	result := decode[struct {
		Changed bool `json:"changed"`
	}](t, env.Data)
	assert.True(t, result.Changed)

	code, env = a.do(http.MethodPost, "/api/v1/admin/tickets/"+ticketID+"/release-payment", admin, nil)
	require.Equal(t, http.StatusOK, code)
	assert.False(t, decode[struct {
		Changed bool `json:"changed"`
	}](t, env.Data).Changed)

	code, env = a.do(http.MethodGet, "/api/v1/profiles/"+helper, "", nil)
	require.Equal(t, http.StatusOK, code)
	profile := decode[struct {
		Profile struct {
			TotalEarned float64 `json:"total_earned"`
		} `json:"profile"`
	}](t, env.Data)
	assert.Equal(t, 40.0, profile.Profile.TotalEarned)
}
