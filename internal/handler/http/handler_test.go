package http_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/plannerhub/planner-sync/internal/config"
	handlerhttp "github.com/plannerhub/planner-sync/internal/handler/http"
	"github.com/plannerhub/planner-sync/internal/logger"
	"github.com/plannerhub/planner-sync/internal/mock"
	"github.com/plannerhub/planner-sync/internal/replication"
	"github.com/plannerhub/planner-sync/internal/store"
	"github.com/plannerhub/planner-sync/internal/utils"
	"github.com/plannerhub/planner-sync/models"
)

const (
	testSignKey = "test-sign-key"
	testIssuer  = "planner-auth"
	testOwner   = "owner-123"
)

var foldersConfig = replication.BindingConfig{
	Collection: "folders",
	KeyField:   "id",
}

// newTestRouter builds the full route tree over a mocked replicator.
func newTestRouter(t *testing.T, ctrl *gomock.Controller) (http.Handler, *mock.MockReplicator) {
	t.Helper()

	replicator := mock.NewMockReplicator(ctrl)
	appCfg := config.App{
		TokenSignKey: testSignKey,
		TokenIssuer:  testIssuer,
		Version:      "1.2.3",
	}

	h := handlerhttp.NewHandler(replicator, appCfg, logger.Nop())
	return h.Init(), replicator
}

// bearerToken issues a token the way the auth collaborator would.
func bearerToken(t *testing.T) string {
	t.Helper()

	token, err := utils.GenerateJWTToken(testIssuer, testOwner, time.Hour, testSignKey)
	require.NoError(t, err)
	return "Bearer " + token.SignedString
}

func TestHandler_Version_NoAuthRequired(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router, _ := newTestRouter(t, ctrl)

	req := httptest.NewRequest(http.MethodGet, "/api/version/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var info models.AppBuildInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "1.2.3", info.Version)
}

func TestHandler_Auth(t *testing.T) {
	tests := []struct {
		name       string
		authHeader string
	}{
		{name: "missing Authorization header", authHeader: ""},
		{name: "malformed header", authHeader: "Bearer"},
		{name: "garbage token", authHeader: "Bearer not.a.jwt"},
		{
			name: "token signed with a different key",
			authHeader: func() string {
				token, _ := utils.GenerateJWTToken(testIssuer, testOwner, time.Hour, "wrong-key")
				return "Bearer " + token.SignedString
			}(),
		},
		{
			name: "token from a different issuer",
			authHeader: func() string {
				token, _ := utils.GenerateJWTToken("someone-else", testOwner, time.Hour, testSignKey)
				return "Bearer " + token.SignedString
			}(),
		},
		{
			name: "expired token",
			authHeader: func() string {
				token, _ := utils.GenerateJWTToken(testIssuer, testOwner, -time.Minute, testSignKey)
				return "Bearer " + token.SignedString
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			// the replicator must never be reached without an owner
			router, _ := newTestRouter(t, ctrl)

			req := httptest.NewRequest(http.MethodGet, "/api/folders/pull", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestHandler_Pull_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router, replicator := newTestRouter(t, ctrl)

	ts := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	after := &models.Checkpoint{Key: "f1", ServerTimestamp: ts}

	replicator.EXPECT().Config("folders").Return(foldersConfig, nil)
	replicator.EXPECT().
		Pull(gomock.Any(), "folders", testOwner, after, 25).
		Return(models.PullResult{
			Documents: []models.WireDocument{
				{"id": "f2", "title": "second", models.DeletedField: false},
			},
			Checkpoint: &models.Checkpoint{Key: "f2", ServerTimestamp: ts.Add(time.Second)},
		}, nil)

	target := "/api/folders/pull?id=f1&serverTimestamp=" + ts.Format(time.RFC3339Nano) + "&batchSize=25"
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("Authorization", bearerToken(t))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp models.PullResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Len(t, resp.Documents, 1)
	assert.Equal(t, "f2", resp.Documents[0]["id"])
	assert.Equal(t, "f2", resp.Checkpoint["id"])
	assert.Equal(t, "2026-08-28T10:00:01Z", resp.Checkpoint["serverTimestamp"])
}

func TestHandler_Pull_FullResyncWithEmptyCollection(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router, replicator := newTestRouter(t, ctrl)

	replicator.EXPECT().Config("folders").Return(foldersConfig, nil)
	replicator.EXPECT().
		Pull(gomock.Any(), "folders", testOwner, nil, 0).
		Return(models.PullResult{Documents: []models.WireDocument{}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/folders/pull", nil)
	req.Header.Set("Authorization", bearerToken(t))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	// documents serializes as an empty array and checkpoint as JSON null
	body := strings.TrimSpace(rec.Body.String())
	assert.JSONEq(t, `{"documents":[],"checkpoint":null}`, body)
}

func TestHandler_Pull_UnknownCollection(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router, replicator := newTestRouter(t, ctrl)

	replicator.EXPECT().
		Config("notebooks").
		Return(replication.BindingConfig{}, replication.ErrUnknownCollection)

	req := httptest.NewRequest(http.MethodGet, "/api/notebooks/pull", nil)
	req.Header.Set("Authorization", bearerToken(t))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_Pull_BadRequest(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{name: "malformed serverTimestamp", target: "/api/folders/pull?id=f1&serverTimestamp=garbage"},
		{name: "non-numeric batchSize", target: "/api/folders/pull?batchSize=ten"},
		{name: "negative batchSize", target: "/api/folders/pull?batchSize=-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			router, replicator := newTestRouter(t, ctrl)
			replicator.EXPECT().Config("folders").Return(foldersConfig, nil)

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			req.Header.Set("Authorization", bearerToken(t))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandler_Pull_StorageError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router, replicator := newTestRouter(t, ctrl)

	replicator.EXPECT().Config("folders").Return(foldersConfig, nil)
	replicator.EXPECT().
		Pull(gomock.Any(), "folders", testOwner, nil, 0).
		Return(models.PullResult{}, errors.New("connection reset"))

	req := httptest.NewRequest(http.MethodGet, "/api/folders/pull", nil)
	req.Header.Set("Authorization", bearerToken(t))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandler_Push_Committed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router, replicator := newTestRouter(t, ctrl)

	rows := []models.PushRow{{
		NewDocumentState: models.WireDocument{"id": "f1", "title": "x", models.DeletedField: false},
	}}

	replicator.EXPECT().
		Push(gomock.Any(), "folders", testOwner, rows).
		Return([]models.WireDocument{}, nil)

	body, err := json.Marshal(rows)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/folders/push", strings.NewReader(string(body)))
	req.Header.Set("Authorization", bearerToken(t))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHandler_Push_ConflictsAreDataNotErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router, replicator := newTestRouter(t, ctrl)

	conflicts := []models.WireDocument{
		{"id": "f1", "title": "server wins", models.DeletedField: false},
	}

	replicator.EXPECT().
		Push(gomock.Any(), "folders", testOwner, gomock.Any()).
		Return(conflicts, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/folders/push", strings.NewReader(`[{"newDocumentState":{"id":"f1","title":"client"}}]`))
	req.Header.Set("Authorization", bearerToken(t))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// conflicts come back with HTTP 200: a normal protocol outcome
	require.Equal(t, http.StatusOK, rec.Code)

	var got []models.WireDocument
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "server wins", got[0]["title"])
}

func TestHandler_Push_InvalidJSON(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router, _ := newTestRouter(t, ctrl)

	req := httptest.NewRequest(http.MethodPost, "/api/folders/push", strings.NewReader("{not json"))
	req.Header.Set("Authorization", bearerToken(t))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Push_ErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name       string
		pushErr    error
		wantStatus int
	}{
		{
			name:       "validation error maps to 400",
			pushErr:    replication.ErrMissingKey,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid UUID key maps to 400",
			pushErr:    replication.ErrInvalidKey,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed assumed state maps to 400",
			pushErr:    replication.ErrMalformedAssumedState,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown collection maps to 404",
			pushErr:    replication.ErrUnknownCollection,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unstorable field value maps to 400",
			pushErr:    store.ErrUnsupportedFieldValue,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "exhausted write contention maps to 500",
			pushErr:    replication.ErrConcurrentWrite,
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "storage error maps to 500",
			pushErr:    errors.New("deadlock detected"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			router, replicator := newTestRouter(t, ctrl)

			replicator.EXPECT().
				Push(gomock.Any(), "folders", testOwner, gomock.Any()).
				Return(nil, tt.pushErr)

			req := httptest.NewRequest(http.MethodPost, "/api/folders/push", strings.NewReader(`[]`))
			req.Header.Set("Authorization", bearerToken(t))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
