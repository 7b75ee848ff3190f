package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plannerhub/planner-sync/internal/clientstore"
	"github.com/plannerhub/planner-sync/internal/logger"
	"github.com/plannerhub/planner-sync/models"
)

// fakeServer is a minimal scripted replication server for sync tests.
type fakeServer struct {
	mu sync.Mutex

	// pages are served one per pull call, then empty batches
	pages [][]models.WireDocument
	// conflicts returned on the next push call
	conflicts []models.WireDocument

	pushed [][]models.PushRow
	pulls  int
}

func (f *fakeServer) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/folders/pull", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		var docs []models.WireDocument
		if f.pulls < len(f.pages) {
			docs = f.pages[f.pulls]
		}
		f.pulls++

		resp := models.PullResponse{Documents: docs}
		if resp.Documents == nil {
			resp.Documents = []models.WireDocument{}
		}
		if n := len(resp.Documents); n > 0 {
			last := resp.Documents[n-1]
			resp.Checkpoint = map[string]string{
				"id":              last["id"].(string),
				"serverTimestamp": fmt.Sprintf("2026-08-28T10:00:%02dZ", f.pulls),
			}
		}

		json.NewEncoder(w).Encode(resp)
	})

	mux.HandleFunc("POST /api/folders/push", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		var rows []models.PushRow
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rows))
		f.pushed = append(f.pushed, rows)

		conflicts := f.conflicts
		f.conflicts = nil
		if conflicts == nil {
			conflicts = []models.WireDocument{}
		}

		json.NewEncoder(w).Encode(conflicts)
	})

	return mux
}

func newTestSyncer(t *testing.T, srvURL string, batchSize int) (*Syncer, *clientstore.Store) {
	t.Helper()

	store, err := clientstore.Open(context.Background(), ":memory:", logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cli := New(Config{BaseURL: srvURL, Token: "test-token"})
	syncer := NewSyncer(cli, store, []Collection{{Name: "folders", KeyField: "id"}}, batchSize, logger.Nop())

	return syncer, store
}

func folder(id, title string) models.WireDocument {
	return models.WireDocument{
		"id":                id,
		"title":             title,
		models.DeletedField: false,
	}
}

func TestSyncer_PullPagesUntilDrained(t *testing.T) {
	fake := &fakeServer{
		pages: [][]models.WireDocument{
			{folder("f1", "one"), folder("f2", "two")},
			{folder("f3", "three")},
		},
	}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	syncer, store := newTestSyncer(t, srv.URL, 2)

	require.NoError(t, syncer.FullSync(context.Background()))

	// a full page forces a second pull; the short page stops the loop
	assert.Equal(t, 2, fake.pulls)

	docs, err := store.List(context.Background(), "folders")
	require.NoError(t, err)
	assert.Len(t, docs, 3)

	// the checkpoint of the last page is persisted
	key, ts, err := store.Checkpoint(context.Background(), "folders")
	require.NoError(t, err)
	assert.Equal(t, "f3", key)
	assert.NotEmpty(t, ts)
}

func TestSyncer_PushesDirtyRowsBeforePulling(t *testing.T) {
	fake := &fakeServer{}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	syncer, store := newTestSyncer(t, srv.URL, 10)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "folders", "id", folder("f1", "local edit")))

	require.NoError(t, syncer.FullSync(ctx))

	require.Len(t, fake.pushed, 1)
	require.Len(t, fake.pushed[0], 1)
	assert.Equal(t, "local edit", fake.pushed[0][0].NewDocumentState["title"])

	// the pushed row is clean afterwards
	rows, err := store.DirtyRows(ctx, "folders")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSyncer_NothingDirtySkipsPush(t *testing.T) {
	fake := &fakeServer{}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	syncer, _ := newTestSyncer(t, srv.URL, 10)

	require.NoError(t, syncer.FullSync(context.Background()))
	assert.Empty(t, fake.pushed)
}

func TestSyncer_ConflictAcceptsServerState(t *testing.T) {
	fake := &fakeServer{
		conflicts: []models.WireDocument{folder("f1", "server wins")},
	}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	syncer, store := newTestSyncer(t, srv.URL, 10)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "folders", "id", folder("f1", "doomed local edit")))

	require.NoError(t, syncer.FullSync(ctx))

	got, err := store.Get(ctx, "folders", "f1")
	require.NoError(t, err)
	assert.Equal(t, "server wins", got["title"])

	// the conflicting key is no longer dirty
	rows, err := store.DirtyRows(ctx, "folders")
	require.NoError(t, err)
	assert.Empty(t, rows)
}
