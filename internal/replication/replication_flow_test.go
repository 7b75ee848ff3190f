package replication_test

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plannerhub/planner-sync/internal/logger"
	"github.com/plannerhub/planner-sync/internal/replication"
	"github.com/plannerhub/planner-sync/models"
)

// memoryBinding is an in-memory CollectionBinding honouring the full storage
// contract: composite (serverTimestamp, key) ordering for Changes, guarded
// applies that refuse stale writes, and one fresh shared timestamp per
// committed batch. It backs the multi-call flow tests where a gomock script
// would just restate the handler under test.
type memoryBinding struct {
	cfg  replication.BindingConfig
	docs map[string]models.StoredDocument
	tick time.Time
}

func newMemoryFolders() *memoryBinding {
	return &memoryBinding{
		cfg:  replication.BindingConfig{Collection: "folders", KeyField: "id"},
		docs: map[string]models.StoredDocument{},
		tick: time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC),
	}
}

// seed stores a document directly, bypassing the push pipeline.
func (m *memoryBinding) seed(key, title string, ts time.Time) {
	m.docs[key] = models.StoredDocument{
		Key:             key,
		ServerTimestamp: ts,
		Doc: models.WireDocument{
			"id":                key,
			"title":             title,
			models.DeletedField: false,
		},
	}
}

func (m *memoryBinding) Config() replication.BindingConfig { return m.cfg }

func (m *memoryBinding) Load(_ context.Context, _ string, keys []string) (map[string]models.StoredDocument, error) {
	out := make(map[string]models.StoredDocument, len(keys))
	for _, k := range keys {
		if d, ok := m.docs[k]; ok {
			out[k] = d
		}
	}
	return out, nil
}

func (m *memoryBinding) Changes(_ context.Context, _ string, after *models.Checkpoint, limit int) ([]models.StoredDocument, error) {
	all := make([]models.StoredDocument, 0, len(m.docs))
	for _, d := range m.docs {
		all = append(all, d)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].ServerTimestamp.Equal(all[j].ServerTimestamp) {
			return all[i].ServerTimestamp.Before(all[j].ServerTimestamp)
		}
		return all[i].Key < all[j].Key
	})

	out := make([]models.StoredDocument, 0, limit)
	for _, d := range all {
		if after != nil {
			if d.ServerTimestamp.Before(after.ServerTimestamp) {
				continue
			}
			if d.ServerTimestamp.Equal(after.ServerTimestamp) && d.Key <= after.Key {
				continue
			}
		}
		out = append(out, d)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memoryBinding) Apply(_ context.Context, _ string, writes []models.DocumentWrite) error {
	// every guard is checked before anything changes, all-or-nothing
	for _, w := range writes {
		cur, ok := m.docs[w.Key]
		if w.ExpectedTimestamp == nil {
			if ok {
				return replication.ErrConcurrentWrite
			}
			continue
		}
		if !ok || !cur.ServerTimestamp.Equal(*w.ExpectedTimestamp) {
			return replication.ErrConcurrentWrite
		}
	}

	m.tick = m.tick.Add(time.Second)
	for _, w := range writes {
		m.docs[w.Key] = models.StoredDocument{
			Key:             w.Key,
			ServerTimestamp: m.tick,
			Deleted:         w.Deleted,
			Doc:             w.Doc.Clone(),
		}
	}
	return nil
}

// Pulling twice with the same checkpoint and no intervening writes must
// return identical documents and land on the same checkpoint.
func TestService_Pull_IdempotentForSameCheckpoint(t *testing.T) {
	binding := newMemoryFolders()
	base := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	for i, key := range []string{"f1", "f2", "f3", "f4", "f5"} {
		binding.seed(key, "folder "+key, base.Add(time.Duration(i)*time.Second))
	}

	svc := replication.NewService(logger.Nop(), binding)
	ctx := context.Background()

	first, err := svc.Pull(ctx, "folders", "alice", nil, 3)
	require.NoError(t, err)
	require.Len(t, first.Documents, 3)

	again, err := svc.Pull(ctx, "folders", "alice", nil, 3)
	require.NoError(t, err)

	assert.Equal(t, first.Documents, again.Documents)
	require.NotNil(t, again.Checkpoint)
	assert.Equal(t, *first.Checkpoint, *again.Checkpoint)

	// and the same holds mid-walk, from a non-nil checkpoint
	second, err := svc.Pull(ctx, "folders", "alice", first.Checkpoint, 3)
	require.NoError(t, err)
	secondAgain, err := svc.Pull(ctx, "folders", "alice", first.Checkpoint, 3)
	require.NoError(t, err)

	assert.Equal(t, second.Documents, secondAgain.Documents)
	assert.Equal(t, *second.Checkpoint, *secondAgain.Checkpoint)
}

// Walking the collection checkpoint by checkpoint must deliver every
// document exactly once, even when several documents share a server
// timestamp and the batch boundary falls inside the shared group.
func TestService_Pull_ForwardProgressAcrossSharedTimestamps(t *testing.T) {
	binding := newMemoryFolders()
	base := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

	// f2, f3 and f4 share one timestamp; a batch size of 2 splits the group
	binding.seed("f1", "a", base)
	binding.seed("f2", "b", base.Add(time.Second))
	binding.seed("f3", "c", base.Add(time.Second))
	binding.seed("f4", "d", base.Add(time.Second))
	binding.seed("f5", "e", base.Add(2*time.Second))
	binding.seed("f6", "f", base.Add(3*time.Second))
	binding.seed("f7", "g", base.Add(4*time.Second))

	svc := replication.NewService(logger.Nop(), binding)
	ctx := context.Background()

	const batchSize = 2
	var seen []string
	var checkpoint *models.Checkpoint

	for {
		result, err := svc.Pull(ctx, "folders", "alice", checkpoint, batchSize)
		require.NoError(t, err)

		for _, doc := range result.Documents {
			id, ok := doc.Key("id")
			require.True(t, ok)
			seen = append(seen, id)
		}

		if len(result.Documents) < batchSize {
			break
		}
		checkpoint = result.Checkpoint
	}

	assert.Equal(t, []string{"f1", "f2", "f3", "f4", "f5", "f6", "f7"}, seen)
}

// The end-to-end create / pull / stale-edit sequence: a fresh create
// commits, a pull delivers it with a checkpoint, and a second push against a
// wrong claimed state is rejected with the stored document while storage
// keeps the first write.
func TestService_PushPullRoundTrip(t *testing.T) {
	binding := newMemoryFolders()
	svc := replication.NewService(logger.Nop(), binding)
	ctx := context.Background()

	conflicts, err := svc.Push(ctx, "folders", "u1", []models.PushRow{
		{NewDocumentState: models.WireDocument{
			"id":                "f1",
			"title":             "A",
			models.DeletedField: false,
		}},
	})
	require.NoError(t, err)
	require.Len(t, conflicts, 0)

	pulled, err := svc.Pull(ctx, "folders", "u1", nil, 10)
	require.NoError(t, err)
	require.Len(t, pulled.Documents, 1)
	assert.Equal(t, "A", pulled.Documents[0]["title"])
	require.NotNil(t, pulled.Checkpoint)
	assert.Equal(t, "f1", pulled.Checkpoint.Key)
	assert.False(t, pulled.Checkpoint.ServerTimestamp.IsZero())

	conflicts, err = svc.Push(ctx, "folders", "u1", []models.PushRow{
		{
			NewDocumentState: models.WireDocument{
				"id":                "f1",
				"title":             "B",
				models.DeletedField: false,
			},
			AssumedMasterState: models.WireDocument{
				"id":                "f1",
				"title":             "WRONG",
				models.DeletedField: false,
			},
		},
	})
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "A", conflicts[0]["title"])

	// storage is untouched: the same pull yields the same document and
	// checkpoint as before the rejected push
	after, err := svc.Pull(ctx, "folders", "u1", nil, 10)
	require.NoError(t, err)
	require.Len(t, after.Documents, 1)
	assert.Equal(t, "A", after.Documents[0]["title"])
	assert.Equal(t, *pulled.Checkpoint, *after.Checkpoint)
}
