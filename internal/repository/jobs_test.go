package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearscan/doc-extractor/constants"
	"github.com/clearscan/doc-extractor/internal/common"
	"github.com/clearscan/doc-extractor/internal/repository"
)

func openTestStore(t *testing.T) repository.JobStore {
	t.Helper()
	cfg := common.DatabaseConfig{
		DSN:          filepath.Join(t.TempDir(), "jobs.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}
	db, err := repository.Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repository.NewJobStore(db, nil)
}

func TestJobLifecycleOK(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	id := uuid.New()
	require.NoError(t, store.Start(ctx, id, "invoice.pdf", "PDF"))
	require.NoError(t, store.FinishOK(ctx, id, "pdf-text", 4200))

	jobs, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	j := jobs[0]
	assert.Equal(t, id, j.ID)
	assert.Equal(t, "invoice.pdf", j.DocName)
	assert.Equal(t, "PDF", j.Format)
	assert.Equal(t, constants.JobStatusOK, j.Status)
	assert.Equal(t, "pdf-text", j.ParsedBy)
	assert.Equal(t, int64(4200), j.TextBytes)
	assert.Empty(t, j.Error)
	require.NotNil(t, j.FinishedAt)
	assert.False(t, j.StartedAt.IsZero())
}

func TestJobLifecycleFailure(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	id := uuid.New()
	require.NoError(t, store.Start(ctx, id, "scan.pdf", "PDF"))
	require.NoError(t, store.FinishFailure(ctx, id, "Exception caught while processing the document: document is encrypted"))

	jobs, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	j := jobs[0]
	assert.Equal(t, constants.JobStatusFailed, j.Status)
	assert.Contains(t, j.Error, "document is encrypted")
	assert.Empty(t, j.ParsedBy)
}

func TestRecentOrderingAndLimit(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	var last uuid.UUID
	for i := 0; i < 5; i++ {
		last = uuid.New()
		require.NoError(t, store.Start(ctx, last, "doc", "TEXT"))
		time.Sleep(2 * time.Millisecond) // distinct started_at ordering
	}

	jobs, err := store.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	assert.Equal(t, last, jobs[0].ID, "newest job comes first")
}

func TestRecentDefaultLimit(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.Start(ctx, uuid.New(), "doc", "TEXT"))
	jobs, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}
