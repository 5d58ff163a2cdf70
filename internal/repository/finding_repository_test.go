package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basel-ax/archaeo/internal/config"
	"github.com/basel-ax/archaeo/internal/domain"
)

func openTestRepo(t *testing.T) *SQLFindingRepository {
	t.Helper()
	cfg := &config.Config{DB: config.DBConfig{
		Driver:       config.DriverSQLite,
		Path:         filepath.Join(t.TempDir(), "findings.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}}
	repo, db, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return repo
}

func TestFindingRepository_SaveGet(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	created := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	f := domain.Finding{
		ID:          "f-1",
		Module:      domain.ModuleTranslation,
		Fingerprint: "p:abc",
		Params:      "target=Turkish",
		PayloadKind: domain.PayloadText,
		Payload:     "**Çeviri**",
		CreatedAt:   created,
	}
	require.NoError(t, repo.Save(ctx, f))

	got, err := repo.Get(ctx, "f-1")
	require.NoError(t, err)
	assert.Equal(t, f.Module, got.Module)
	assert.Equal(t, f.Payload, got.Payload)
	assert.True(t, created.Equal(got.CreatedAt))
	assert.Equal(t, domain.TextPayload("**Çeviri**"), got.Result())

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindingRepository_ListAndPrune(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"old", "mid", "new"} {
		require.NoError(t, repo.Save(ctx, domain.Finding{
			ID:          id,
			Module:      domain.ModuleMosaic,
			Fingerprint: "p:" + id,
			PayloadKind: domain.PayloadImage,
			Payload:     "data:image/png;base64,AA==",
			CreatedAt:   base.Add(time.Duration(i) * 24 * time.Hour),
		}))
	}

	recent, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "new", recent[0].ID)
	assert.Equal(t, "mid", recent[1].ID)

	n, err := repo.DeleteOlderThan(ctx, base.Add(36*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	recent, err = repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "new", recent[0].ID)
}

func TestRebind(t *testing.T) {
	pg := NewSQLFindingRepository(nil, Postgres)
	assert.Equal(t, "WHERE a = $1 AND b = $2", pg.rebind("WHERE a = ? AND b = ?"))

	lite := NewSQLFindingRepository(nil, SQLite)
	assert.Equal(t, "WHERE a = ?", lite.rebind("WHERE a = ?"))
}

func TestOpen_Disabled(t *testing.T) {
	repo, db, err := Open(context.Background(), &config.Config{DB: config.DBConfig{Driver: config.DriverNone}})
	require.NoError(t, err)
	assert.Nil(t, repo)
	assert.Nil(t, db)
}
