package repository_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taha-association/links-backend/internal/links/domain"
	"github.com/taha-association/links-backend/internal/links/repository"
)

func setupTestRepo(t *testing.T) (*repository.LocalRepository, *redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	ctx := context.Background()
	err = client.Ping(ctx).Err()
	require.NoError(t, err)

	return repository.NewLocalRepository(client), client, mr
}

func TestLocalRepository_GetAll(t *testing.T) {
	repo, _, _ := setupTestRepo(t)
	ctx := context.Background()

	t.Run("seeds default list on empty store", func(t *testing.T) {
		projects := repo.GetAll(ctx)
		require.Len(t, projects, 6)

		seen := make(map[string]bool)
		for _, p := range projects {
			assert.NotEmpty(t, p.ID)
			assert.False(t, seen[p.ID], "seeded IDs must be unique")
			seen[p.ID] = true
			assert.True(t, p.IsActive)
			assert.NotEmpty(t, p.DateAdded)
		}
	})

	t.Run("seed is persisted, not regenerated", func(t *testing.T) {
		first := repo.GetAll(ctx)
		second := repo.GetAll(ctx)
		require.Equal(t, len(first), len(second))
		assert.Equal(t, first[0].ID, second[0].ID)
	})
}

func TestLocalRepository_Add(t *testing.T) {
	repo, _, _ := setupTestRepo(t)
	ctx := context.Background()

	t.Run("creates record with fresh unique id", func(t *testing.T) {
		before := repo.GetAll(ctx)

		p, err := repo.Add(ctx, domain.NewProject{
			Name:        "X",
			Description: "Y",
			URL:         "https://x.test",
			Category:    "Forms",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, p.ID)
		assert.NotEmpty(t, p.DateAdded)
		assert.True(t, p.IsActive)
		assert.Equal(t, "Forms", p.Category)

		after := repo.GetAll(ctx)
		require.Len(t, after, len(before)+1)

		for _, existing := range before {
			assert.NotEqual(t, existing.ID, p.ID)
		}
		assert.Contains(t, repo.Categories(ctx), "Forms")
	})

	t.Run("defaults category when omitted", func(t *testing.T) {
		p, err := repo.Add(ctx, domain.NewProject{
			Name:        "No Category",
			Description: "desc",
			URL:         "https://nocat.test",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultCategory, p.Category)
	})
}

func TestLocalRepository_Update(t *testing.T) {
	repo, _, _ := setupTestRepo(t)
	ctx := context.Background()

	p, err := repo.Add(ctx, domain.NewProject{
		Name:        "Original",
		Description: "desc",
		URL:         "https://orig.test",
	})
	require.NoError(t, err)

	t.Run("merges patch and keeps id", func(t *testing.T) {
		name := "Renamed"
		updated, err := repo.Update(ctx, p.ID, domain.ProjectPatch{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, p.ID, updated.ID)
		assert.Equal(t, "Renamed", updated.Name)
		assert.Equal(t, "desc", updated.Description)
		assert.Equal(t, p.DateAdded, updated.DateAdded)
	})

	t.Run("returns not found for absent id", func(t *testing.T) {
		name := "x"
		_, err := repo.Update(ctx, "missing", domain.ProjectPatch{Name: &name})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestLocalRepository_Delete(t *testing.T) {
	repo, _, _ := setupTestRepo(t)
	ctx := context.Background()

	p, err := repo.Add(ctx, domain.NewProject{
		Name:        "Doomed",
		Description: "desc",
		URL:         "https://doomed.test",
	})
	require.NoError(t, err)

	t.Run("removes the record", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, p.ID))
		for _, remaining := range repo.GetAll(ctx) {
			assert.NotEqual(t, p.ID, remaining.ID)
		}
	})

	t.Run("absent id leaves snapshot unchanged", func(t *testing.T) {
		before := repo.GetAll(ctx)
		err := repo.Delete(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Len(t, repo.GetAll(ctx), len(before))
	})
}

func TestLocalRepository_Search(t *testing.T) {
	repo, _, _ := setupTestRepo(t)
	ctx := context.Background()

	_, err := repo.Add(ctx, domain.NewProject{
		Name:        "Invoice Portal",
		Description: "Billing for contractors",
		URL:         "https://invoices.test",
		Category:    "Finance",
	})
	require.NoError(t, err)

	t.Run("matches name case-insensitively", func(t *testing.T) {
		results := repo.Search(ctx, "iNvOiCe")
		require.NotEmpty(t, results)
		assert.Equal(t, "Invoice Portal", results[0].Name)
	})

	t.Run("matches description and category", func(t *testing.T) {
		assert.NotEmpty(t, repo.Search(ctx, "contractors"))
		assert.NotEmpty(t, repo.Search(ctx, "finance"))
	})

	t.Run("no match returns empty", func(t *testing.T) {
		assert.Empty(t, repo.Search(ctx, "zzz-no-such-term"))
	})
}

func TestLocalRepository_ByCategory(t *testing.T) {
	repo, _, _ := setupTestRepo(t)
	ctx := context.Background()

	repo.GetAll(ctx) // seed

	results := repo.ByCategory(ctx, "management")
	require.NotEmpty(t, results)
	for _, p := range results {
		assert.Equal(t, "Management", p.Category)
	}
}

func TestLocalRepository_Categories(t *testing.T) {
	repo, _, _ := setupTestRepo(t)
	ctx := context.Background()

	projects := repo.GetAll(ctx)
	categories := repo.Categories(ctx)

	t.Run("sorted with no duplicates", func(t *testing.T) {
		seen := make(map[string]bool)
		for i, c := range categories {
			assert.False(t, seen[c], "duplicate category %q", c)
			seen[c] = true
			if i > 0 {
				assert.LessOrEqual(t, categories[i-1], c)
			}
		}
	})

	t.Run("covers every record", func(t *testing.T) {
		for _, p := range projects {
			assert.Contains(t, categories, p.Category)
		}
	})
}

func TestLocalRepository_Stats(t *testing.T) {
	repo, _, _ := setupTestRepo(t)
	ctx := context.Background()

	projects := repo.GetAll(ctx)
	stats := repo.Stats(ctx)

	assert.Equal(t, len(projects), stats.TotalProjects)
	assert.Equal(t, len(projects), stats.ActiveProjects)
	assert.Equal(t, len(stats.Categories), stats.TotalCategories)
	assert.NotEmpty(t, stats.LastUpdated)

	t.Run("inactive records not counted active", func(t *testing.T) {
		inactive := false
		_, err := repo.Update(ctx, projects[0].ID, domain.ProjectPatch{IsActive: &inactive})
		require.NoError(t, err)

		stats := repo.Stats(ctx)
		assert.Equal(t, len(projects)-1, stats.ActiveProjects)
	})
}

func TestLocalRepository_ExportImport(t *testing.T) {
	repo, _, _ := setupTestRepo(t)
	ctx := context.Background()

	_, err := repo.Add(ctx, domain.NewProject{
		Name:        "Extra",
		Description: "desc",
		URL:         "https://extra.test",
		Category:    "Forms",
	})
	require.NoError(t, err)

	t.Run("round trip reproduces the record set", func(t *testing.T) {
		export := repo.Export(ctx)
		assert.Equal(t, len(export.Projects), export.Metadata.TotalProjects)
		assert.Equal(t, "local", export.Metadata.Source)

		data, err := json.Marshal(export)
		require.NoError(t, err)

		count, err := repo.Import(ctx, data)
		require.NoError(t, err)
		assert.Equal(t, len(export.Projects), count)

		after := repo.GetAll(ctx)
		require.Len(t, after, len(export.Projects))

		ids := make(map[string]bool)
		for _, p := range export.Projects {
			ids[p.ID] = true
		}
		for _, p := range after {
			assert.True(t, ids[p.ID], "imported set must equal exported set")
		}
	})

	t.Run("missing projects array is a format error", func(t *testing.T) {
		_, err := repo.Import(ctx, []byte(`{"metadata":{}}`))
		assert.ErrorIs(t, err, domain.ErrInvalidFormat)
	})

	t.Run("non-array projects is a format error", func(t *testing.T) {
		_, err := repo.Import(ctx, []byte(`{"projects":"nope"}`))
		assert.ErrorIs(t, err, domain.ErrInvalidFormat)
	})

	t.Run("records without isActive import as active", func(t *testing.T) {
		payload := `{"projects":[{"id":"p1","name":"Old","description":"d","url":"https://old.test"}]}`
		count, err := repo.Import(ctx, []byte(payload))
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		projects := repo.GetAll(ctx)
		require.Len(t, projects, 1)
		assert.True(t, projects[0].IsActive)
		assert.Equal(t, domain.DefaultCategory, projects[0].Category)
	})
}

func TestLocalRepository_Snapshot(t *testing.T) {
	repo, client, _ := setupTestRepo(t)
	ctx := context.Background()

	t.Run("absent slot surfaces the miss", func(t *testing.T) {
		_, err := repo.Snapshot(ctx)
		assert.ErrorIs(t, err, domain.ErrNoSnapshot)
	})

	t.Run("corrupt slot surfaces an error", func(t *testing.T) {
		require.NoError(t, client.Set(ctx, "links:projects", "not-json", 0).Err())
		_, err := repo.Snapshot(ctx)
		assert.Error(t, err)
	})
}
