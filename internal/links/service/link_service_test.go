package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taha-association/links-backend/internal/links/domain"
	"github.com/taha-association/links-backend/internal/links/repository"
	"github.com/taha-association/links-backend/internal/links/service"
)

// fakeRemote implements service.RemoteStore in memory, with switchable
// transport failures.
type fakeRemote struct {
	projects  []domain.Project
	nextID    int
	down      bool
	failNames map[string]bool
}

func (f *fakeRemote) transportErr(op string) error {
	return &domain.TransportError{Op: op, Err: errors.New("connection refused")}
}

func (f *fakeRemote) GetAll(ctx context.Context) ([]domain.Project, error) {
	if f.down {
		return nil, f.transportErr("getAll")
	}
	out := make([]domain.Project, len(f.projects))
	copy(out, f.projects)
	domain.SortByDateAdded(out)
	return out, nil
}

func (f *fakeRemote) Add(ctx context.Context, np domain.NewProject) (*domain.Project, error) {
	if f.down || f.failNames[np.Name] {
		return nil, f.transportErr("add")
	}
	f.nextID++
	p := domain.Project{
		ID:          fmt.Sprintf("remote-%d", f.nextID),
		Name:        np.Name,
		Description: np.Description,
		URL:         np.URL,
		Category:    np.CategoryOrDefault(),
		DateAdded:   time.Now().UTC().Format(time.RFC3339),
		IsActive:    true,
	}
	f.projects = append(f.projects, p)
	return &p, nil
}

func (f *fakeRemote) Update(ctx context.Context, id string, patch domain.ProjectPatch) (*domain.Project, error) {
	if f.down {
		return nil, f.transportErr("update")
	}
	for i := range f.projects {
		if f.projects[i].ID == id {
			patch.Apply(&f.projects[i])
			p := f.projects[i]
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRemote) Delete(ctx context.Context, id string) error {
	if f.down {
		return f.transportErr("delete")
	}
	for i := range f.projects {
		if f.projects[i].ID == id {
			f.projects = append(f.projects[:i], f.projects[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeRemote) Subscribe(ctx context.Context) *domain.Subscription {
	ch := make(chan []domain.Project, 1)
	ch <- f.projects
	return domain.NewSubscription(ch, func() { close(ch) })
}

func setupService(t *testing.T, remote service.RemoteStore) (*service.LinkService, *repository.LocalRepository) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	local := repository.NewLocalRepository(client)
	return service.NewLinkService(remote, local), local
}

func TestLinkService_GetAll(t *testing.T) {
	t.Run("serves remote when healthy", func(t *testing.T) {
		remote := &fakeRemote{}
		svc, _ := setupService(t, remote)
		ctx := context.Background()

		_, err := remote.Add(ctx, domain.NewProject{Name: "R", Description: "d", URL: "https://r.test"})
		require.NoError(t, err)

		list, err := svc.GetAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.SourceRemote, list.Source)
		require.Len(t, list.Projects, 1)
		assert.Equal(t, "R", list.Projects[0].Name)
	})

	t.Run("falls back to local snapshot on transport error", func(t *testing.T) {
		remote := &fakeRemote{down: true}
		svc, local := setupService(t, remote)
		ctx := context.Background()

		expected := local.GetAll(ctx)

		list, err := svc.GetAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.SourceLocal, list.Source, "fallback result must be tagged degraded")
		assert.Len(t, list.Projects, len(expected))

		m := svc.Metrics()
		assert.Equal(t, int64(1), m.Fallbacks)
		assert.Equal(t, int64(1), m.RemoteErrors)
	})

	t.Run("local-only mode serves local", func(t *testing.T) {
		svc, _ := setupService(t, nil)

		list, err := svc.GetAll(context.Background())
		require.NoError(t, err)
		assert.Equal(t, domain.SourceLocal, list.Source)
	})
}

func TestLinkService_Add(t *testing.T) {
	t.Run("remote add tags remote", func(t *testing.T) {
		svc, _ := setupService(t, &fakeRemote{})

		p, source, err := svc.Add(context.Background(), domain.NewProject{
			Name: "X", Description: "Y", URL: "https://x.test", Category: "Forms",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.SourceRemote, source)
		assert.Equal(t, "Forms", p.Category)
	})

	t.Run("degraded add writes locally and tags local", func(t *testing.T) {
		remote := &fakeRemote{down: true}
		svc, local := setupService(t, remote)
		ctx := context.Background()

		before := len(local.GetAll(ctx))

		p, source, err := svc.Add(ctx, domain.NewProject{
			Name: "Degraded", Description: "d", URL: "https://deg.test",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.SourceLocal, source)
		assert.NotEmpty(t, p.ID)
		assert.Len(t, local.GetAll(ctx), before+1)
	})
}

func TestLinkService_Delete(t *testing.T) {
	t.Run("not found propagates without fallback", func(t *testing.T) {
		remote := &fakeRemote{}
		svc, _ := setupService(t, remote)

		_, err := svc.Delete(context.Background(), "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		m := svc.Metrics()
		assert.Equal(t, int64(0), m.Fallbacks)
		assert.Equal(t, int64(0), m.RemoteErrors, "a missing id is an answer, not store trouble")
		assert.Equal(t, int64(1), m.RemoteCalls)
	})

	t.Run("transport error falls back to local delete", func(t *testing.T) {
		remote := &fakeRemote{}
		svc, local := setupService(t, remote)
		ctx := context.Background()

		p, err := local.Add(ctx, domain.NewProject{Name: "L", Description: "d", URL: "https://l.test"})
		require.NoError(t, err)

		remote.down = true
		source, err := svc.Delete(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.SourceLocal, source)
	})
}

func TestLinkService_DerivedViews(t *testing.T) {
	remote := &fakeRemote{}
	svc, _ := setupService(t, remote)
	ctx := context.Background()

	for _, np := range []domain.NewProject{
		{Name: "Alpha", Description: "first", URL: "https://a.test", Category: "Forms"},
		{Name: "Beta", Description: "second", URL: "https://b.test", Category: "Education"},
	} {
		_, err := remote.Add(ctx, np)
		require.NoError(t, err)
	}

	t.Run("search filters the remote listing", func(t *testing.T) {
		list, err := svc.Search(ctx, "alpha")
		require.NoError(t, err)
		assert.Equal(t, domain.SourceRemote, list.Source)
		require.Len(t, list.Projects, 1)
		assert.Equal(t, "Alpha", list.Projects[0].Name)
	})

	t.Run("categories sorted", func(t *testing.T) {
		categories, source, err := svc.Categories(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.SourceRemote, source)
		assert.Equal(t, []string{"Education", "Forms"}, categories)
	})

	t.Run("stats reflect the listing", func(t *testing.T) {
		stats, _, err := svc.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.TotalProjects)
		assert.Equal(t, 2, stats.ActiveProjects)
	})

	t.Run("export tags its source", func(t *testing.T) {
		export, err := svc.Export(ctx)
		require.NoError(t, err)
		assert.Equal(t, "remote", export.Metadata.Source)
		assert.Equal(t, 2, export.Metadata.TotalProjects)
	})
}

func TestLinkService_Migrate(t *testing.T) {
	t.Run("aggregates failures without aborting", func(t *testing.T) {
		remote := &fakeRemote{failNames: map[string]bool{"Bad": true}}
		svc, local := setupService(t, remote)
		ctx := context.Background()

		payload := `{"projects":[
			{"id":"l1","name":"Good One","description":"d","url":"https://g1.test","category":"Forms"},
			{"id":"l2","name":"Bad","description":"d","url":"https://bad.test"},
			{"id":"l3","name":"Good Two","description":"d","url":"https://g2.test"}
		]}`
		_, err := local.Import(ctx, []byte(payload))
		require.NoError(t, err)

		result, err := svc.Migrate(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Successful)
		assert.Equal(t, 1, result.Failed)

		projects, err := remote.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, projects, 2)
		for _, p := range projects {
			assert.NotEqual(t, "l1", p.ID, "remote assigns fresh identities")
			assert.NotEqual(t, "l3", p.ID)
		}
	})

	t.Run("never-written local slot migrates as empty", func(t *testing.T) {
		remote := &fakeRemote{}
		svc, _ := setupService(t, remote)

		result, err := svc.Migrate(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, result.Successful)
		assert.Equal(t, 0, result.Failed)

		projects, err := remote.GetAll(context.Background())
		require.NoError(t, err)
		assert.Empty(t, projects)
	})

	t.Run("no remote configured", func(t *testing.T) {
		svc, _ := setupService(t, nil)
		_, err := svc.Migrate(context.Background())
		assert.ErrorIs(t, err, domain.ErrNoRemote)
	})
}

func TestLinkService_MirrorRemote(t *testing.T) {
	remote := &fakeRemote{}
	svc, local := setupService(t, remote)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := remote.Add(ctx, domain.NewProject{
			Name: fmt.Sprintf("P%d", i), Description: "d", URL: fmt.Sprintf("https://p%d.test", i),
		})
		require.NoError(t, err)
	}

	count, err := svc.MirrorRemote(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	snapshot, err := local.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snapshot, 3)
}

func TestLinkService_Subscribe(t *testing.T) {
	t.Run("delivers snapshots from the remote feed", func(t *testing.T) {
		remote := &fakeRemote{}
		svc, _ := setupService(t, remote)
		ctx := context.Background()

		_, err := remote.Add(ctx, domain.NewProject{Name: "Live", Description: "d", URL: "https://live.test"})
		require.NoError(t, err)

		sub, err := svc.Subscribe(ctx)
		require.NoError(t, err)
		defer sub.Unsubscribe()

		select {
		case projects := <-sub.C:
			require.Len(t, projects, 1)
			assert.Equal(t, "Live", projects[0].Name)
		case <-time.After(time.Second):
			t.Fatal("expected a snapshot")
		}
	})

	t.Run("no remote configured", func(t *testing.T) {
		svc, _ := setupService(t, nil)
		_, err := svc.Subscribe(context.Background())
		assert.ErrorIs(t, err, domain.ErrNoRemote)
	})
}
