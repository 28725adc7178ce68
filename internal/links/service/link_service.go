package service

import (
	"context"
	"errors"
	"time"

	"github.com/taha-association/links-backend/internal/links/domain"
)

// RemoteStore is the cloud document store the policy prefers.
type RemoteStore interface {
	GetAll(ctx context.Context) ([]domain.Project, error)
	Add(ctx context.Context, np domain.NewProject) (*domain.Project, error)
	Update(ctx context.Context, id string, patch domain.ProjectPatch) (*domain.Project, error)
	Delete(ctx context.Context, id string) error
	Subscribe(ctx context.Context) *domain.Subscription
}

// LocalStore is the durable local record store the policy falls back to.
type LocalStore interface {
	GetAll(ctx context.Context) []domain.Project
	Snapshot(ctx context.Context) ([]domain.Project, error)
	Add(ctx context.Context, np domain.NewProject) (*domain.Project, error)
	Update(ctx context.Context, id string, patch domain.ProjectPatch) (*domain.Project, error)
	Delete(ctx context.Context, id string) error
	Import(ctx context.Context, data []byte) (int, error)
	Replace(ctx context.Context, projects []domain.Project) error
	Export(ctx context.Context) *domain.Export
}

// LinkService is the single entry point the HTTP layer calls. Every read
// and write goes remote-first; when the remote store fails with a transport
// error the same logical operation is retried against the local store and
// the result is tagged with its source. Domain errors (ErrNotFound and
// friends) propagate unchanged and never trigger a fallback. A nil remote
// store means local-only mode.
type LinkService struct {
	remote  RemoteStore
	local   LocalStore
	metrics counters
}

func NewLinkService(remote RemoteStore, local LocalStore) *LinkService {
	return &LinkService{remote: remote, local: local}
}

// fallback reports whether the remote error should degrade to the local
// store, recording metrics either way.
func (s *LinkService) fallback(ctx context.Context, op string, err error) bool {
	s.metrics.recordRemoteCall(err)
	if err == nil {
		return false
	}
	if domain.IsTransport(err) {
		s.metrics.recordFallback()
		NewLogger(ctx).Warnf(op, "remote store unavailable, serving local: %v", err)
		return true
	}
	return false
}

// GetAll lists all projects newest-first, tagged with the serving store.
func (s *LinkService) GetAll(ctx context.Context) (*domain.ProjectList, error) {
	if s.remote == nil {
		s.metrics.recordLocalServed()
		return &domain.ProjectList{Projects: s.local.GetAll(ctx), Source: domain.SourceLocal}, nil
	}

	projects, err := s.remote.GetAll(ctx)
	if err == nil {
		s.metrics.recordRemoteCall(nil)
		return &domain.ProjectList{Projects: projects, Source: domain.SourceRemote}, nil
	}
	if s.fallback(ctx, "getAll", err) {
		return &domain.ProjectList{Projects: s.local.GetAll(ctx), Source: domain.SourceLocal}, nil
	}
	return nil, err
}

// Add creates a project remote-first. A degraded (locally-written) result
// is tagged SourceLocal so the caller can inform the user.
func (s *LinkService) Add(ctx context.Context, np domain.NewProject) (*domain.Project, domain.Source, error) {
	if s.remote == nil {
		s.metrics.recordLocalServed()
		p, err := s.local.Add(ctx, np)
		return p, domain.SourceLocal, err
	}

	p, err := s.remote.Add(ctx, np)
	if err == nil {
		s.metrics.recordRemoteCall(nil)
		return p, domain.SourceRemote, nil
	}
	if s.fallback(ctx, "add", err) {
		p, err := s.local.Add(ctx, np)
		return p, domain.SourceLocal, err
	}
	return nil, "", err
}

// Update patches a project. ErrNotFound propagates without fallback.
func (s *LinkService) Update(ctx context.Context, id string, patch domain.ProjectPatch) (*domain.Project, domain.Source, error) {
	if s.remote == nil {
		s.metrics.recordLocalServed()
		p, err := s.local.Update(ctx, id, patch)
		return p, domain.SourceLocal, err
	}

	p, err := s.remote.Update(ctx, id, patch)
	if err == nil {
		s.metrics.recordRemoteCall(nil)
		return p, domain.SourceRemote, nil
	}
	if s.fallback(ctx, "update", err) {
		p, err := s.local.Update(ctx, id, patch)
		return p, domain.SourceLocal, err
	}
	return nil, "", err
}

// Delete removes a project. ErrNotFound propagates without fallback.
func (s *LinkService) Delete(ctx context.Context, id string) (domain.Source, error) {
	if s.remote == nil {
		s.metrics.recordLocalServed()
		return domain.SourceLocal, s.local.Delete(ctx, id)
	}

	err := s.remote.Delete(ctx, id)
	if err == nil {
		s.metrics.recordRemoteCall(nil)
		return domain.SourceRemote, nil
	}
	if s.fallback(ctx, "delete", err) {
		return domain.SourceLocal, s.local.Delete(ctx, id)
	}
	return "", err
}

// Search filters the remote-first listing by case-insensitive substring.
func (s *LinkService) Search(ctx context.Context, term string) (*domain.ProjectList, error) {
	list, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.ProjectList{
		Projects: domain.SearchProjects(list.Projects, term),
		Source:   list.Source,
	}, nil
}

// ByCategory filters the remote-first listing by exact category.
func (s *LinkService) ByCategory(ctx context.Context, category string) (*domain.ProjectList, error) {
	list, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.ProjectList{
		Projects: domain.FilterByCategory(list.Projects, category),
		Source:   list.Source,
	}, nil
}

// Categories returns the sorted distinct categories of the serving store.
func (s *LinkService) Categories(ctx context.Context) ([]string, domain.Source, error) {
	list, err := s.GetAll(ctx)
	if err != nil {
		return nil, "", err
	}
	return domain.CategoriesOf(list.Projects), list.Source, nil
}

// Stats summarizes the serving store's snapshot.
func (s *LinkService) Stats(ctx context.Context) (*domain.Stats, domain.Source, error) {
	list, err := s.GetAll(ctx)
	if err != nil {
		return nil, "", err
	}
	return domain.ComputeStats(list.Projects, time.Now()), list.Source, nil
}

// Export serializes the serving store's snapshot for download.
func (s *LinkService) Export(ctx context.Context) (*domain.Export, error) {
	list, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.Export{
		Projects: list.Projects,
		Metadata: domain.ExportMetadata{
			Version:       domain.ExportVersion,
			ExportDate:    time.Now().UTC().Format(time.RFC3339),
			TotalProjects: len(list.Projects),
			Source:        string(list.Source),
		},
	}, nil
}

// Import replaces the local snapshot with the payload's project list.
// Import is explicitly local: restored backups become the fallback state.
func (s *LinkService) Import(ctx context.Context, data []byte) (int, error) {
	return s.local.Import(ctx, data)
}

// Migrate pushes every local record into the remote store, stripping local
// IDs so the remote assigns fresh identities. Adds run sequentially; one
// failure never blocks the rest. A never-written local slot migrates as an
// empty list; only an unreadable snapshot aborts.
func (s *LinkService) Migrate(ctx context.Context) (*domain.MigrateResult, error) {
	if s.remote == nil {
		return nil, domain.ErrNoRemote
	}

	projects, err := s.local.Snapshot(ctx)
	if err != nil && !errors.Is(err, domain.ErrNoSnapshot) {
		return nil, err
	}

	logger := NewLogger(ctx)
	result := &domain.MigrateResult{}
	for _, p := range projects {
		np := domain.NewProject{
			Name:        p.Name,
			Description: p.Description,
			URL:         p.URL,
			Category:    p.Category,
		}
		if _, err := s.remote.Add(ctx, np); err != nil {
			logger.Warnf("migrate", "failed to migrate %q: %v", p.Name, err)
			result.Failed++
			continue
		}
		result.Successful++
	}

	logger.Infof("migrate", "migrated successful=%d failed=%d", result.Successful, result.Failed)
	return result, nil
}

// MirrorRemote copies the remote snapshot into the local backup slot.
// Remote wins; the local copy is only ever a backup.
func (s *LinkService) MirrorRemote(ctx context.Context) (int, error) {
	if s.remote == nil {
		return 0, domain.ErrNoRemote
	}

	projects, err := s.remote.GetAll(ctx)
	s.metrics.recordRemoteCall(err)
	if err != nil {
		return 0, err
	}

	if err := s.local.Replace(ctx, projects); err != nil {
		return 0, err
	}
	return len(projects), nil
}

// Subscribe opens the remote live feed, or reports ErrNoRemote.
func (s *LinkService) Subscribe(ctx context.Context) (*domain.Subscription, error) {
	if s.remote == nil {
		return nil, domain.ErrNoRemote
	}
	return s.remote.Subscribe(ctx), nil
}

// Metrics returns a snapshot of the fallback counters.
func (s *LinkService) Metrics() Metrics {
	return s.metrics.snapshot()
}

// ResetMetrics zeroes the counters (testing hook).
func (s *LinkService) ResetMetrics() {
	s.metrics.reset()
}

// IsNotFound reports whether err is the store's missing-record error.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
