package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taha-association/links-backend/internal/links/domain"
)

const (
	projectsKey   = "links:projects" // JSON array snapshot of all project records
	eventsChannel = "links:events"   // Pub/Sub channel notified after every mutation
)

// LocalRepository is the durable local record store: the full project list
// lives as one JSON snapshot under a single key. It is the fallback target
// when the remote store is unreachable, and the backup slot the mirror job
// writes into.
type LocalRepository struct {
	client *redis.Client
}

func NewLocalRepository(client *redis.Client) *LocalRepository {
	return &LocalRepository{client: client}
}

// GetAll returns the current snapshot, newest-first. An absent or empty
// slot is seeded with the built-in default list first. GetAll never fails:
// on a read error it falls back to the defaults without persisting them.
func (r *LocalRepository) GetAll(ctx context.Context) []domain.Project {
	projects, err := r.Snapshot(ctx)
	if errors.Is(err, domain.ErrNoSnapshot) || (err == nil && len(projects) == 0) {
		seeded, seedErr := r.seed(ctx)
		if seedErr != nil {
			log.Printf("[warn] operation=local.seed error=%v", seedErr)
			return r.defaults()
		}
		return seeded
	}
	if err != nil {
		log.Printf("[warn] operation=local.getAll error=%v", err)
		return r.defaults()
	}
	domain.SortByDateAdded(projects)
	return projects
}

// Snapshot reads the raw persisted snapshot. Unlike GetAll it surfaces read
// failures and does not seed; ErrNoSnapshot means the slot does not exist yet.
func (r *LocalRepository) Snapshot(ctx context.Context) ([]domain.Project, error) {
	data, err := r.client.Get(ctx, projectsKey).Result()
	if err == redis.Nil {
		return nil, domain.ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}

	var projects []domain.Project
	if err := json.Unmarshal([]byte(data), &projects); err != nil {
		return nil, fmt.Errorf("corrupt snapshot: %w", err)
	}
	return projects, nil
}

// GetByID returns the record with the given id, or ErrNotFound.
func (r *LocalRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	for _, p := range r.GetAll(ctx) {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Add creates a record: fresh ID, DateAdded stamped now, IsActive true,
// category defaulted. The write is persisted before the record is returned.
func (r *LocalRepository) Add(ctx context.Context, np domain.NewProject) (*domain.Project, error) {
	projects := r.GetAll(ctx)

	record, err := newRecord(np)
	if err != nil {
		return nil, err
	}

	projects = append(projects, *record)
	if err := r.save(ctx, projects); err != nil {
		return nil, err
	}

	r.publish(ctx, "add", record.ID)
	return record, nil
}

// Update merges patch over the existing record. The ID is immutable.
func (r *LocalRepository) Update(ctx context.Context, id string, patch domain.ProjectPatch) (*domain.Project, error) {
	projects := r.GetAll(ctx)

	idx := -1
	for i := range projects {
		if projects[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, domain.ErrNotFound
	}

	patch.Apply(&projects[idx])
	if err := r.save(ctx, projects); err != nil {
		return nil, err
	}

	r.publish(ctx, "update", id)
	updated := projects[idx]
	return &updated, nil
}

// Delete removes the record. On ErrNotFound the snapshot is unchanged.
func (r *LocalRepository) Delete(ctx context.Context, id string) error {
	projects := r.GetAll(ctx)

	filtered := make([]domain.Project, 0, len(projects))
	for _, p := range projects {
		if p.ID != id {
			filtered = append(filtered, p)
		}
	}
	if len(filtered) == len(projects) {
		return domain.ErrNotFound
	}

	if err := r.save(ctx, filtered); err != nil {
		return err
	}

	r.publish(ctx, "delete", id)
	return nil
}

// Search matches term case-insensitively over name, description, category
// and URL, preserving GetAll order.
func (r *LocalRepository) Search(ctx context.Context, term string) []domain.Project {
	return domain.SearchProjects(r.GetAll(ctx), term)
}

// ByCategory returns records whose category matches exactly, case-insensitively.
func (r *LocalRepository) ByCategory(ctx context.Context, category string) []domain.Project {
	return domain.FilterByCategory(r.GetAll(ctx), category)
}

// Categories returns the sorted set of distinct categories.
func (r *LocalRepository) Categories(ctx context.Context) []string {
	return domain.CategoriesOf(r.GetAll(ctx))
}

// Stats summarizes the current snapshot.
func (r *LocalRepository) Stats(ctx context.Context) *domain.Stats {
	return domain.ComputeStats(r.GetAll(ctx), time.Now())
}

// Export serializes the full snapshot for backup.
func (r *LocalRepository) Export(ctx context.Context) *domain.Export {
	projects := r.GetAll(ctx)
	return &domain.Export{
		Projects: projects,
		Metadata: domain.ExportMetadata{
			Version:       domain.ExportVersion,
			ExportDate:    time.Now().UTC().Format(time.RFC3339),
			TotalProjects: len(projects),
			Source:        string(domain.SourceLocal),
		},
	}
}

// importedProject tolerates backups written before isActive existed:
// a missing flag means active.
type importedProject struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Category    string `json:"category"`
	DateAdded   string `json:"dateAdded"`
	IsActive    *bool  `json:"isActive"`
}

// Import replaces the snapshot wholesale with the payload's project list.
// The payload must carry a "projects" array; anything else is
// ErrInvalidFormat. Returns the number of imported records.
func (r *LocalRepository) Import(ctx context.Context, data []byte) (int, error) {
	var payload struct {
		Projects *json.RawMessage `json:"projects"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || payload.Projects == nil {
		return 0, domain.ErrInvalidFormat
	}

	var imported []importedProject
	if err := json.Unmarshal(*payload.Projects, &imported); err != nil {
		return 0, domain.ErrInvalidFormat
	}

	projects := make([]domain.Project, 0, len(imported))
	for _, ip := range imported {
		p := domain.Project{
			ID:          ip.ID,
			Name:        ip.Name,
			Description: ip.Description,
			URL:         ip.URL,
			Category:    ip.Category,
			DateAdded:   ip.DateAdded,
			IsActive:    ip.IsActive == nil || *ip.IsActive,
		}
		if p.Category == "" {
			p.Category = domain.DefaultCategory
		}
		if p.ID == "" {
			id, err := NewProjectID()
			if err != nil {
				return 0, err
			}
			p.ID = id
		}
		projects = append(projects, p)
	}

	if err := r.save(ctx, projects); err != nil {
		return 0, err
	}

	r.publish(ctx, "import", "")
	return len(projects), nil
}

// Replace overwrites the snapshot wholesale. Used by the remote-to-local
// mirror job: remote wins, local is backup.
func (r *LocalRepository) Replace(ctx context.Context, projects []domain.Project) error {
	if err := r.save(ctx, projects); err != nil {
		return err
	}
	r.publish(ctx, "replace", "")
	return nil
}

func (r *LocalRepository) save(ctx context.Context, projects []domain.Project) error {
	data, err := json.Marshal(projects)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := r.client.Set(ctx, projectsKey, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to persist snapshot: %w", err)
	}
	return nil
}

func (r *LocalRepository) publish(ctx context.Context, op, id string) {
	event, err := json.Marshal(map[string]string{"op": op, "id": id})
	if err != nil {
		return
	}
	r.client.Publish(ctx, eventsChannel, event)
}

func (r *LocalRepository) seed(ctx context.Context) ([]domain.Project, error) {
	projects := r.defaults()
	if err := r.save(ctx, projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *LocalRepository) defaults() []domain.Project {
	defs := domain.DefaultProjects()
	projects := make([]domain.Project, 0, len(defs))
	for _, np := range defs {
		record, err := newRecord(np)
		if err != nil {
			continue
		}
		projects = append(projects, *record)
	}
	return projects
}

func newRecord(np domain.NewProject) (*domain.Project, error) {
	id, err := NewProjectID()
	if err != nil {
		return nil, err
	}
	return &domain.Project{
		ID:          id,
		Name:        np.Name,
		Description: np.Description,
		URL:         np.URL,
		Category:    np.CategoryOrDefault(),
		DateAdded:   time.Now().UTC().Format(time.RFC3339),
		IsActive:    true,
	}, nil
}
