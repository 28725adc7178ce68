package repository

import (
	"context"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/taha-association/links-backend/internal/links/domain"
)

// RemoteRepository is the cloud document store: one Firestore document per
// project, the document ID being the record's identity. Every read comes
// back ordered by dateAdded descending, server-side. Transport failures are
// wrapped as *domain.TransportError so the fallback policy can recognize
// them; they are never fatal here.
type RemoteRepository struct {
	client *firestore.Client
	ref    *firestore.CollectionRef
}

func NewRemoteRepository(client *firestore.Client, collection string) *RemoteRepository {
	return &RemoteRepository{
		client: client,
		ref:    client.Collection(collection),
	}
}

// projectDoc is the Firestore document shape. createdAt is the server-native
// creation timestamp, stamped separately from the dateAdded string.
type projectDoc struct {
	Name        string    `firestore:"name"`
	Description string    `firestore:"description"`
	URL         string    `firestore:"url"`
	Category    string    `firestore:"category"`
	DateAdded   string    `firestore:"dateAdded"`
	IsActive    bool      `firestore:"isActive"`
	CreatedAt   time.Time `firestore:"createdAt"`
}

func (d projectDoc) toProject(id string) domain.Project {
	category := d.Category
	if category == "" {
		category = domain.DefaultCategory
	}
	return domain.Project{
		ID:          id,
		Name:        d.Name,
		Description: d.Description,
		URL:         d.URL,
		Category:    category,
		DateAdded:   d.DateAdded,
		IsActive:    d.IsActive,
	}
}

// GetAll returns every document ordered by dateAdded descending.
func (r *RemoteRepository) GetAll(ctx context.Context) ([]domain.Project, error) {
	iter := r.ref.OrderBy("dateAdded", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	projects := make([]domain.Project, 0, 16)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, &domain.TransportError{Op: "getAll", Err: err}
		}

		var d projectDoc
		if err := doc.DataTo(&d); err != nil {
			log.Printf("[warn] operation=remote.getAll doc=%s error=%v", doc.Ref.ID, err)
			continue
		}
		projects = append(projects, d.toProject(doc.Ref.ID))
	}
	return projects, nil
}

// Add creates a document with dateAdded stamped now, isActive true and a
// server-side createdAt timestamp. The remote assigns the identity.
func (r *RemoteRepository) Add(ctx context.Context, np domain.NewProject) (*domain.Project, error) {
	dateAdded := time.Now().UTC().Format(time.RFC3339)
	category := np.CategoryOrDefault()

	docRef, _, err := r.ref.Add(ctx, map[string]interface{}{
		"name":        np.Name,
		"description": np.Description,
		"url":         np.URL,
		"category":    category,
		"dateAdded":   dateAdded,
		"isActive":    true,
		"createdAt":   firestore.ServerTimestamp,
	})
	if err != nil {
		return nil, &domain.TransportError{Op: "add", Err: err}
	}

	return &domain.Project{
		ID:          docRef.ID,
		Name:        np.Name,
		Description: np.Description,
		URL:         np.URL,
		Category:    category,
		DateAdded:   dateAdded,
		IsActive:    true,
	}, nil
}

// Update merges the patch into the document. The document ID is immutable.
func (r *RemoteRepository) Update(ctx context.Context, id string, patch domain.ProjectPatch) (*domain.Project, error) {
	snap, err := r.ref.Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrNotFound
		}
		return nil, &domain.TransportError{Op: "update", Err: err}
	}

	var d projectDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, &domain.TransportError{Op: "update", Err: err}
	}

	updated := d.toProject(id)
	patch.Apply(&updated)

	_, err = r.ref.Doc(id).Set(ctx, map[string]interface{}{
		"name":        updated.Name,
		"description": updated.Description,
		"url":         updated.URL,
		"category":    updated.Category,
		"isActive":    updated.IsActive,
	}, firestore.MergeAll)
	if err != nil {
		return nil, &domain.TransportError{Op: "update", Err: err}
	}

	return &updated, nil
}

// Delete removes the document. Firestore deletes are no-ops on missing
// documents, so existence is checked first to keep the NotFound contract.
func (r *RemoteRepository) Delete(ctx context.Context, id string) error {
	_, err := r.ref.Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return domain.ErrNotFound
		}
		return &domain.TransportError{Op: "delete", Err: err}
	}

	if _, err := r.ref.Doc(id).Delete(ctx); err != nil {
		return &domain.TransportError{Op: "delete", Err: err}
	}
	return nil
}

// Subscribe opens a live feed of full project snapshots, re-emitted whenever
// the collection changes. A listener transport error emits one empty list
// (fail-soft), logs, and ends the feed; it never panics the caller. The
// returned subscription owns the listener's lifetime.
func (r *RemoteRepository) Subscribe(ctx context.Context) *domain.Subscription {
	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan []domain.Project, 1)

	snaps := r.ref.OrderBy("dateAdded", firestore.Desc).Snapshots(ctx)
	go func() {
		defer snaps.Stop()
		stream(ctx, ch, func() ([]domain.Project, error) {
			snap, err := snaps.Next()
			if err != nil {
				return nil, err
			}
			return decodeSnapshot(snap)
		})
	}()

	return domain.NewSubscription(ch, cancel)
}

// decodeSnapshot converts a query snapshot into the project list it holds.
// A single undecodable document is skipped; a broken document iterator is an
// error for the whole snapshot.
func decodeSnapshot(snap *firestore.QuerySnapshot) ([]domain.Project, error) {
	projects := make([]domain.Project, 0, 16)
	for {
		doc, err := snap.Documents.Next()
		if err == iterator.Done {
			return projects, nil
		}
		if err != nil {
			return nil, err
		}
		var d projectDoc
		if err := doc.DataTo(&d); err != nil {
			log.Printf("[warn] operation=remote.subscribe doc=%s error=%v", doc.Ref.ID, err)
			continue
		}
		projects = append(projects, d.toProject(doc.Ref.ID))
	}
}

// stream pumps snapshots from next into ch until next fails, then closes ch.
// A listener error emits one empty list (fail-soft) before the feed ends; a
// cancelled context ends the feed silently.
func stream(ctx context.Context, ch chan []domain.Project, next func() ([]domain.Project, error)) {
	defer close(ch)
	for {
		projects, err := next()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[error] operation=remote.subscribe error=%v", err)
			push(ch, []domain.Project{})
			return
		}
		push(ch, projects)
	}
}

// push delivers the latest snapshot, dropping a stale undelivered one.
// Single producer per channel.
func push(ch chan []domain.Project, projects []domain.Project) {
	select {
	case ch <- projects:
	default:
		select {
		case <-ch:
		default:
		}
		ch <- projects
	}
}
