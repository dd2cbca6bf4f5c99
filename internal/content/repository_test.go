package content

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/domain"
	"github.com/autophileaozora/smk-kristen5-website-sub003/pkg/testsupport"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func openSchemaDB(t *testing.T) *bun.DB {
	t.Helper()
	db, err := testsupport.NewBunDB()
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return db
}

func newCachedBunRepository(t *testing.T) *BunRepository {
	t.Helper()
	cacheService, err := repocache.NewCacheService(repocache.DefaultConfig())
	if err != nil {
		t.Fatalf("cache service: %v", err)
	}
	return NewBunRepositoryWithCache(openSchemaDB(t), cacheService, repocache.NewDefaultKeySerializer())
}

func repositories(t *testing.T) map[string]Repository {
	t.Helper()
	return map[string]Repository{
		"memory":       NewMemoryRepository(),
		"sqlite":       NewBunRepository(openSchemaDB(t)),
		"sqlite+cache": newCachedBunRepository(t),
	}
}

func seedItem(t *testing.T, repo Repository, status domain.Status) *Item {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Second)
	item := &Item{
		ID:        uuid.New(),
		Status:    status,
		AuthorID:  uuid.New(),
		Type:      DefaultType,
		Title:     "Seed",
		Slug:      "seed",
		Metadata:  map[string]any{"tags": []any{"news"}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	created, err := repo.Create(context.Background(), item)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return created
}

func TestCompareAndSetStatusAppliesOnlyFromExpectedStatus(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			item := seedItem(t, repo, domain.StatusPending)
			now := time.Now().UTC()

			reason := "needs a photo"
			updated, err := repo.CompareAndSetStatus(ctx, StatusChange{
				ID: item.ID, From: domain.StatusPending, To: domain.StatusRejected,
				RejectionReason: &reason, UpdatedAt: now,
			})
			if err != nil {
				t.Fatalf("cas: %v", err)
			}
			if updated.Status != domain.StatusRejected || updated.RejectionReason != reason {
				t.Fatalf("unexpected item after cas: %+v", updated)
			}

			_, err = repo.CompareAndSetStatus(ctx, StatusChange{
				ID: item.ID, From: domain.StatusPending, To: domain.StatusPublished, UpdatedAt: now,
			})
			if !errors.Is(err, ErrStatusConflict) {
				t.Fatalf("expected conflict, got %v", err)
			}

			_, err = repo.CompareAndSetStatus(ctx, StatusChange{
				ID: uuid.New(), From: domain.StatusPending, To: domain.StatusPublished, UpdatedAt: now,
			})
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected not found, got %v", err)
			}
		})
	}
}

func TestConditionalDelete(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			item := seedItem(t, repo, domain.StatusDraft)

			if err := repo.Delete(ctx, item.ID, domain.StatusPending); !errors.Is(err, ErrStatusConflict) {
				t.Fatalf("expected conflict, got %v", err)
			}
			if err := repo.Delete(ctx, item.ID, domain.StatusDraft); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if err := repo.Delete(ctx, item.ID, domain.StatusDraft); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected not found, got %v", err)
			}
		})
	}
}

func TestUpdateFieldsKeepsStatus(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			item := seedItem(t, repo, domain.StatusRejected)

			updated, err := repo.UpdateFields(ctx, FieldsUpdate{
				ID: item.ID, ExpectedStatus: domain.StatusRejected,
				Title: "Fixed", Slug: "fixed", Type: "announcement",
				Metadata: map[string]any{"pinned": true}, UpdatedAt: time.Now().UTC(),
			})
			if err != nil {
				t.Fatalf("update: %v", err)
			}
			if updated.Title != "Fixed" || updated.Status != domain.StatusRejected || updated.Metadata["pinned"] != true {
				t.Fatalf("unexpected update result %+v", updated)
			}

			_, err = repo.UpdateFields(ctx, FieldsUpdate{ID: item.ID, ExpectedStatus: domain.StatusDraft, Title: "Nope"})
			if !errors.Is(err, ErrStatusConflict) {
				t.Fatalf("expected conflict, got %v", err)
			}
		})
	}
}

func TestMemoryRepositoryReturnsCopies(t *testing.T) {
	repo := NewMemoryRepository()
	item := seedItem(t, repo, domain.StatusDraft)
	item.Title = "mutated"
	item.Metadata["tags"] = "mutated"

	stored, err := repo.GetByID(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Title != "Seed" || stored.Metadata["tags"] == "mutated" {
		t.Fatalf("caller mutation leaked into the store: %+v", stored)
	}
}

func TestCountMatchesFilter(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			seedItem(t, repo, domain.StatusPending)
			seedItem(t, repo, domain.StatusPending)
			seedItem(t, repo, domain.StatusDraft)

			count, err := repo.Count(context.Background(), ListFilter{Statuses: []domain.Status{domain.StatusPending}})
			if err != nil {
				t.Fatalf("count: %v", err)
			}
			if count != 2 {
				t.Fatalf("expected 2 pending items, got %d", count)
			}
		})
	}
}

func TestCachedReadFollowsStatusChange(t *testing.T) {
	repo := newCachedBunRepository(t)
	ctx := context.Background()
	item := seedItem(t, repo, domain.StatusPending)

	cached, err := repo.GetCachedByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("cached get: %v", err)
	}
	if cached.Status != domain.StatusPending {
		t.Fatalf("expected pending, got %s", cached.Status)
	}

	publishedAt := time.Now().UTC()
	if _, err := repo.CompareAndSetStatus(ctx, StatusChange{
		ID: item.ID, From: domain.StatusPending, To: domain.StatusPublished,
		PublishedAt: &publishedAt, UpdatedAt: publishedAt,
	}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	cached, err = repo.GetCachedByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("cached get after publish: %v", err)
	}
	if cached.Status != domain.StatusPublished {
		t.Fatalf("cache served stale status %s after publish", cached.Status)
	}

	unpublishedAt := publishedAt.Add(time.Minute)
	if _, err := repo.CompareAndSetStatus(ctx, StatusChange{
		ID: item.ID, From: domain.StatusPublished, To: domain.StatusDraft,
		UnpublishedAt: &unpublishedAt, UpdatedAt: unpublishedAt,
	}); err != nil {
		t.Fatalf("unpublish: %v", err)
	}
	cached, err = repo.GetCachedByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("cached get after unpublish: %v", err)
	}
	if cached.Status != domain.StatusDraft {
		t.Fatalf("cache served stale status %s after unpublish", cached.Status)
	}
}

func TestCachedReadMissesAfterDelete(t *testing.T) {
	repo := newCachedBunRepository(t)
	ctx := context.Background()
	item := seedItem(t, repo, domain.StatusDraft)

	if _, err := repo.GetCachedByID(ctx, item.ID); err != nil {
		t.Fatalf("cached get: %v", err)
	}
	if err := repo.Delete(ctx, item.ID, domain.StatusDraft); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetCachedByID(ctx, item.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestConditionalWriteReturnsCommittedRow(t *testing.T) {
	repo := NewBunRepository(openSchemaDB(t))
	ctx := context.Background()
	item := seedItem(t, repo, domain.StatusPending)

	reason := "wrong category"
	updated, err := repo.CompareAndSetStatus(ctx, StatusChange{
		ID: item.ID, From: domain.StatusPending, To: domain.StatusRejected,
		RejectionReason: &reason, UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if updated.AuthorID != item.AuthorID || updated.Title != item.Title || updated.Slug != item.Slug {
		t.Fatalf("expected untouched columns from the stored row, got %+v", updated)
	}
	if !updated.CreatedAt.Equal(item.CreatedAt) {
		t.Fatalf("expected created_at %v, got %v", item.CreatedAt, updated.CreatedAt)
	}
}
