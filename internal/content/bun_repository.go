package content

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/domain"
	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// itemCacheNamespace matches the key namespace repositorycache derives from
// the model type name, so prefix invalidation reaches its entries.
var itemCacheNamespace = cacheNamespaceFor(Item{})

func cacheNamespaceFor(model any) string {
	return strings.ToLower(reflect.TypeOf(model).Name())
}

// BunRepository implements Repository on top of bun. Status dependent writes
// are single conditional statements checked through RowsAffected; the row
// they return is the committed state handed back to the caller.
type BunRepository struct {
	db           bun.IDB
	base         repository.Repository[*Item]
	cached       repository.Repository[*Item]
	cacheService cache.CacheService
	cachePrefix  string
}

var (
	_ Repository   = (*BunRepository)(nil)
	_ CachedReader = (*BunRepository)(nil)
)

// NewItemRepository builds the go-repository-bun handlers for Item.
func NewItemRepository(db *bun.DB) repository.Repository[*Item] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Item]{
		NewRecord: func() *Item { return &Item{} },
		GetID: func(i *Item) uuid.UUID {
			return i.ID
		},
		SetID: func(i *Item, id uuid.UUID) {
			i.ID = id
		},
		GetIdentifier: func() string {
			return "slug"
		},
		GetIdentifierValue: func(i *Item) string {
			return i.Slug
		},
	})
}

// NewBunRepository creates a repository without caching.
func NewBunRepository(db *bun.DB) *BunRepository {
	return NewBunRepositoryWithCache(db, nil, nil)
}

// NewBunRepositoryWithCache creates a repository whose public reads go through
// the cache. Every write clears the content namespace.
func NewBunRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunRepository {
	base := NewItemRepository(db)
	repo := &BunRepository{db: db, base: base, cached: base}
	if cacheService != nil && serializer != nil {
		repo.cached = repositorycache.New(base, cacheService, serializer)
		repo.cacheService = cacheService
		repo.cachePrefix = itemCacheNamespace + cache.KeySeparator
	}
	return repo
}

func (r *BunRepository) Create(ctx context.Context, item *Item) (*Item, error) {
	created, err := r.base.Create(ctx, item)
	if err != nil {
		return nil, &StoreError{Op: "create", Err: err}
	}
	r.invalidate(ctx)
	return created, nil
}

// GetByID always reads from the database.
func (r *BunRepository) GetByID(ctx context.Context, id uuid.UUID) (*Item, error) {
	item, err := r.base.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "get", id.String())
	}
	return item, nil
}

// GetCachedByID serves the read from the cache when one is configured.
func (r *BunRepository) GetCachedByID(ctx context.Context, id uuid.UUID) (*Item, error) {
	item, err := r.cached.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "get", id.String())
	}
	return item, nil
}

func (r *BunRepository) UpdateFields(ctx context.Context, update FieldsUpdate) (*Item, error) {
	model := &Item{ID: update.ID}
	update.apply(model)
	res, err := r.db.NewUpdate().
		Model(model).
		Column("title", "slug", "summary", "body", "type", "category", "metadata", "updated_at").
		WherePK().
		Where("?TableAlias.status = ?", update.ExpectedStatus).
		Returning("*").
		Exec(ctx)
	if err := r.checkConditional(ctx, "update", update.ID, res, err); err != nil {
		return nil, err
	}
	r.invalidate(ctx)
	return model, nil
}

func (r *BunRepository) CompareAndSetStatus(ctx context.Context, change StatusChange) (*Item, error) {
	model := &Item{ID: change.ID}
	change.apply(model)

	columns := []string{"status", "updated_at"}
	if change.RejectionReason != nil {
		columns = append(columns, "rejection_reason")
	}
	if change.PublishedAt != nil {
		columns = append(columns, "published_at")
	}
	if change.UnpublishedAt != nil {
		columns = append(columns, "unpublished_at")
	}

	res, err := r.db.NewUpdate().
		Model(model).
		Column(columns...).
		WherePK().
		Where("?TableAlias.status = ?", change.From).
		Returning("*").
		Exec(ctx)
	if err := r.checkConditional(ctx, "set_status", change.ID, res, err); err != nil {
		return nil, err
	}
	r.invalidate(ctx)
	return model, nil
}

func (r *BunRepository) Delete(ctx context.Context, id uuid.UUID, expected domain.Status) error {
	res, err := r.db.NewDelete().
		Model((*Item)(nil)).
		Where("?TableAlias.id = ?", id).
		Where("?TableAlias.status = ?", expected).
		Exec(ctx)
	if err := r.checkConditional(ctx, "delete", id, res, err); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *BunRepository) List(ctx context.Context, query Query) ([]*Item, int, error) {
	items := make([]*Item, 0)
	q := r.db.NewSelect().Model(&items).Apply(query.Filter.Apply)
	for _, expr := range query.Filter.orderExpr() {
		q = q.OrderExpr(expr)
	}
	if query.Limit > 0 {
		q = q.Limit(query.Limit).Offset(max(query.Offset, 0))
	}
	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, &StoreError{Op: "list", Err: err}
	}
	return items, total, nil
}

func (r *BunRepository) Count(ctx context.Context, filter ListFilter) (int, error) {
	count, err := r.db.NewSelect().Model((*Item)(nil)).Apply(filter.Apply).Count(ctx)
	if err != nil {
		return 0, &StoreError{Op: "count", Err: err}
	}
	return count, nil
}

// InvalidateCache drops every cached content entry.
func (r *BunRepository) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
}

func (r *BunRepository) invalidate(ctx context.Context) {
	// A failed invalidation only leaves the public read path stale until TTL.
	_ = r.InvalidateCache(ctx)
}

// checkConditional turns a zero-row conditional write into NotFound or
// ErrStatusConflict depending on whether the row still exists.
func (r *BunRepository) checkConditional(ctx context.Context, op string, id uuid.UUID, res interface{ RowsAffected() (int64, error) }, err error) error {
	if err != nil {
		return &StoreError{Op: op, Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return &StoreError{Op: op, Err: err}
	}
	if affected > 0 {
		return nil
	}
	exists, err := r.db.NewSelect().Model((*Item)(nil)).Where("?TableAlias.id = ?", id).Exists(ctx)
	if err != nil {
		return &StoreError{Op: op, Err: err}
	}
	if !exists {
		return &NotFoundError{Resource: "content", Key: id.String()}
	}
	return ErrStatusConflict
}

func mapRepositoryError(err error, op, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: "content", Key: key}
	}
	return &StoreError{Op: op, Err: fmt.Errorf("content repository error: %w", err)}
}
