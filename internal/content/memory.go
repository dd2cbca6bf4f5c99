package content

import (
	"context"
	"sync"

	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/domain"
	"github.com/google/uuid"
)

// MemoryRepository keeps items in a map guarded by a mutex. Conditional
// writes compare the status inside the critical section, which makes them
// atomic per item. Items are cloned on the way in and out.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*Item
}

// NewMemoryRepository returns an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[uuid.UUID]*Item)}
}

var _ Repository = (*MemoryRepository)(nil)

func (r *MemoryRepository) Create(_ context.Context, item *Item) (*Item, error) {
	if item == nil {
		return nil, &StoreError{Op: "create", Err: ErrValidation}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[item.ID]; exists {
		return nil, &StoreError{Op: "create", Err: errDuplicateID}
	}
	r.items[item.ID] = item.clone()
	return item.clone(), nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, &NotFoundError{Resource: "content", Key: id.String()}
	}
	return item.clone(), nil
}

func (r *MemoryRepository) UpdateFields(_ context.Context, update FieldsUpdate) (*Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, err := r.expect(update.ID, update.ExpectedStatus)
	if err != nil {
		return nil, err
	}
	update.apply(item)
	return item.clone(), nil
}

func (r *MemoryRepository) CompareAndSetStatus(_ context.Context, change StatusChange) (*Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, err := r.expect(change.ID, change.From)
	if err != nil {
		return nil, err
	}
	change.apply(item)
	return item.clone(), nil
}

func (r *MemoryRepository) Delete(_ context.Context, id uuid.UUID, expected domain.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.expect(id, expected); err != nil {
		return err
	}
	delete(r.items, id)
	return nil
}

func (r *MemoryRepository) List(_ context.Context, query Query) ([]*Item, int, error) {
	r.mu.RLock()
	matches := make([]*Item, 0, len(r.items))
	for _, item := range r.items {
		if query.Filter.Matches(item) {
			matches = append(matches, item.clone())
		}
	}
	r.mu.RUnlock()

	query.Filter.Sort(matches)
	total := len(matches)
	start := min(max(query.Offset, 0), total)
	end := total
	if query.Limit > 0 {
		end = min(start+query.Limit, total)
	}
	return matches[start:end], total, nil
}

func (r *MemoryRepository) Count(_ context.Context, filter ListFilter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, item := range r.items {
		if filter.Matches(item) {
			count++
		}
	}
	return count, nil
}

// expect must be called with the write lock held.
func (r *MemoryRepository) expect(id uuid.UUID, status domain.Status) (*Item, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, &NotFoundError{Resource: "content", Key: id.String()}
	}
	if item.Status != status {
		return nil, ErrStatusConflict
	}
	return item, nil
}
