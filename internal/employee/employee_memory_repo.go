package employee

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// memoryRepository keeps employees in process memory. It honours the same
// contract as the gorm repository, including the unique email index, and
// backs STORE_DRIVER=memory and the end-to-end tests.
type memoryRepository struct {
	mu    sync.RWMutex
	rows  map[uuid.UUID]Employee
	order []uuid.UUID // insertion order, the store-default order for search
	now   func() time.Time
}

func NewMemoryRepository() Repository {
	return &memoryRepository{
		rows: make(map[uuid.UUID]Employee),
		now:  time.Now,
	}
}

// WithTx is a no-op: each write already applies atomically under the lock.
func (r *memoryRepository) WithTx(*sql.Tx) Repository {
	return r
}

func (r *memoryRepository) Create(_ context.Context, empl *Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTaken(empl.Email, uuid.Nil) {
		return ErrDuplicateEmail
	}

	now := r.now().UTC()
	if empl.CreatedAt.IsZero() {
		empl.CreatedAt = now
	}
	if empl.UpdatedAt.IsZero() {
		empl.UpdatedAt = now
	}

	r.rows[empl.ID] = *empl
	r.order = append(r.order, empl.ID)
	return nil
}

func (r *memoryRepository) FindAll(_ context.Context) ([]Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := r.inOrder()
	// newest first; later inserts win ties
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *memoryRepository) Search(_ context.Context, q string, limit int) ([]Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(q)
	out := make([]Employee, 0)
	for _, e := range r.inOrder() {
		if limit > 0 && len(out) >= limit {
			break
		}
		if containsFold(e.FirstName, needle) || containsFold(e.LastName, needle) ||
			containsFold(e.Email, needle) || containsFold(e.Position, needle) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memoryRepository) FindByID(_ context.Context, id uuid.UUID) (*Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &e, nil
}

func (r *memoryRepository) Update(_ context.Context, empl *Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.rows[empl.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if r.emailTaken(empl.Email, empl.ID) {
		return ErrDuplicateEmail
	}

	empl.CreatedAt = current.CreatedAt
	empl.UpdatedAt = r.now().UTC()
	r.rows[empl.ID] = *empl
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.rows, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *memoryRepository) emailTaken(email string, except uuid.UUID) bool {
	for id, e := range r.rows {
		if id != except && e.Email == email {
			return true
		}
	}
	return false
}

func (r *memoryRepository) inOrder() []Employee {
	out := make([]Employee, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.rows[id])
	}
	return out
}

func containsFold(s, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(s), lowerNeedle)
}
