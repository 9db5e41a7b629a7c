package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/productlens/backend/internal/domain"
)

// DefaultBadgeCapacity bounds the number of live badges kept by a registry
const DefaultBadgeCapacity = 512

// ErrBadgeNotFound is returned when a badge was dismissed, evicted or never rendered
var ErrBadgeNotFound = errors.New("badge not found")

// BadgeRegistry keeps rendered badges by ID so later user actions reach them.
// The oldest badge is evicted once capacity is reached.
type BadgeRegistry struct {
	mutex    sync.RWMutex
	badges   map[string]*Badge
	order    []string
	capacity int
}

// NewBadgeRegistry creates a registry holding up to capacity badges
func NewBadgeRegistry(capacity int) *BadgeRegistry {
	if capacity <= 0 {
		capacity = DefaultBadgeCapacity
	}
	return &BadgeRegistry{
		badges:   make(map[string]*Badge),
		capacity: capacity,
	}
}

// Add registers a badge
func (r *BadgeRegistry) Add(badge *Badge) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.badges[badge.ID]; ok {
		return
	}
	for len(r.order) >= r.capacity {
		oldest := r.order[0]
		r.order = r.order[1:]
		delete(r.badges, oldest)
	}
	r.badges[badge.ID] = badge
	r.order = append(r.order, badge.ID)
}

// Get returns a live badge
func (r *BadgeRegistry) Get(id string) (*Badge, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	badge, ok := r.badges[id]
	if !ok {
		return nil, ErrBadgeNotFound
	}
	return badge, nil
}

// Len returns the number of live badges
func (r *BadgeRegistry) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.badges)
}

// Dismiss removes the overlay and forgets it. A fetch already in flight on the
// badge still completes.
func (r *BadgeRegistry) Dismiss(id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	badge, ok := r.badges[id]
	if !ok {
		return ErrBadgeNotFound
	}
	badge.Dismiss()
	delete(r.badges, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// LoadOpinions runs the opinions action of a live badge
func (r *BadgeRegistry) LoadOpinions(ctx context.Context, id string, client domain.OpinionsClient) (*Badge, error) {
	badge, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	return badge, badge.LoadOpinions(ctx, client)
}
