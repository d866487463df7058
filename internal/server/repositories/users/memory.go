package users

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/faceauth/internal/common"
	"github.com/dmitrijs2005/faceauth/internal/server/models"
)

// InMemoryRepository keeps users in process memory. List returns users in
// insertion order. Data is lost on restart; meant for development and tests.
type InMemoryRepository struct {
	mu     sync.RWMutex
	byName map[string]*models.User
	order  []*models.User
	now    func() time.Time
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byName: make(map[string]*models.User),
		now:    time.Now,
	}
}

func (r *InMemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[user.UserName]; ok {
		return nil, common.ErrorUsernameTaken
	}

	user.CreatedAt = r.now().UTC()
	stored := *user
	r.byName[stored.UserName] = &stored
	r.order = append(r.order, &stored)

	return user, nil
}

func (r *InMemoryRepository) GetUserByLogin(ctx context.Context, userName string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byName[userName]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

func (r *InMemoryRepository) List(ctx context.Context) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.User, 0, len(r.order))
	for _, u := range r.order {
		c := *u
		result = append(result, &c)
	}
	return result, nil
}
