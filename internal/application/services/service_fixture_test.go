package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jroneil/MI-Tool/internal/domain/models"
	"github.com/jroneil/MI-Tool/pkg/auth"
	"github.com/stretchr/testify/require"
)

type memCache struct {
	mu   sync.Mutex
	data map[int64]*models.Model
	hits int
}

func newMemCache() *memCache {
	return &memCache{data: make(map[int64]*models.Model)}
}

func (c *memCache) Get(ctx context.Context, id int64) (*models.Model, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.data[id]
	if ok {
		c.hits++
	}
	return m, ok
}

func (c *memCache) Set(ctx context.Context, m *models.Model) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[m.ID] = m
}

func (c *memCache) Invalidate(ctx context.Context, id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, id)
}

type serviceFixture struct {
	store *memStore
	cache *memCache
	sm    *ServiceManager
	owner *models.User
	other *models.User
	wsID  int64
}

func newServiceFixture(t *testing.T, recordLimit int) *serviceFixture {
	t.Helper()
	store := newMemStore()
	cache := newMemCache()

	sm := NewServiceManager(Dependencies{
		Users:            memUsers{store},
		Workspaces:       memWorkspaces{store},
		Models:           memModels{store},
		Records:          memRecords{store},
		Tx:               store,
		Cache:            cache,
		Tokens:           auth.NewTokenManager("test-secret", time.Hour),
		RecordLimit:      recordLimit,
		UsageSchedule:    "@hourly",
		UsageWarnPercent: 80,
	})

	ctx := context.Background()
	owner, err := sm.Auth.Register(ctx, RegisterInput{Email: "ada@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	other, err := sm.Auth.Register(ctx, RegisterInput{Email: "bob@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	memberships, err := sm.Workspaces.ListMemberships(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, memberships, 1)

	return &serviceFixture{
		store: store,
		cache: cache,
		sm:    sm,
		owner: owner,
		other: other,
		wsID:  memberships[0].WorkspaceID,
	}
}

func boolPtr(b bool) *bool { return &b }

// contactsModel creates a Contacts model with a required unique email
func (fx *serviceFixture) contactsModel(t *testing.T) *models.Model {
	t.Helper()
	m, err := fx.sm.Models.CreateModel(context.Background(), fx.owner.ID, CreateModelInput{
		WorkspaceID: fx.wsID,
		Name:        "Contacts",
		Fields: []FieldInput{
			{Name: "Email", Slug: "email", DataType: "string", IsRequired: boolPtr(true), IsUnique: boolPtr(true)},
			{Name: "Age", DataType: "number"},
		},
	})
	require.NoError(t, err)
	return m
}
