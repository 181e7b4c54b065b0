package roles

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-ats/internal/rbac"
	"github.com/odyssey-erp/odyssey-ats/internal/shared"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type mockRepository struct {
	mu          sync.Mutex
	roles       map[string]rbac.Role
	findCalls   int
	createError error
}

func newMockRepository() *mockRepository {
	return &mockRepository{roles: make(map[string]rbac.Role)}
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, m)
}

func (m *mockRepository) List(ctx context.Context) ([]rbac.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]rbac.Role, 0, len(m.roles))
	for _, r := range m.roles {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockRepository) Get(ctx context.Context, id string) (rbac.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.roles[id]
	if !ok {
		return rbac.Role{}, fmt.Errorf("role %s: %w", id, shared.ErrNotFound)
	}
	return r, nil
}

func (m *mockRepository) FindByKey(ctx context.Context, key string) (rbac.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findCalls++
	if r, ok := m.roles[key]; ok {
		return r, nil
	}
	for _, r := range m.roles {
		if strings.EqualFold(r.Name, key) {
			return r, nil
		}
	}
	return rbac.Role{}, fmt.Errorf("role %s: %w", key, shared.ErrNotFound)
}

func (m *mockRepository) Create(ctx context.Context, role rbac.Role) error {
	if m.createError != nil {
		return m.createError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roles[role.ID] = role
	return nil
}

func (m *mockRepository) Update(ctx context.Context, role rbac.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.roles[role.ID]
	if !ok || existing.IsSystem {
		return fmt.Errorf("role %s: %w", role.ID, shared.ErrNotFound)
	}
	m.roles[role.ID] = role
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.roles[id]
	if !ok || existing.IsSystem {
		return fmt.Errorf("role %s: %w", id, shared.ErrNotFound)
	}
	delete(m.roles, id)
	return nil
}

func (m *mockRepository) UpsertSystem(ctx context.Context, role rbac.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	role.IsSystem = true
	m.roles[role.ID] = role
	return nil
}

type recordedActivity struct {
	entries []shared.Activity
}

func (r *recordedActivity) Record(ctx context.Context, entry shared.Activity) {
	r.entries = append(r.entries, entry)
}

func newTestService(t *testing.T) (*Service, *mockRepository) {
	t.Helper()
	repo := newMockRepository()
	svc := NewService(repo, nil, nil, nil)
	require.NoError(t, svc.EnsureSystemRoles(context.Background()))
	return svc, repo
}

// ============================================================================
// SYSTEM ROLES
// ============================================================================

func TestSystemRolesCannotBeUpdated(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	for _, sys := range rbac.DefaultRoles() {
		before := repo.roles[sys.ID]
		name := "Hacked"
		perms := rbac.Permissions{}
		_, err := svc.Update(ctx, sys.ID, UpdateRoleRequest{Name: &name, Permissions: &perms})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSystemRole)
		assert.ErrorIs(t, err, shared.ErrForbidden)
		assert.Equal(t, before, repo.roles[sys.ID], "role %s must be unchanged", sys.ID)
	}
}

func TestSystemRolesCannotBeDeleted(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	for _, sys := range rbac.DefaultRoles() {
		before := repo.roles[sys.ID]
		err := svc.Delete(ctx, sys.ID)
		assert.ErrorIs(t, err, ErrSystemRole)
		assert.Equal(t, before, repo.roles[sys.ID])
	}
}

// ============================================================================
// CUSTOM ROLES
// ============================================================================

func TestCreateCustomRole(t *testing.T) {
	repo := newMockRepository()
	activity := &recordedActivity{}
	svc := NewService(repo, nil, activity, nil)
	fixed := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	ctx := shared.ContextWithPrincipal(context.Background(), &shared.Principal{UserID: 7, Name: "Alice"})
	role, err := svc.Create(ctx, CreateRoleRequest{
		Name:        "  Sourcer ",
		Permissions: rbac.Permissions{rbac.ResourceCandidates: {View: true, Add: true}},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(role.ID, "role_"))
	assert.Equal(t, "Sourcer", role.Name)
	assert.False(t, role.IsSystem)
	assert.Equal(t, fixed, role.CreatedAt)
	assert.Equal(t, "Alice", role.CreatedBy)
	assert.Contains(t, repo.roles, role.ID)
	require.Len(t, activity.entries, 1)
	assert.Equal(t, "role.created", activity.entries[0].Action)

	// names are not unique
	dup, err := svc.Create(ctx, CreateRoleRequest{Name: "Sourcer"})
	require.NoError(t, err)
	assert.NotEqual(t, role.ID, dup.ID)
}

func TestCreateRoleValidation(t *testing.T) {
	svc, repo := newTestService(t)
	count := len(repo.roles)

	_, err := svc.Create(context.Background(), CreateRoleRequest{Name: ""})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(context.Background(), CreateRoleRequest{
		Name:        "Bad",
		Permissions: rbac.Permissions{"spaceships": {View: true}},
	})
	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.Len(t, repo.roles, count)
}

func TestUpdateMergesFields(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	role, err := svc.Create(ctx, CreateRoleRequest{
		Name:        "Coordinator",
		Description: "schedules",
		Permissions: rbac.Permissions{rbac.ResourceInterviews: {View: true}},
	})
	require.NoError(t, err)

	desc := "schedules interviews"
	updated, err := svc.Update(ctx, role.ID, UpdateRoleRequest{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "Coordinator", updated.Name)
	assert.Equal(t, desc, updated.Description)
	assert.True(t, updated.Permissions.Allows(rbac.ResourceInterviews, rbac.ActionView))
}

func TestUpdateAndDeleteUnknownRole(t *testing.T) {
	svc, _ := newTestService(t)
	name := "x"
	_, err := svc.Update(context.Background(), "role_missing", UpdateRoleRequest{Name: &name})
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(context.Background(), "role_missing"), shared.ErrNotFound)
}

func TestDeleteCustomRole(t *testing.T) {
	svc, repo := newTestService(t)
	role, err := svc.Create(context.Background(), CreateRoleRequest{Name: "Temp"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), role.ID))
	assert.NotContains(t, repo.roles, role.ID)
}

func TestCreatePropagatesRepositoryError(t *testing.T) {
	repo := newMockRepository()
	repo.createError = errors.New("db down")
	svc := NewService(repo, nil, nil, nil)
	_, err := svc.Create(context.Background(), CreateRoleRequest{Name: "X"})
	assert.Error(t, err)
}

// ============================================================================
// RESOLVER INTEGRATION + CACHE
// ============================================================================

func TestServiceFeedsResolver(t *testing.T) {
	svc, _ := newTestService(t)
	resolver := rbac.NewResolver(svc, nil, nil)
	ctx := context.Background()

	assert.True(t, resolver.HasPermission(ctx, "Recruiter", rbac.ResourceCandidates, rbac.ActionAdd))

	role, err := svc.Create(ctx, CreateRoleRequest{Name: "Temp", Permissions: rbac.Permissions{rbac.ResourceJobs: {View: true}}})
	require.NoError(t, err)
	assert.True(t, resolver.HasPermission(ctx, role.ID, rbac.ResourceJobs, rbac.ActionView))

	require.NoError(t, svc.Delete(ctx, role.ID))
	// a deleted role is unknown: default deny, never admin
	assert.False(t, resolver.HasPermission(ctx, role.ID, rbac.ResourceJobs, rbac.ActionView))
	assert.False(t, resolver.HasPermission(ctx, role.ID, rbac.ResourceCandidates, rbac.ActionView))
}

func TestCacheServesRepeatLookupsAndInvalidatesOnWrite(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newMockRepository()
	svc := NewService(repo, NewCache(client, time.Minute, nil), nil, nil)
	ctx := context.Background()
	require.NoError(t, svc.EnsureSystemRoles(ctx))

	role, err := svc.Create(ctx, CreateRoleRequest{Name: "Cached", Permissions: rbac.Permissions{rbac.ResourceJobs: {View: true}}})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		got, err := svc.FindRole(ctx, role.ID)
		require.NoError(t, err)
		assert.Equal(t, "Cached", got.Name)
	}
	assert.Equal(t, 1, repo.findCalls)

	name := "Renamed"
	_, err = svc.Update(ctx, role.ID, UpdateRoleRequest{Name: &name})
	require.NoError(t, err)

	got, err := svc.FindRole(ctx, role.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, 2, repo.findCalls)
}

func TestCacheDoesNotCacheMisses(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newMockRepository()
	svc := NewService(repo, NewCache(client, time.Minute, nil), nil, nil)
	ctx := context.Background()

	_, err := svc.FindRole(ctx, "ghost")
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = svc.FindRole(ctx, "ghost")
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, 2, repo.findCalls)
}

func TestCacheFallsBackWhenRedisIsDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	repo := newMockRepository()
	svc := NewService(repo, NewCache(client, time.Minute, nil), nil, nil)
	ctx := context.Background()
	require.NoError(t, repo.UpsertSystem(ctx, rbac.DefaultRoles()[0]))

	got, err := svc.FindRole(ctx, rbac.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleAdmin, got.ID)
}

func TestCacheKeepsIDAndNameLookupsApart(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newMockRepository()
	svc := NewService(repo, NewCache(client, time.Minute, nil), nil, nil)
	ctx := context.Background()
	require.NoError(t, svc.EnsureSystemRoles(ctx))
	custom, err := svc.Create(ctx, CreateRoleRequest{Name: "Admin", Permissions: rbac.Permissions{rbac.ResourceDashboard: {View: true}}})
	require.NoError(t, err)
	resolver := rbac.NewResolver(svc, nil, nil)

	assert.True(t, resolver.HasPermission(ctx, rbac.RoleAdmin, rbac.ResourceUsers, rbac.ActionDelete))
	assert.False(t, resolver.HasPermission(ctx, "ADMIN", rbac.ResourceUsers, rbac.ActionDelete))

	got, err := svc.FindRole(ctx, "ADMIN")
	require.NoError(t, err)
	assert.Equal(t, custom.ID, got.ID)
	got, err = svc.FindRole(ctx, rbac.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleAdmin, got.ID)
}

func TestCacheNameLookupFirstDoesNotShadowID(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newMockRepository()
	svc := NewService(repo, NewCache(client, time.Minute, nil), nil, nil)
	ctx := context.Background()
	require.NoError(t, svc.EnsureSystemRoles(ctx))
	_, err := svc.Create(ctx, CreateRoleRequest{Name: "Admin", Permissions: rbac.Permissions{rbac.ResourceDashboard: {View: true}}})
	require.NoError(t, err)
	resolver := rbac.NewResolver(svc, nil, nil)

	assert.False(t, resolver.HasPermission(ctx, "ADMIN", rbac.ResourceUsers, rbac.ActionDelete))
	assert.True(t, resolver.HasPermission(ctx, rbac.RoleAdmin, rbac.ResourceUsers, rbac.ActionDelete))
}

func TestCacheSharedLoadSurvivesCancelledCaller(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := NewCache(client, time.Minute, nil)

	started := make(chan struct{})
	release := make(chan struct{})
	loader := func(ctx context.Context) (rbac.Role, error) {
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return rbac.Role{}, err
		}
		return rbac.Role{ID: "role_x", Name: "X"}, nil
	}

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := cache.Fetch(firstCtx, "role_x", loader)
		firstErr <- err
	}()
	<-started

	type result struct {
		role rbac.Role
		err  error
	}
	second := make(chan result, 1)
	go func() {
		role, err := cache.Fetch(context.Background(), "role_x", func(context.Context) (rbac.Role, error) {
			return rbac.Role{}, errors.New("second loader must not run")
		})
		second <- result{role, err}
	}()

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)
	// give the second caller time to join the in-flight load
	time.Sleep(50 * time.Millisecond)
	close(release)

	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, "role_x", res.role.ID)
}

func TestRoleNamesNeedNotBeUnique(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateRoleRequest{Name: "Manager", Permissions: rbac.Permissions{rbac.ResourceJobs: {View: true}}})
	require.NoError(t, err)
	second, err := svc.Create(ctx, CreateRoleRequest{Name: "Manager", Permissions: rbac.Permissions{rbac.ResourceTeam: {View: true}}})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	roles, err := repo.List(ctx)
	require.NoError(t, err)
	named := 0
	for _, r := range roles {
		if r.Name == "Manager" {
			named++
		}
	}
	assert.Equal(t, 3, named)
}
