package auth_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/odyssey-ats/internal/auth"
	"github.com/odyssey-erp/odyssey-ats/internal/rbac"
	"github.com/odyssey-erp/odyssey-ats/internal/shared"
	"github.com/odyssey-erp/odyssey-ats/internal/users"
	_ "github.com/odyssey-erp/odyssey-ats/testing"
)

// ============================================================================
// STUBS
// ============================================================================

type stubUsers struct {
	byID   map[int64]*users.User
	nextID int64
}

func newStubUsers(t *testing.T, accounts ...users.User) *stubUsers {
	t.Helper()
	s := &stubUsers{byID: make(map[int64]*users.User), nextID: 100}
	for i := range accounts {
		u := accounts[i]
		s.byID[u.ID] = &u
	}
	return s
}

func (s *stubUsers) Get(ctx context.Context, id int64) (*users.User, error) {
	u, ok := s.byID[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	return u, nil
}

func (s *stubUsers) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	for _, u := range s.byID {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, users.ErrNotFound
}

func (s *stubUsers) Create(ctx context.Context, req users.CreateUserRequest) (*users.User, error) {
	if _, err := s.GetByEmail(ctx, req.Email); err == nil {
		return nil, users.ErrEmailTaken
	}
	hash, _ := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	u := &users.User{ID: s.nextID, Name: req.Name, Email: req.Email, PasswordHash: string(hash), Role: req.Role, IsActive: true}
	s.nextID++
	s.byID[u.ID] = u
	return u, nil
}

type roleSource map[string]rbac.Role

func (s roleSource) FindRole(ctx context.Context, key string) (rbac.Role, error) {
	if r, ok := s[key]; ok {
		return r, nil
	}
	return rbac.Role{}, fmt.Errorf("role %s: %w", key, shared.ErrNotFound)
}

func hashed(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

type fixture struct {
	svc    *auth.Service
	users  *stubUsers
	router chi.Router
}

func newFixture(t *testing.T, opts auth.Options) fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	roles := roleSource{}
	for _, r := range rbac.DefaultRoles() {
		roles[r.ID] = r
	}
	store := newStubUsers(t,
		users.User{ID: 1, Name: "Ana", Email: "ana@x.com", PasswordHash: hashed(t, "correct"), Role: rbac.RoleRecruiter, IsActive: true},
		users.User{ID: 2, Name: "Off", Email: "off@x.com", PasswordHash: hashed(t, "correct"), Role: rbac.RoleRecruiter, IsActive: false},
		users.User{ID: 3, Name: "Lost", Email: "lost@x.com", PasswordHash: hashed(t, "correct"), Role: "deleted-role", IsActive: true},
	)
	svc := auth.NewService(store, rbac.NewResolver(roles, nil, nil),
		auth.NewTokenIssuer("test-secret", time.Hour, "odyssey-ats"), auth.NewRevocationStore(client), opts, nil)

	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		auth.NewHandler(nil, svc).MountRoutes(r)
		r.Group(func(r chi.Router) {
			r.Use(svc.Authenticator)
			r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
				p := shared.PrincipalFromContext(r.Context())
				_ = json.NewEncoder(w).Encode(map[string]any{"userId": p.UserID})
			})
		})
	})
	return fixture{svc: svc, users: store, router: router}
}

func (f fixture) post(t *testing.T, body, token string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/auth", strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	var env map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func (f fixture) ping(token string) int {
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec.Code
}

// ============================================================================
// LOGIN
// ============================================================================

func TestLoginReturnsUserPermissionsAndToken(t *testing.T) {
	f := newFixture(t, auth.Options{})
	rec, env := f.post(t, `{"action":"login","email":"ANA@x.com","password":"correct"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, env["success"])

	data := env["data"].(map[string]any)
	assert.NotEmpty(t, data["token"])
	assert.Contains(t, data["permissions"], "candidates.add")
	user := data["user"].(map[string]any)
	assert.Equal(t, "ana@x.com", user["email"])
	_, leaked := user["PasswordHash"]
	assert.False(t, leaked)
}

func TestLoginInvalidCredentials(t *testing.T) {
	f := newFixture(t, auth.Options{})
	for _, body := range []string{
		`{"action":"login","email":"ana@x.com","password":"wrong"}`,
		`{"action":"login","email":"nobody@x.com","password":"correct"}`,
		`{"action":"login","email":"off@x.com","password":"correct"}`,
	} {
		rec, env := f.post(t, body, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, body)
		assert.Equal(t, false, env["success"])
		assert.Equal(t, "Invalid email or password", env["message"])
	}
}

func TestLoginWithUnresolvableRoleIsRefused(t *testing.T) {
	f := newFixture(t, auth.Options{})
	rec, env := f.post(t, `{"action":"login","email":"lost@x.com","password":"correct"}`, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, false, env["success"])
}

// ============================================================================
// TOKEN VERIFICATION
// ============================================================================

func TestTokenIsVerifiedOnEveryRequest(t *testing.T) {
	f := newFixture(t, auth.Options{})
	_, env := f.post(t, `{"action":"login","email":"ana@x.com","password":"correct"}`, "")
	token := env["data"].(map[string]any)["token"].(string)

	assert.Equal(t, http.StatusOK, f.ping(token))
	assert.Equal(t, http.StatusUnauthorized, f.ping(""))
	assert.Equal(t, http.StatusUnauthorized, f.ping(token+"x"))
	assert.Equal(t, http.StatusUnauthorized, f.ping("random-opaque-token"))
}

func TestTokenFromOtherSecretRejected(t *testing.T) {
	f := newFixture(t, auth.Options{})
	foreign, _, err := auth.NewTokenIssuer("other-secret", time.Hour, "odyssey-ats").Issue(1, rbac.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, f.ping(foreign))
}

func TestDeactivatedUserLosesAccess(t *testing.T) {
	f := newFixture(t, auth.Options{})
	_, env := f.post(t, `{"action":"login","email":"ana@x.com","password":"correct"}`, "")
	token := env["data"].(map[string]any)["token"].(string)

	f.users.byID[1].IsActive = false
	assert.Equal(t, http.StatusUnauthorized, f.ping(token))
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newFixture(t, auth.Options{})
	_, env := f.post(t, `{"action":"login","email":"ana@x.com","password":"correct"}`, "")
	token := env["data"].(map[string]any)["token"].(string)

	rec, _ := f.post(t, `{"action":"me"}`, token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = f.post(t, `{"action":"logout"}`, token)
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, http.StatusUnauthorized, f.ping(token))
	rec, _ = f.post(t, `{"action":"me"}`, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ============================================================================
// REGISTRATION
// ============================================================================

func TestRegisterDisabledByDefault(t *testing.T) {
	f := newFixture(t, auth.Options{})
	rec, env := f.post(t, `{"action":"register","name":"N","email":"n@x.com","password":"secret1"}`, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Registration is disabled", env["message"])
}

func TestRegisterForcesConfiguredRole(t *testing.T) {
	f := newFixture(t, auth.Options{RegistrationEnabled: true, RegistrationRole: rbac.RoleViewer})
	rec, env := f.post(t, `{"action":"register","name":"N","email":"n@x.com","password":"secret1","role":"admin"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	user := env["data"].(map[string]any)["user"].(map[string]any)
	assert.Equal(t, rbac.RoleViewer, user["role"])

	rec, env = f.post(t, `{"action":"register","name":"N","email":"n@x.com","password":"secret1"}`, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Email already exists", env["message"])
}

func TestUnknownAction(t *testing.T) {
	f := newFixture(t, auth.Options{})
	rec, env := f.post(t, `{"action":"hack"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid action", env["message"])
}
