package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Miraines/rbac-auth-service/internal/adapters/db/postgres"
	redisCache "github.com/Miraines/rbac-auth-service/internal/adapters/db/redis"
	redisQueue "github.com/Miraines/rbac-auth-service/internal/adapters/queue/redis"
	"github.com/Miraines/rbac-auth-service/internal/adapters/transport/http/dto"
	"github.com/Miraines/rbac-auth-service/internal/adapters/transport/http/handler"
	"github.com/Miraines/rbac-auth-service/internal/adapters/transport/http/middleware"
	"github.com/Miraines/rbac-auth-service/internal/app/auth/identity"
	appsvc "github.com/Miraines/rbac-auth-service/internal/app/auth/service"
	"github.com/Miraines/rbac-auth-service/internal/app/auth/token"
	emailsvc "github.com/Miraines/rbac-auth-service/internal/app/email"
	"github.com/Miraines/rbac-auth-service/internal/app/iam"
	"github.com/Miraines/rbac-auth-service/internal/app/user"
	jwt2 "github.com/Miraines/rbac-auth-service/internal/domain/auth/jwt"
	"github.com/Miraines/rbac-auth-service/internal/domain/auth/permission"
	"github.com/Miraines/rbac-auth-service/internal/domain/email"
	"github.com/Miraines/rbac-auth-service/internal/infra/health"
	"github.com/Miraines/rbac-auth-service/internal/infra/ratelimit"
	"github.com/Miraines/rbac-auth-service/internal/testutil"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

/* ───────────────────────────── helpers ───────────────────────────── */

type env struct {
	router *gin.Engine
	jwt    jwt2.JWTUtil
	iam    *iam.Service
	mr     *miniredis.Miniredis
}

func newEnv(t *testing.T) *env {
	return newEnvWith(t, handler.RouterOptions{})
}

func newEnvWith(t *testing.T, opts handler.RouterOptions) *env {
	gin.SetMode(gin.TestMode)
	cfg := testutil.Config()
	db := testutil.DB(t)
	client, mr := testutil.Redis(t)
	cache := redisCache.NewCache(client, zap.NewNop(), cfg.CacheDefaultTTL)
	v := dto.NewValidator()

	users := postgres.NewPostgresUserRepo(db)
	roles := postgres.NewPostgresRoleRepo(db)
	perms := postgres.NewPostgresPermissionRepo(db)

	j := testutil.JWT(t, cfg)
	hasher := testutil.Hasher(cfg.PasswordPepper)
	tokens := token.NewService(j, cache, users, nil)
	resolver := identity.NewResolver(users, cache, cfg.UserCacheTTL, nil)
	mail := emailsvc.NewService(redisQueue.NewEmailQueue(client, "email"))

	iamSvc := iam.NewService(users, roles, perms, resolver, v, nil)
	_, err := iamSvc.SeedPermissions(context.Background())
	require.NoError(t, err)
	_, err = iamSvc.SeedRoles(context.Background())
	require.NoError(t, err)

	h := handler.New(handler.Deps{
		Auth:   appsvc.New(users, roles, tokens, hasher, mail, v, nil),
		Users:  user.NewService(users, hasher, resolver, v, nil),
		IAM:    iamSvc,
		Queue:  mail,
		Health: health.NewChecker(time.Second).Add("redis", cache.Ping),
	})
	authn := middleware.Authenticate(identity.NewAuthenticator(j, resolver), zap.NewNop())
	router := handler.NewRouter(h.Routes(), authn, opts, zap.NewNop())

	return &env{router: router, jwt: j, iam: iamSvc, mr: mr}
}

type request struct {
	method  string
	path    string
	bearer  string
	cookies []*http.Cookie
	body    any
}

func (e *env) do(t *testing.T, r request) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if r.body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(r.body))
	}
	req := httptest.NewRequest(r.method, r.path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if r.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+r.bearer)
	}
	for _, c := range r.cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *env) register(t *testing.T, addr string) dto.LoginResponse {
	t.Helper()
	rr := e.do(t, request{method: http.MethodPost, path: "/auth/register", body: dto.RegisterDTO{
		Email: addr, Password: "Secret123", FirstName: "Test",
	}})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var out dto.LoginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func cookie(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

/* ───────────────────────────── auth ───────────────────────────── */

func TestLogin_WrongPassword(t *testing.T) {
	e := newEnv(t)
	e.register(t, "a@example.com")

	rr := e.do(t, request{method: http.MethodPost, path: "/auth/login", body: dto.LoginDTO{
		Email: "a@example.com", Password: "Wrong1234",
	}})
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Empty(t, rr.Result().Cookies())
}

func TestLogin_OK(t *testing.T) {
	e := newEnv(t)
	reg := e.register(t, "a@example.com")

	rr := e.do(t, request{method: http.MethodPost, path: "/auth/login", body: dto.LoginDTO{
		Email: "a@example.com", Password: "Secret123",
	}})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	for _, name := range []string{middleware.AccessCookie, middleware.RefreshCookie} {
		c := cookie(rr, name)
		require.NotNil(t, c, name)
		require.True(t, c.HttpOnly)
		require.Equal(t, http.SameSiteStrictMode, c.SameSite)
	}

	var out dto.LoginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Equal(t, reg.User.ID, out.User.ID)
	require.InDelta(t, 900, out.Token.ExpiresIn, 1)
	require.Equal(t, cookie(rr, middleware.AccessCookie).Value, out.Token.AccessToken)

	claims, err := e.jwt.ValidateAccessToken(out.Token.AccessToken)
	require.NoError(t, err)
	require.Equal(t, jwt2.AccessToken, claims.Type)
	require.Equal(t, out.User.ID, claims.UserID)
	require.Equal(t, []string{permission.DefaultRole}, claims.Roles)
}

func TestRegister_Duplicate(t *testing.T) {
	e := newEnv(t)
	e.register(t, "dup@example.com")

	rr := e.do(t, request{method: http.MethodPost, path: "/auth/register", body: dto.RegisterDTO{
		Email: "dup@example.com", Password: "Secret123",
	}})
	require.Equal(t, http.StatusConflict, rr.Code)

	rr = e.do(t, request{method: http.MethodPost, path: "/auth/register", body: dto.RegisterDTO{
		Email: "weak@example.com", Password: "weak",
	}})
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMe(t *testing.T) {
	e := newEnv(t)
	reg := e.register(t, "me@example.com")

	rr := e.do(t, request{method: http.MethodGet, path: "/auth/me", bearer: reg.Token.AccessToken})
	require.Equal(t, http.StatusOK, rr.Code)
	var ident struct {
		ID                  string   `json:"id"`
		ComputedPermissions []string `json:"computedPermissions"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ident))
	require.Equal(t, reg.User.ID, ident.ID)
	require.Contains(t, ident.ComputedPermissions, permission.ProfileRead)

	// cookie works on its own
	rr = e.do(t, request{method: http.MethodGet, path: "/auth/me", cookies: []*http.Cookie{
		{Name: middleware.AccessCookie, Value: reg.Token.AccessToken},
	}})
	require.Equal(t, http.StatusOK, rr.Code)

	// header wins over the cookie
	rr = e.do(t, request{method: http.MethodGet, path: "/auth/me", bearer: "garbage", cookies: []*http.Cookie{
		{Name: middleware.AccessCookie, Value: reg.Token.AccessToken},
	}})
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = e.do(t, request{method: http.MethodGet, path: "/auth/me"})
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestMe_ExpiredToken(t *testing.T) {
	e := newEnv(t)
	reg := e.register(t, "exp@example.com")

	cfg := testutil.Config()
	cfg.AccessTokenTTL = -time.Hour
	expired, _, err := testutil.JWT(t, cfg).GenerateAccessToken(uuid.MustParse(reg.User.ID), nil)
	require.NoError(t, err)

	rr := e.do(t, request{method: http.MethodGet, path: "/auth/me", bearer: expired})
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestMe_RefreshTokenRejected(t *testing.T) {
	e := newEnv(t)
	reg := e.register(t, "typ@example.com")

	rr := e.do(t, request{method: http.MethodGet, path: "/auth/me", bearer: reg.Token.RefreshToken})
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRefresh_Rotation(t *testing.T) {
	e := newEnv(t)
	reg := e.register(t, "rot@example.com")

	rr := e.do(t, request{method: http.MethodPost, path: "/auth/refresh", body: dto.RefreshDTO{
		RefreshToken: reg.Token.RefreshToken,
	}})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var out struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.NotEmpty(t, out.AccessToken)
	rotated := cookie(rr, middleware.RefreshCookie)
	require.NotNil(t, rotated)
	require.NotEqual(t, reg.Token.RefreshToken, rotated.Value)

	// the used token is gone
	rr = e.do(t, request{method: http.MethodPost, path: "/auth/refresh", body: dto.RefreshDTO{
		RefreshToken: reg.Token.RefreshToken,
	}})
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	// the rotated one travels in a cookie
	rr = e.do(t, request{method: http.MethodPost, path: "/auth/refresh", cookies: []*http.Cookie{rotated}})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = e.do(t, request{method: http.MethodPost, path: "/auth/refresh"})
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLogout(t *testing.T) {
	e := newEnv(t)
	reg := e.register(t, "out@example.com")

	rr := e.do(t, request{method: http.MethodPost, path: "/auth/logout", body: dto.RefreshDTO{
		RefreshToken: reg.Token.RefreshToken,
	}})
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = e.do(t, request{method: http.MethodPost, path: "/auth/logout", bearer: reg.Token.AccessToken, body: dto.RefreshDTO{
		RefreshToken: reg.Token.RefreshToken,
	}})
	require.Equal(t, http.StatusOK, rr.Code)
	cleared := cookie(rr, middleware.RefreshCookie)
	require.NotNil(t, cleared)
	require.Empty(t, cleared.Value)
	require.Negative(t, cleared.MaxAge)

	rr = e.do(t, request{method: http.MethodPost, path: "/auth/refresh", body: dto.RefreshDTO{
		RefreshToken: reg.Token.RefreshToken,
	}})
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

/* ───────────────────────────── authorization ───────────────────────────── */

func TestDeleteUser_AdminRoleGrantsAccess(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "alice@example.com")
	bob := e.register(t, "bob@example.com")

	del := request{method: http.MethodDelete, path: "/users/" + bob.User.ID, bearer: alice.Token.AccessToken}

	rr := e.do(t, del)
	require.Equal(t, http.StatusForbidden, rr.Code)
	var denied struct {
		Missing []string `json:"missing"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &denied))
	require.Equal(t, []string{permission.UserDelete}, denied.Missing)

	require.NoError(t, e.iam.AssignRole(context.Background(), uuid.MustParse(alice.User.ID), dto.AssignRoleDTO{Role: "admin"}))

	rr = e.do(t, del)
	require.Equal(t, http.StatusNoContent, rr.Code, rr.Body.String())

	rr = e.do(t, request{method: http.MethodGet, path: "/users/" + bob.User.ID, bearer: alice.Token.AccessToken})
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUnauthenticatedBeforePermissions(t *testing.T) {
	e := newEnv(t)
	rr := e.do(t, request{method: http.MethodGet, path: "/users"})
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.NotContains(t, rr.Body.String(), "missing")
}

func (e *env) admin(t *testing.T, addr string) dto.LoginResponse {
	t.Helper()
	a := e.register(t, addr)
	require.NoError(t, e.iam.AssignRole(context.Background(), uuid.MustParse(a.User.ID), dto.AssignRoleDTO{Role: "admin"}))
	return a
}

func TestListUsers(t *testing.T) {
	e := newEnv(t)
	a := e.admin(t, "root@example.com")
	e.register(t, "b@example.com")
	e.register(t, "c@example.com")

	rr := e.do(t, request{method: http.MethodGet, path: "/users?page=1&take=2", bearer: a.Token.AccessToken})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var page dto.UserPage
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	require.Len(t, page.Data, 2)
	require.Equal(t, int64(3), page.Meta.ItemCount)
	require.Equal(t, int64(2), page.Meta.PageCount)
	require.True(t, page.Meta.HasNextPage)

	rr = e.do(t, request{method: http.MethodGet, path: "/users/not-a-uuid", bearer: a.Token.AccessToken})
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpdateUser(t *testing.T) {
	e := newEnv(t)
	a := e.admin(t, "root@example.com")
	b := e.register(t, "b@example.com")

	name := "Robert"
	rr := e.do(t, request{method: http.MethodPatch, path: "/users/" + b.User.ID, bearer: a.Token.AccessToken,
		body: dto.UpdateUserDTO{FirstName: &name}})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var got dto.UserResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Equal(t, "Robert", got.FirstName)

	taken := "root@example.com"
	rr = e.do(t, request{method: http.MethodPatch, path: "/users/" + b.User.ID, bearer: a.Token.AccessToken,
		body: dto.UpdateUserDTO{Email: &taken}})
	require.Equal(t, http.StatusConflict, rr.Code)
}

/* ───────────────────────────── iam ───────────────────────────── */

func TestIAM_RoleLifecycle(t *testing.T) {
	e := newEnv(t)
	a := e.admin(t, "root@example.com")
	b := e.register(t, "b@example.com")
	tok := a.Token.AccessToken

	rr := e.do(t, request{method: http.MethodPost, path: "/iam/roles", bearer: tok, body: dto.CreateRoleDTO{
		Name: "deleter", Permissions: []string{permission.UserDelete},
	}})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var role dto.RoleResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &role))

	rr = e.do(t, request{method: http.MethodPost, path: "/iam/roles", bearer: tok, body: dto.CreateRoleDTO{Name: "deleter"}})
	require.Equal(t, http.StatusConflict, rr.Code)

	rr = e.do(t, request{method: http.MethodPost, path: "/users/" + b.User.ID + "/roles", bearer: tok,
		body: dto.AssignRoleDTO{Role: "deleter"}})
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = e.do(t, request{method: http.MethodGet, path: "/auth/me", bearer: b.Token.AccessToken})
	require.Contains(t, rr.Body.String(), permission.UserDelete)

	rr = e.do(t, request{method: http.MethodDelete, path: "/iam/roles/" + role.ID, bearer: tok})
	require.Equal(t, http.StatusNoContent, rr.Code)

	// role deletion flushes every cached identity
	rr = e.do(t, request{method: http.MethodGet, path: "/auth/me", bearer: b.Token.AccessToken})
	require.NotContains(t, rr.Body.String(), permission.UserDelete)

	rr = e.do(t, request{method: http.MethodGet, path: "/iam/roles", bearer: tok})
	require.Equal(t, http.StatusOK, rr.Code)
	var roles []dto.RoleResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &roles))
	require.Len(t, roles, len(permission.DefaultRoles))
}

func TestIAM_Permissions(t *testing.T) {
	e := newEnv(t)
	a := e.admin(t, "root@example.com")
	tok := a.Token.AccessToken

	rr := e.do(t, request{method: http.MethodPost, path: "/iam/permissions", bearer: tok,
		body: dto.CreatePermissionDTO{Name: "report:read"}})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var custom dto.PermissionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &custom))

	rr = e.do(t, request{method: http.MethodPost, path: "/iam/permissions", bearer: tok,
		body: dto.CreatePermissionDTO{Name: "report:read"}})
	require.Equal(t, http.StatusConflict, rr.Code)

	rr = e.do(t, request{method: http.MethodGet, path: "/iam/permissions", bearer: tok})
	var all []dto.PermissionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &all))
	require.Len(t, all, len(permission.Catalog)+1)

	var system dto.PermissionResponse
	for _, p := range all {
		if p.Name == permission.UserRead {
			system = p
		}
	}
	rr = e.do(t, request{method: http.MethodDelete, path: "/iam/permissions/" + system.ID, bearer: tok})
	require.Equal(t, http.StatusConflict, rr.Code)

	rr = e.do(t, request{method: http.MethodDelete, path: "/iam/permissions/" + custom.ID, bearer: tok})
	require.Equal(t, http.StatusNoContent, rr.Code)
}

/* ───────────────────────────── system ───────────────────────────── */

func TestHealth(t *testing.T) {
	e := newEnv(t)
	rr := e.do(t, request{method: http.MethodGet, path: "/health"})
	require.Equal(t, http.StatusOK, rr.Code)

	e.mr.Close()
	rr = e.do(t, request{method: http.MethodGet, path: "/health"})
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)

	var rep health.Report
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rep))
	require.Equal(t, health.StatusDown, rep.Checks["redis"])
	require.NotContains(t, rr.Body.String(), e.mr.Addr())
}

func fromPeer(e *env, peer, forwardedFor string) int {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = peer
	req.Header.Set("X-Forwarded-For", forwardedFor)
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr.Code
}

func TestRateLimit_IgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	e := newEnvWith(t, handler.RouterOptions{Limiter: ratelimit.New(1, 1, 100, time.Minute)})

	require.Equal(t, http.StatusOK, fromPeer(e, "203.0.113.7:5000", "198.51.100.1"))
	for i := 2; i < 10; i++ {
		spoofed := fmt.Sprintf("198.51.100.%d", i)
		require.Equal(t, http.StatusTooManyRequests, fromPeer(e, "203.0.113.7:5000", spoofed))
	}
}

func TestRateLimit_TrustedProxyForwardsClientIP(t *testing.T) {
	e := newEnvWith(t, handler.RouterOptions{
		Limiter:        ratelimit.New(1, 1, 100, time.Minute),
		TrustedProxies: []string{"10.0.0.0/8"},
	})

	require.Equal(t, http.StatusOK, fromPeer(e, "10.1.1.1:5000", "198.51.100.1"))
	require.Equal(t, http.StatusOK, fromPeer(e, "10.1.1.1:5000", "198.51.100.2"))
	require.Equal(t, http.StatusTooManyRequests, fromPeer(e, "10.1.1.1:5000", "198.51.100.2"))
}

func TestEmailStats(t *testing.T) {
	e := newEnv(t)
	a := e.admin(t, "root@example.com")
	u := e.register(t, "u@example.com")

	rr := e.do(t, request{method: http.MethodGet, path: "/queue/email/stats", bearer: u.Token.AccessToken})
	require.Equal(t, http.StatusForbidden, rr.Code)

	rr = e.do(t, request{method: http.MethodGet, path: "/queue/email/stats", bearer: a.Token.AccessToken})
	require.Equal(t, http.StatusOK, rr.Code)
	var stats email.Stats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	require.Equal(t, int64(2), stats.Waiting)
}

func TestEmailJobs(t *testing.T) {
	e := newEnv(t)
	a := e.admin(t, "root@example.com")
	u := e.register(t, "u@example.com")

	rr := e.do(t, request{method: http.MethodGet, path: "/queue/email/jobs?status=waiting", bearer: u.Token.AccessToken})
	require.Equal(t, http.StatusForbidden, rr.Code)

	rr = e.do(t, request{method: http.MethodGet, path: "/queue/email/jobs?status=waiting", bearer: a.Token.AccessToken})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var jobs []dto.EmailJobResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &jobs))
	require.Len(t, jobs, 2)
	require.Equal(t, []string{"u@example.com"}, jobs[0].To)
	require.Equal(t, email.StatusWaiting, jobs[0].Status)

	rr = e.do(t, request{method: http.MethodGet, path: "/queue/email/jobs?status=waiting&start=1&end=1", bearer: a.Token.AccessToken})
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &jobs))
	require.Len(t, jobs, 1)
	require.Equal(t, []string{"root@example.com"}, jobs[0].To)

	rr = e.do(t, request{method: http.MethodGet, path: "/queue/email/jobs/" + jobs[0].ID, bearer: a.Token.AccessToken})
	require.Equal(t, http.StatusOK, rr.Code)
	var one dto.EmailJobResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &one))
	require.Equal(t, jobs[0].ID, one.ID)
	require.Equal(t, email.StatusWaiting, one.Status)

	rr = e.do(t, request{method: http.MethodGet, path: "/queue/email/jobs?status=paused", bearer: a.Token.AccessToken})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = e.do(t, request{method: http.MethodGet, path: "/queue/email/jobs?status=failed&start=5&end=1", bearer: a.Token.AccessToken})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = e.do(t, request{method: http.MethodGet, path: "/queue/email/jobs/nope", bearer: a.Token.AccessToken})
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestEmailNotification(t *testing.T) {
	e := newEnv(t)
	a := e.admin(t, "root@example.com")
	path := "/queue/email/notifications"

	rr := e.do(t, request{method: http.MethodPost, path: path, bearer: a.Token.AccessToken,
		body: dto.NotificationDTO{To: []string{"not-an-email"}, Subject: "s", Text: "t"}})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = e.do(t, request{method: http.MethodPost, path: path, bearer: a.Token.AccessToken,
		body: dto.NotificationDTO{To: []string{"x@example.com", "y@example.com"}, Subject: "Maintenance", Text: "tonight"}})
	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())

	rr = e.do(t, request{method: http.MethodGet, path: "/queue/email/jobs?status=waiting&start=0&end=0", bearer: a.Token.AccessToken})
	var jobs []dto.EmailJobResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &jobs))
	require.Len(t, jobs, 1)
	require.Equal(t, email.JobNotification, jobs[0].Type)
	require.Equal(t, []string{"x@example.com", "y@example.com"}, jobs[0].To)
}

func TestMetricsEndpoint(t *testing.T) {
	e := newEnv(t)
	rr := e.do(t, request{method: http.MethodGet, path: "/metrics"})
	require.Equal(t, http.StatusOK, rr.Code)
}
