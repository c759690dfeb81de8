package handler

import (
	"net/http"
	"time"

	"github.com/Miraines/rbac-auth-service/internal/adapters/transport/http/middleware"
	"github.com/Miraines/rbac-auth-service/internal/domain/auth/permission"
	"github.com/Miraines/rbac-auth-service/internal/infra/metrics"
	"github.com/Miraines/rbac-auth-service/internal/infra/ratelimit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Route declares one endpoint. Routes are private unless Public is set;
// a private route with no Permissions only requires authentication.
type Route struct {
	Method      string
	Path        string
	Public      bool
	Permissions []string
	Handler     gin.HandlerFunc
}

func (h *Handler) Routes() []Route {
	return []Route{
		{Method: http.MethodPost, Path: "/auth/register", Public: true, Handler: h.register},
		{Method: http.MethodPost, Path: "/auth/login", Public: true, Handler: h.login},
		{Method: http.MethodPost, Path: "/auth/refresh", Public: true, Handler: h.refresh},
		{Method: http.MethodPost, Path: "/auth/logout", Handler: h.logout},
		{Method: http.MethodGet, Path: "/auth/me", Handler: h.me},

		{Method: http.MethodGet, Path: "/users", Permissions: []string{permission.UserList}, Handler: h.listUsers},
		{Method: http.MethodGet, Path: "/users/:id", Permissions: []string{permission.UserRead}, Handler: h.getUser},
		{Method: http.MethodPatch, Path: "/users/:id", Permissions: []string{permission.UserUpdate}, Handler: h.updateUser},
		{Method: http.MethodDelete, Path: "/users/:id", Permissions: []string{permission.UserDelete}, Handler: h.deleteUser},
		{Method: http.MethodPost, Path: "/users/:id/roles", Permissions: []string{permission.RoleAssign}, Handler: h.assignRole},
		{Method: http.MethodDelete, Path: "/users/:id/roles/:role", Permissions: []string{permission.RoleAssign}, Handler: h.removeRole},
		{Method: http.MethodPost, Path: "/users/:id/permissions", Permissions: []string{permission.PermissionAssign}, Handler: h.assignPermission},

		{Method: http.MethodPost, Path: "/iam/roles", Permissions: []string{permission.RoleManage}, Handler: h.createRole},
		{Method: http.MethodGet, Path: "/iam/roles", Permissions: []string{permission.RoleList}, Handler: h.listRoles},
		{Method: http.MethodGet, Path: "/iam/roles/:id", Permissions: []string{permission.RoleRead}, Handler: h.getRole},
		{Method: http.MethodPatch, Path: "/iam/roles/:id", Permissions: []string{permission.RoleManage}, Handler: h.updateRole},
		{Method: http.MethodDelete, Path: "/iam/roles/:id", Permissions: []string{permission.RoleManage}, Handler: h.deleteRole},
		{Method: http.MethodPost, Path: "/iam/permissions", Permissions: []string{permission.PermissionManage}, Handler: h.createPermission},
		{Method: http.MethodGet, Path: "/iam/permissions", Permissions: []string{permission.PermissionList}, Handler: h.listPermissions},
		{Method: http.MethodDelete, Path: "/iam/permissions/:id", Permissions: []string{permission.PermissionManage}, Handler: h.deletePermission},

		{Method: http.MethodGet, Path: "/queue/email/stats", Permissions: []string{permission.SystemAdmin}, Handler: h.emailStats},
		{Method: http.MethodGet, Path: "/queue/email/jobs", Permissions: []string{permission.SystemAdmin}, Handler: h.emailJobs},
		{Method: http.MethodGet, Path: "/queue/email/jobs/:id", Permissions: []string{permission.SystemAdmin}, Handler: h.emailJob},
		{Method: http.MethodPost, Path: "/queue/email/notifications", Permissions: []string{permission.SystemAdmin}, Handler: h.sendNotification},

		{Method: http.MethodGet, Path: "/health", Public: true, Handler: h.health},
		{Method: http.MethodGet, Path: "/metrics", Public: true, Handler: gin.WrapH(metrics.Handler())},
	}
}

type RouterOptions struct {
	AllowedOrigins   []string
	AllowCredentials bool
	Limiter          *ratelimit.PerKey
	// TrustedProxies may set X-Forwarded-For; empty trusts none, so the
	// client IP is the socket peer.
	TrustedProxies []string
}

// NewRouter mounts routes behind the shared middleware. Private routes get
// authn followed by the permission check.
func NewRouter(routes []Route, authn gin.HandlerFunc, opts RouterOptions, log *zap.Logger) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}
	router := gin.New()
	if err := router.SetTrustedProxies(opts.TrustedProxies); err != nil {
		log.Warn("invalid trusted proxies, trusting none", zap.Error(err))
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(metrics.Instrument())
	if opts.Limiter != nil {
		router.Use(middleware.RateLimitPerIP(opts.Limiter))
	}
	if len(opts.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins: opts.AllowedOrigins,
			AllowMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders: []string{
				"Origin", "Content-Type", "Accept",
				"Authorization",
				"X-Requested-With",
			},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: opts.AllowCredentials,
			MaxAge:           12 * time.Hour,
		}))
	}

	for _, r := range routes {
		if r.Public {
			router.Handle(r.Method, r.Path, r.Handler)
			continue
		}
		router.Handle(r.Method, r.Path, authn, middleware.RequirePermissions(r.Permissions...), r.Handler)
	}
	return router
}
