package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/taskhub/internal/taskhub/service"
	"github.com/aussiebroadwan/taskhub/internal/taskhub/store"
	"github.com/aussiebroadwan/taskhub/pkg/httpx"
	"github.com/aussiebroadwan/taskhub/pkg/slogx"
	"github.com/aussiebroadwan/taskhub/pkg/taskhubsdk"

	_ "github.com/aussiebroadwan/taskhub/api/taskhub" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Prefix is mounted in front of every API route.
const Prefix = taskhubsdk.APIPrefix

// ReadinessCheck reports whether an optional dependency is usable.
type ReadinessCheck func(ctx context.Context) error

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store
	checks       map[string]ReadinessCheck

	AuthService      *service.AuthService
	MFAService       *service.MFAService
	WorkspaceService *service.WorkspaceService
	ProjectService   *service.ProjectService
	AvatarService    *service.AvatarService // nil or disabled answers 501
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		checks:       map[string]ReadinessCheck{},
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

// Use appends middleware to the global chain. It runs after request logging.
func (r *Router) Use(mws ...httpx.Middleware) {
	r.middlewares = append(r.middlewares, mws...)
}

// AddReadinessCheck adds a named dependency to /readyz.
func (r *Router) AddReadinessCheck(name string, check ReadinessCheck) {
	r.checks[name] = check
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerMFA()
	r.registerWorkspaces()
	r.registerProjects()
	r.registerSystem()

	r.Mux.Handle("GET /swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			TaskHub API
//	@version		0.1.0
//	@description	Project and task management backend: accounts with email verification,
//	@description	password reset and optional TOTP, workspaces, projects and tasks.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/taskhub
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/api-v1
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token from /auth/login. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) authed(h http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.AuthService),
		httpx.RateLimitByUser(limit),
	)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService}

	// Credential endpoints are limited per address and email so one client
	// cannot lock out everyone behind the same NAT.
	r.Mux.Handle("POST "+Prefix+"/auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST "+Prefix+"/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)
	r.Mux.Handle("POST "+Prefix+"/auth/login/mfa",
		httpx.Chain(http.HandlerFunc(h.HandleLoginMFA),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST "+Prefix+"/auth/verify-email",
		httpx.Chain(http.HandlerFunc(h.HandleVerifyEmail),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST "+Prefix+"/auth/reset-password-request",
		httpx.Chain(http.HandlerFunc(h.HandleResetPasswordRequest),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)
	r.Mux.Handle("POST "+Prefix+"/auth/reset-password",
		httpx.Chain(http.HandlerFunc(h.HandleResetPassword),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UserHandler{AuthService: r.AuthService, AvatarService: r.AvatarService}

	r.Mux.Handle("GET "+Prefix+"/users/me", r.authed(h.HandleMe, httpx.LenientLimit))
	r.Mux.Handle("POST "+Prefix+"/users/me/avatar", r.authed(h.HandleAvatar, httpx.ModerateLimit))
}

func (r *Router) registerMFA() {
	h := &MFAHandler{MFAService: r.MFAService}

	r.Mux.Handle("POST "+Prefix+"/mfa/totp/enroll", r.authed(h.HandleEnroll, httpx.ModerateLimit))
	// Strict: guessing TOTP codes.
	r.Mux.Handle("POST "+Prefix+"/mfa/totp/verify", r.authed(h.HandleVerify, httpx.StrictLimit))
	r.Mux.Handle("POST "+Prefix+"/mfa/backup-codes", r.authed(h.HandleRegenerateBackupCodes, httpx.StrictLimit))
	r.Mux.Handle("DELETE "+Prefix+"/mfa/totp", r.authed(h.HandleRemove, httpx.StrictLimit))
}

func (r *Router) registerWorkspaces() {
	h := &WorkspaceHandler{WorkspaceService: r.WorkspaceService}

	r.Mux.Handle("POST "+Prefix+"/workspaces", r.authed(h.HandleCreate, httpx.ModerateLimit))
	r.Mux.Handle("GET "+Prefix+"/workspaces", r.authed(h.HandleList, httpx.LenientLimit))
	r.Mux.Handle("GET "+Prefix+"/workspaces/{workspaceId}", r.authed(h.HandleGet, httpx.LenientLimit))
	r.Mux.Handle("POST "+Prefix+"/workspaces/{workspaceId}/members", r.authed(h.HandleAddMember, httpx.ModerateLimit))
	r.Mux.Handle("PATCH "+Prefix+"/workspaces/{workspaceId}/members/{userId}", r.authed(h.HandleUpdateMember, httpx.ModerateLimit))
	r.Mux.Handle("DELETE "+Prefix+"/workspaces/{workspaceId}/members/{userId}", r.authed(h.HandleRemoveMember, httpx.ModerateLimit))
}

func (r *Router) registerProjects() {
	h := &ProjectHandler{ProjectService: r.ProjectService}

	r.Mux.Handle("POST "+Prefix+"/workspaces/{workspaceId}/projects", r.authed(h.HandleCreate, httpx.ModerateLimit))
	r.Mux.Handle("GET "+Prefix+"/workspaces/{workspaceId}/projects", r.authed(h.HandleList, httpx.LenientLimit))
	r.Mux.Handle("GET "+Prefix+"/projects/{projectId}", r.authed(h.HandleGet, httpx.LenientLimit))
	r.Mux.Handle("GET "+Prefix+"/projects/{projectId}/tasks", r.authed(h.HandleListTasks, httpx.LenientLimit))
	r.Mux.Handle("POST "+Prefix+"/projects/{projectId}/tasks", r.authed(h.HandleCreateTask, httpx.ModerateLimit))
	r.Mux.Handle("PATCH "+Prefix+"/tasks/{taskId}/status", r.authed(h.HandleUpdateTaskStatus, httpx.ModerateLimit))
	r.Mux.Handle("POST "+Prefix+"/tasks/{taskId}/archive", r.authed(h.HandleArchiveTask, httpx.ModerateLimit))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET "+Prefix+"/livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET "+Prefix+"/readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.checks),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}
