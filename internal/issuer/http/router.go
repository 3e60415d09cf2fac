package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/quolldev/grantd/internal/issuer/service"
	"github.com/quolldev/grantd/internal/issuer/store"
	"github.com/quolldev/grantd/pkg/httpx"
	"github.com/quolldev/grantd/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store         store.Store
	IssueService  *service.IssueService
	ClientService *service.ClientService
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerIssue()
	r.registerClients()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerIssue() {
	issueHandler := &IssueHandler{IssueService: r.IssueService}

	// POST /issue - moderate rate limit by IP (sits behind the
	// authentication front end, which carries its own limits)
	r.Mux.Handle("POST /v1/issue",
		httpx.Chain(issueHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerClients() {
	h := &ClientsHandler{ClientService: r.ClientService}

	r.Mux.Handle("POST /v1/clients",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("GET /v1/clients",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("DELETE /v1/clients/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
