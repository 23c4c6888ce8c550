package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/slatedeck/slate/internal/server/service"
	"github.com/slatedeck/slate/internal/server/ws"
	"github.com/slatedeck/slate/pkg/httpx"
	"github.com/slatedeck/slate/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers. The REST surface is
// the mutation side of the system; every write broadcasts the new state to
// connected remotes through the session handler.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	logger    *slog.Logger
	env       string
	port      int
	startTime time.Time

	Auth     *service.AuthService
	Profiles *service.ProfileService
	Buttons  *service.ButtonService
	Sessions *ws.SessionHandler
}

func NewRouter(
	auth *service.AuthService,
	profiles *service.ProfileService,
	buttons *service.ButtonService,
	sessions *ws.SessionHandler,
	logger *slog.Logger,
	env string,
	port int,
) *Router {
	r := &Router{
		Mux:       http.NewServeMux(),
		logger:    logger,
		env:       env,
		port:      port,
		startTime: time.Now(),
		Auth:      auth,
		Profiles:  profiles,
		Buttons:   buttons,
		Sessions:  sessions,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSystem()
	r.registerAuth()
	r.registerButtons()
	r.registerProfiles()

	r.Mux.Handle("GET /ws", r.Sessions)
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /health",
		httpx.Chain(HealthHandler(r.env),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("GET /api/server-info",
		httpx.Chain(ServerInfoHandler(r.port),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerAuth() {
	qrHandler := &QRTokenHandler{Auth: r.Auth}
	exchangeHandler := &ExchangeHandler{Auth: r.Auth}

	r.Mux.Handle("GET /api/auth/qr-token",
		httpx.Chain(qrHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// Strict limit: the exchange endpoint is the brute-force target.
	r.Mux.Handle("POST /api/auth/exchange",
		httpx.Chain(exchangeHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerButtons() {
	h := &ButtonsHandler{Buttons: r.Buttons, Profiles: r.Profiles, Sessions: r.Sessions}

	lenient := httpx.RateLimitByIP(httpx.LenientLimit)
	moderate := httpx.RateLimitByIP(httpx.ModerateLimit)

	r.Mux.Handle("GET /api/buttons", httpx.Chain(http.HandlerFunc(h.List), lenient))
	r.Mux.Handle("POST /api/buttons", httpx.Chain(http.HandlerFunc(h.Create), moderate))
	r.Mux.Handle("PUT /api/buttons/reorder", httpx.Chain(http.HandlerFunc(h.Reorder), moderate))
	r.Mux.Handle("GET /api/buttons/{id}", httpx.Chain(http.HandlerFunc(h.Get), lenient))
	r.Mux.Handle("PUT /api/buttons/{id}", httpx.Chain(http.HandlerFunc(h.Update), moderate))
	r.Mux.Handle("DELETE /api/buttons/{id}", httpx.Chain(http.HandlerFunc(h.Delete), moderate))
}

func (r *Router) registerProfiles() {
	h := &ProfilesHandler{Profiles: r.Profiles, Buttons: r.Buttons, Sessions: r.Sessions}

	lenient := httpx.RateLimitByIP(httpx.LenientLimit)
	moderate := httpx.RateLimitByIP(httpx.ModerateLimit)

	r.Mux.Handle("GET /api/profiles", httpx.Chain(http.HandlerFunc(h.List), lenient))
	r.Mux.Handle("POST /api/profiles", httpx.Chain(http.HandlerFunc(h.Create), moderate))
	r.Mux.Handle("GET /api/profiles/{id}", httpx.Chain(http.HandlerFunc(h.Get), lenient))
	r.Mux.Handle("GET /api/profiles/{id}/buttons", httpx.Chain(http.HandlerFunc(h.ListButtons), lenient))
	r.Mux.Handle("PUT /api/profiles/{id}", httpx.Chain(http.HandlerFunc(h.Update), moderate))
	r.Mux.Handle("DELETE /api/profiles/{id}", httpx.Chain(http.HandlerFunc(h.Delete), moderate))
	r.Mux.Handle("POST /api/profiles/{id}/switch", httpx.Chain(http.HandlerFunc(h.Switch), moderate))
}
