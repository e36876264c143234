package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/taskauth/internal/auth/service"
	"github.com/aussiebroadwan/taskauth/internal/auth/store"
	"github.com/aussiebroadwan/taskauth/pkg/httpx"
	"github.com/aussiebroadwan/taskauth/pkg/ratelimit"
	"github.com/aussiebroadwan/taskauth/pkg/slogx"

	_ "github.com/aussiebroadwan/taskauth/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Options configures a Router.
type Options struct {
	ServiceName    string
	BuildVersion   string
	AllowedOrigins []string
	KeyFunc        httpx.KeyExtractor
	Metrics        http.Handler
	EnableSwagger  bool
	Logger         *slog.Logger
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware
	handler     http.Handler

	auth    *service.AuthService
	store   store.Store
	limiter *ratelimit.Limiter
	opts    Options

	startTime time.Time
}

func NewRouter(auth *service.AuthService, st store.Store, opts Options) *Router {
	if opts.ServiceName == "" {
		opts.ServiceName = "auth-service"
	}
	if opts.KeyFunc == nil {
		opts.KeyFunc = httpx.RemoteAddrKeyExtractor
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	r := &Router{
		Mux:       http.NewServeMux(),
		auth:      auth,
		store:     st,
		limiter:   auth.Limiter,
		opts:      opts,
		startTime: time.Now(),
	}

	// Outermost first: every request gets an id and a log line, CORS
	// preflights are answered before routing.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(opts.Logger),
		httpx.CORSMiddleware(opts.AllowedOrigins),
	}
	r.handler = httpx.Chain(r.Mux, r.middlewares...)

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerSystem()

	if r.opts.EnableSwagger {
		r.Mux.Handle("GET /swagger/",
			httpx.Chain(httpSwagger.Handler(),
				httpx.RateLimitMiddleware(r.limiter, ratelimit.ActionGeneral, r.opts.KeyFunc),
			),
		)
	}
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Task App Authentication Service API
//	@version		1.0.0
//	@description	Registration, login and token verification for the task app.
//	@description
//	@description				Tokens are HS256 JWTs valid for 24 hours. Services holding the shared secret verify them locally, others call /api/auth/verify.
//
//	@contact.name				AussieBroadWAN Team
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8001
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// Register and login admit through the limiter inside the service so a
	// denial is decided before any validation or hashing.
	r.Mux.Handle("POST /api/auth/register", &RegisterHandler{Auth: r.auth, KeyFunc: r.opts.KeyFunc})
	r.Mux.Handle("POST /api/auth/login", &LoginHandler{Auth: r.auth, KeyFunc: r.opts.KeyFunc})
	r.Mux.Handle("POST /api/auth/verify", &VerifyHandler{Auth: r.auth})

	// Profile windows are per address and user.
	profileKey := httpx.CompositeKeyExtractor(":", r.opts.KeyFunc, httpx.UserIDKeyExtractor)
	r.Mux.Handle("GET /api/auth/me",
		httpx.Chain(&ProfileHandler{Auth: r.auth, KeyFunc: profileKey},
			httpx.AuthnMiddleware(r.auth.Tokens),
		),
	)
}

func (r *Router) registerSystem() {
	// Never rate limited, orchestrators poll it.
	r.Mux.Handle("GET /health", HealthHandler(r.startTime, r.opts.ServiceName, r.opts.BuildVersion))

	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.opts.ServiceName, r.opts.BuildVersion, r.store),
			httpx.RateLimitMiddleware(r.limiter, ratelimit.ActionGeneral, r.opts.KeyFunc),
		),
	)

	if r.opts.Metrics != nil {
		r.Mux.Handle("GET /metrics", r.opts.Metrics)
	}
}
