package router

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/dental-api/internal/middleware"
	"github.com/jwalitptl/dental-api/pkg/metrics"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Config struct {
	// TrustedProxies may set the client address through X-Forwarded-For.
	// With none, the peer address is always the client.
	TrustedProxies []string
	RateLimit      middleware.RateLimiterConfig
	CORS           middleware.CORSConfig
	Security       middleware.SecurityConfig
	SizeLimit      middleware.SizeLimitConfig
	Timeout        middleware.TimeoutConfig
}

// Deps are the collaborators the router mounts. Root handlers sit outside
// /api/v1 and skip authentication. Metrics may be nil.
type Deps struct {
	Auth    middleware.Authenticator
	Metrics *metrics.Metrics
	Root    []Handler
	API     []Handler
}

type Router struct {
	engine *gin.Engine
	deps   Deps
}

func NewRouter(config Config, deps Deps) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	if err := engine.SetTrustedProxies(config.TrustedProxies); err != nil {
		log.Error().Err(err).Strs("proxies", config.TrustedProxies).Msg("Ignoring invalid trusted proxies")
		_ = engine.SetTrustedProxies(nil)
	}

	r := &Router{
		engine: engine,
		deps:   deps,
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.SecurityHeaders(config.Security),
		middleware.CORS(config.CORS),
	)
	if deps.Metrics != nil {
		engine.Use(middleware.Metrics(deps.Metrics))
	}

	rateLimiter := middleware.NewRateLimiter(config.RateLimit)
	engine.Use(
		rateLimiter.RateLimit(),
		middleware.SizeLimit(config.SizeLimit),
		middleware.Timeout(config.Timeout),
	)

	return r
}

func (r *Router) Setup() {
	for _, h := range r.deps.Root {
		h.RegisterRoutes(&r.engine.RouterGroup)
	}

	api := r.engine.Group("/api/v1")
	api.Use(middleware.Authenticate(r.deps.Auth))
	for _, h := range r.deps.API {
		h.RegisterRoutes(api)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
