package middleware

import (
	"net/http"
	"slices"

	"github.com/go-chi/cors"
	"github.com/partbridge/marketplace-api/internal/config"
	"go.uber.org/zap"
)

func isDevelopment(environment string) bool {
	return environment == "development" || environment == "local" || environment == ""
}

// CORS builds the cross-origin policy for the portal frontend. The
// workbook and file download endpoints set Content-Disposition, so it
// is always exposed on top of whatever the config lists. Without
// configured origins the policy is open in development and closed
// everywhere else.
func CORS(cfg *config.CORSConfig, environment string, logger *zap.Logger) func(http.Handler) http.Handler {
	exposed := cfg.ExposedHeaders
	if !slices.Contains(exposed, "Content-Disposition") {
		exposed = append(slices.Clone(exposed), "Content-Disposition")
	}

	options := cors.Options{
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   exposed,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}

	allowAny := func(r *http.Request, origin string) bool { return origin != "" }

	switch {
	case slices.Contains(cfg.AllowedOrigins, "*"):
		if !isDevelopment(environment) {
			logger.Warn("cors wildcard origin outside development",
				zap.String("environment", environment))
		}
		options.AllowOriginFunc = allowAny

	case len(cfg.AllowedOrigins) > 0:
		options.AllowedOrigins = cfg.AllowedOrigins
		logger.Info("cors restricted to configured origins",
			zap.Strings("origins", cfg.AllowedOrigins))

	case isDevelopment(environment):
		options.AllowOriginFunc = allowAny
		logger.Info("cors open for development")

	default:
		// An empty AllowedOrigins list makes the library default to
		// the wildcard, so denial has to go through the func
		options.AllowOriginFunc = func(r *http.Request, origin string) bool { return false }
		logger.Warn("cors has no allowed origins, cross-origin requests will be denied",
			zap.String("environment", environment))
	}

	return cors.Handler(options)
}
