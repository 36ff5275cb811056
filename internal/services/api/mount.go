package api

import (
	"strings"
	"time"

	"opstats/internal/platform/cache"
	"opstats/internal/platform/config"
	"opstats/internal/platform/net/middleware"

	phttp "opstats/internal/platform/net/http"
)

// Options carries everything Mount needs
type Options struct {
	Config        config.Conf
	Store         cache.Store
	EnableSwagger bool
}

// Mount applies the common middleware stack and attaches the report
// routes
func Mount(r phttp.Router, opt Options) {
	r.Use(
		middleware.RequestContext,
		middleware.RecoverJSON,
		middleware.CORS(middleware.CORSOptions{
			AllowedOrigins: splitOrigins(opt.Config.MayString("CORS_ORIGINS", "")),
		}),
		middleware.AccessLog(middleware.AccessLogOptions{
			Slow: opt.Config.MayDuration("SLOW_REQUEST", 5*time.Second),
		}),
	)

	phttp.MountSwagger(r, opt.EnableSwagger)

	New(ConfigFromEnv(opt.Config), opt.Store).Mount(r)
}

func splitOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
