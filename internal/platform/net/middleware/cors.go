package middleware

import (
	"net/http"

	chicors "github.com/go-chi/cors"
)

// CORSOptions configures the cross-origin policy
type CORSOptions struct {
	AllowedOrigins []string
}

// CORS builds the cross-origin middleware. Credentials stay enabled
// because the console session cookies ride along on every request
func CORS(o CORSOptions) func(http.Handler) http.Handler {
	origins := o.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return chicors.Handler(chicors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Cookie", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
