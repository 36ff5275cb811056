package bind

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	perr "opstats/internal/platform/errors"
)

// queryList gathers a repeated query parameter, also splitting each
// occurrence on commas so ?ids=1,2&ids=3 and ?ids=1&ids=2&ids=3 agree
func queryList(r *http.Request, name string) []string {
	var out []string
	for _, raw := range r.URL.Query()[name] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// QueryInt64s parses a repeated integer parameter, enforcing a
// non-empty set of at most max values
func QueryInt64s(r *http.Request, name string, max int) ([]int64, error) {
	parts := queryList(r, name)
	if len(parts) == 0 {
		return nil, perr.ValidationErrf("%s is required", name)
	}
	if len(parts) > max {
		return nil, perr.ValidationErrf("%s: at most %d values allowed, got %d", name, max, len(parts))
	}

	out := make([]int64, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, perr.ValidationErrf("%s: %q is not an integer", name, part)
		}
		out[i] = v
	}
	return out, nil
}

// QueryUUIDs parses a repeated UUID parameter, enforcing a non-empty
// set of at most max values
func QueryUUIDs(r *http.Request, name string, max int) ([]uuid.UUID, error) {
	parts := queryList(r, name)
	if len(parts) == 0 {
		return nil, perr.ValidationErrf("%s is required", name)
	}
	if len(parts) > max {
		return nil, perr.ValidationErrf("%s: at most %d values allowed, got %d", name, max, len(parts))
	}

	out := make([]uuid.UUID, len(parts))
	for i, part := range parts {
		v, err := uuid.Parse(part)
		if err != nil {
			return nil, perr.ValidationErrf("%s: %q is not a UUID", name, part)
		}
		out[i] = v
	}
	return out, nil
}

// QueryInt parses a single required integer parameter
func QueryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, perr.ValidationErrf("%s is required", name)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, perr.ValidationErrf("%s: %q is not an integer", name, raw)
	}
	return v, nil
}
