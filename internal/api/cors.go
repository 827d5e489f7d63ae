package api

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// CORSConfig holds CORS configuration. Allowed methods are not configured;
// preflight answers list the methods registered for the requested path.
type CORSConfig struct {
	AllowOrigin  string
	AllowHeaders []string
	MaxAge       int
}

// DefaultCORSConfig allows origin, or any origin when origin is empty. The
// UI may be served from a dev server on another port.
func DefaultCORSConfig(origin string) CORSConfig {
	if origin == "" {
		origin = "*"
	}
	return CORSConfig{
		AllowOrigin:  origin,
		AllowHeaders: []string{"Content-Type", "X-Requested-With", "Accept", "Origin"},
		MaxAge:       86400,
	}
}

// NewCORSMiddleware sets the origin header on every API response.
func NewCORSMiddleware(config CORSConfig) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		ctx.SetHeader("Access-Control-Allow-Origin", config.AllowOrigin)
		if config.AllowOrigin != "*" {
			ctx.AppendHeader("Vary", "Origin")
		}
		next(ctx)
	}
}

// routeMethods maps one OpenAPI path template to its methods.
type routeMethods struct {
	segments []string
	methods  string
}

// match reports whether path fits the template; "{name}" matches any
// single segment.
func (r routeMethods) match(path []string) bool {
	if len(path) != len(r.segments) {
		return false
	}
	for i, seg := range r.segments {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			continue
		}
		if seg != path[i] {
			return false
		}
	}
	return true
}

// operationMethods lists the methods with an operation on item, followed
// by OPTIONS.
func operationMethods(item *huma.PathItem) []string {
	var out []string
	for _, m := range []struct {
		name string
		op   *huma.Operation
	}{
		{http.MethodGet, item.Get},
		{http.MethodHead, item.Head},
		{http.MethodPost, item.Post},
		{http.MethodPut, item.Put},
		{http.MethodPatch, item.Patch},
		{http.MethodDelete, item.Delete},
	} {
		if m.op != nil {
			out = append(out, m.name)
		}
	}
	return append(out, http.MethodOptions)
}

// collectRoutes reads the operations registered on api. The union of all
// methods answers preflights for paths outside the OpenAPI document.
func collectRoutes(api huma.API) ([]routeMethods, string) {
	var (
		routes []routeMethods
		union  []string
	)
	for tmpl, item := range api.OpenAPI().Paths {
		methods := operationMethods(item)
		routes = append(routes, routeMethods{
			segments: strings.Split(strings.Trim(tmpl, "/"), "/"),
			methods:  strings.Join(methods, ", "),
		})
		for _, m := range methods {
			if !slices.Contains(union, m) {
				union = append(union, m)
			}
		}
	}
	if len(union) == 0 {
		union = []string{http.MethodOptions}
	}
	slices.Sort(union)
	return routes, strings.Join(union, ", ")
}

// AddCORSHandler answers OPTIONS preflights on mux. Huma middleware only
// runs for registered operations, so preflights are handled on the mux.
// Call it after every route is registered.
func AddCORSHandler(mux *http.ServeMux, api huma.API, config CORSConfig) {
	routes, fallback := collectRoutes(api)
	allowHeaders := strings.Join(config.AllowHeaders, ", ")
	maxAge := strconv.Itoa(config.MaxAge)

	mux.HandleFunc("OPTIONS /", func(w http.ResponseWriter, r *http.Request) {
		methods := fallback
		path := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		for _, route := range routes {
			if route.match(path) {
				methods = route.methods
				break
			}
		}

		w.Header().Set("Access-Control-Allow-Origin", config.AllowOrigin)
		if config.AllowOrigin != "*" {
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.Header().Set("Access-Control-Allow-Headers", allowHeaders)
		w.Header().Set("Access-Control-Max-Age", maxAge)
		w.WriteHeader(http.StatusNoContent)
	})
}
