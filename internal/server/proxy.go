package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/employee-lifecycle/portal/internal/config"
	"github.com/employee-lifecycle/portal/internal/models"
)

// newAPIProxy forwards API_BASE_PATH requests unchanged to the backend origin so
// browser code can call the relative API root during development
func newAPIProxy(cfg config.BackendConfig, logger zerolog.Logger) (http.Handler, error) {
	target, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL: %w", err)
	}

	proxy := &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(target)
			r.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Warn().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("Backend proxy request failed")

			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusBadGateway)
			_ = json.NewEncoder(w).Encode(models.ErrorResponse{Success: false, Error: "Backend unavailable"})
		},
	}

	return proxy, nil
}
