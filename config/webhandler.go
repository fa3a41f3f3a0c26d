package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/klauspost/compress/gzhttp"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"
)

// NewWebHandler serves GET and POST /api/config for the config file at
// cfile. At most ratePerMinute requests are accepted per minute, 0 means
// unlimited. Responses are gzip-compressed when the client accepts it.
func NewWebHandler(cfile string, ratePerMinute int) http.Handler {
	router := httprouter.New()
	router.GET("/api/config", getConfigHandler(cfile))
	router.POST("/api/config", setConfigHandler(cfile))
	return gzhttp.GzipHandler(rateLimit(ratePerMinute, router))
}

func rateLimit(ratePerMinute int, next http.Handler) http.Handler {
	if ratePerMinute <= 0 {
		return next
	}
	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(ratePerMinute)), ratePerMinute)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// getConfigHandler reads the current config file, extracts the runtime-safe
// configuration, and returns it as JSON.
func getConfigHandler(cfile string) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		slog.Info("Handling GET /api/config request")
		// Read on every request so edits made on disk are visible.
		fullConfig, err := ReadConfig(cfile)
		if err != nil {
			slog.Error("Failed to read config file for API", "error", err)
			http.Error(w, "Failed to read configuration", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(fullConfig.Runtime()); err != nil {
			slog.Error("Failed to encode runtime config to JSON", "error", err)
			http.Error(w, "Failed to serialize configuration", http.StatusInternalServerError)
		}
	}
}

// setConfigHandler receives a JSON payload with runtime configuration, merges it
// with the full configuration on disk, validates it, and writes it back.
func setConfigHandler(cfile string) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		slog.Info("Handling POST /api/config request")
		defer r.Body.Close()

		var newRuntimeConfig RuntimeConfig
		if err := json.NewDecoder(r.Body).Decode(&newRuntimeConfig); err != nil {
			slog.Error("Failed to decode incoming JSON", "error", err)
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		fullConfig, err := ReadConfig(cfile)
		if err != nil {
			slog.Error("Failed to read existing config for update", "error", err)
			http.Error(w, "Failed to read configuration", http.StatusInternalServerError)
			return
		}

		merged := fullConfig.Merge(newRuntimeConfig)
		if err := merged.Validate(); err != nil {
			slog.Error("Validation failed for new config", "error", err)
			http.Error(w, fmt.Sprintf("Invalid configuration: %v", err), http.StatusBadRequest)
			return
		}

		yamlData, err := yaml.Marshal(&merged)
		if err != nil {
			slog.Error("Failed to marshal merged config to YAML", "error", err)
			http.Error(w, "Failed to prepare configuration for saving", http.StatusInternalServerError)
			return
		}

		// The file watcher picks this up and reloads.
		if err := os.WriteFile(cfile, yamlData, 0o644); err != nil {
			slog.Error("Failed to write updated config file", "error", err)
			http.Error(w, "Failed to save configuration", http.StatusInternalServerError)
			return
		}

		slog.Info("Successfully updated config file, application will reload.")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "Configuration updated successfully.")
	}
}
