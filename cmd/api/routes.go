package main

import (
	"log"
	"net/http"

	httphandlers "fresco/internal/interfaces/http"
	"fresco/internal/shared/config"
	"fresco/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", httphandlers.HandleHealth)

	// Aggregator webhooks
	mux.HandleFunc("/api/webhooks/bank", deps.WebhookHandler.HandleBankEvent)

	// Workspace-facing connect action
	mux.HandleFunc("/api/bank/connect", deps.ConnectHandler.HandleConnect)

	// Apply global middleware
	handler := middleware.Logging(mux)
	if cfg.Telemetry.Enabled {
		handler = middleware.Telemetry(middleware.Tracing(handler))
	}

	// Apply security middleware when TLS is enabled
	if cfg.TLS.Enabled {
		handler = middleware.HSTS(middleware.SecureCookies(handler))
		log.Println("TLS security middleware enabled (HSTS + SecureCookies)")
	}

	return handler
}
