package server

import (
	"net/http"

	"jqery/internal/handler"
	"jqery/internal/logger"
	"jqery/internal/middleware"
)

func NewMux(queryHandler *handler.QueryHandler, healthHandler *handler.HealthHandler, log *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/query", queryHandler.HandleQuery)
	mux.HandleFunc("/healthz", healthHandler.HandleHealth)

	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.AccessLog(log),
		middleware.CORS,
	)
}
