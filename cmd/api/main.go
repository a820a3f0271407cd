package main

import (
	"net/http"
	"os"
	"time"

	"pet-discharge-portal/internal/platform/logger"
	"pet-discharge-portal/internal/router"
)

// @title Pet Discharge Portal API
// @version 1.0
// @description Portal de altas clínicas veterinarias: planes de medicación, logging de dosis/síntomas del tutor y analítica de adherencia por paciente.
// @BasePath /
func main() {
	log := logger.NewFromEnv()

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	r := router.NewRouter(router.Options{Logger: log})

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	log.Info("starting server", map[string]any{"addr": addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
