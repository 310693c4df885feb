package handlers

import (
	"encoding/json"
	"net/http"

	"studio/internal/infra"
	"studio/internal/production"
)

// App is the handler container wiring the production service into the router.
type App struct {
	Productions *production.Service
	Logger      infra.Logger
}

// NewApp constructs the handler container.
func NewApp(svc *production.Service, logger infra.Logger) *App {
	return &App{Productions: svc, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, message string) {
	a.json(w, code, map[string]string{"error": kind, "message": message})
}
