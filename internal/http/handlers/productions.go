package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"studio/internal/production"
)

type startProductionRequest struct {
	Prompt string `json:"prompt"`
	// Modalities selects what to generate. Omitting the field asks the
	// prompt analyzer to choose; supplying an empty list is rejected.
	Modalities *[]string `json:"modalities,omitempty"`
	Async      bool      `json:"async,omitempty"`
}

const maxPromptLen = 4000

// StartProduction runs a production. The synchronous variant holds the
// request open until the run completes; the async variant returns 202 with
// the run id immediately.
func (a *App) StartProduction(w http.ResponseWriter, r *http.Request) {
	var req startProductionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "prompt is required")
		return
	}
	if len(prompt) > maxPromptLen {
		a.error(w, http.StatusBadRequest, "bad_request", "prompt too long")
		return
	}

	var selected []production.Modality
	if req.Modalities != nil {
		if len(*req.Modalities) == 0 {
			a.error(w, http.StatusBadRequest, "bad_request", "modalities must not be empty")
			return
		}
		var err error
		selected, err = production.ParseModalities(*req.Modalities)
		if err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
	}

	if req.Async {
		run, err := a.Productions.StartAsync(r.Context(), prompt, selected)
		if err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		a.json(w, http.StatusAccepted, run)
		return
	}

	run, err := a.Productions.StartProduction(r.Context(), prompt, selected)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	a.json(w, http.StatusOK, run)
}

// GetProduction returns the latest snapshot of a run.
func (a *App) GetProduction(w http.ResponseWriter, r *http.Request) {
	run, err := a.Productions.Get(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, production.ErrRunNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "unknown run")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to load run")
		return
	}
	a.json(w, http.StatusOK, run)
}

// GetProgress returns the latest progress event, or the full log with
// ?history=1.
func (a *App) GetProgress(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if r.URL.Query().Get("history") != "" {
		history, err := a.Productions.ProgressHistory(id)
		if err != nil {
			a.error(w, http.StatusNotFound, "not_found", "unknown run")
			return
		}
		a.json(w, http.StatusOK, history)
		return
	}
	ev, err := a.Productions.Progress(id)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "unknown run")
		return
	}
	a.json(w, http.StatusOK, ev)
}
