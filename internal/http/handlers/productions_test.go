package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"studio/internal/http/handlers"
	"studio/internal/http/httpapi"
	"studio/internal/infra"
	"studio/internal/production"
	"studio/internal/providers/text"
)

type cannedCompleter struct{}

func (cannedCompleter) Complete(ctx context.Context, req text.CompletionRequest) (*text.CompletionResult, error) {
	if req.JSONOnly {
		// Malformed on purpose: analysis and blueprint resolve to their
		// deterministic fallbacks.
		return &text.CompletionResult{Content: "not json"}, nil
	}
	return &text.CompletionResult{Content: "generated copy", Model: "fake"}, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := production.NewService(production.Options{
		Adapters: production.Adapters{Text: cannedCompleter{}},
		Logger:   zerolog.Nop(),
	})
	app := handlers.NewApp(svc, zerolog.Nop())
	cfg := &infra.Config{RateLimitPerMin: 100}
	srv := httptest.NewServer(httpapi.NewRouter(app, cfg, zerolog.Nop()))
	t.Cleanup(srv.Close)
	return srv
}

func TestStartProductionEndpointSync(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Post(srv.URL+"/v1/productions", "application/json",
		strings.NewReader(`{"prompt":"launch campaign for eco coffee brand","modalities":["text"]}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var run production.ProductionRun
	if err := json.NewDecoder(resp.Body).Decode(&run); err != nil {
		t.Fatalf("decode run: %v", err)
	}
	if run.Stage != production.StageComplete || len(run.Tasks) != 1 {
		t.Fatalf("run = %+v", run)
	}

	// The completed run is queryable afterwards.
	resp2, err := http.Get(srv.URL + "/v1/productions/" + run.ID)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", resp2.StatusCode)
	}

	resp3, err := http.Get(srv.URL + "/v1/productions/" + run.ID + "/progress?history=1")
	if err != nil {
		t.Fatalf("get progress: %v", err)
	}
	defer resp3.Body.Close()
	var history []map[string]any
	if err := json.NewDecoder(resp3.Body).Decode(&history); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(history) == 0 {
		t.Fatal("empty progress history")
	}
}

func TestStartProductionEndpointValidation(t *testing.T) {
	srv := newTestServer(t)
	cases := []struct {
		name string
		body string
	}{
		{"empty_prompt", `{"prompt":"  ","modalities":["text"]}`},
		{"empty_modalities", `{"prompt":"x","modalities":[]}`},
		{"unknown_modality", `{"prompt":"x","modalities":["hologram"]}`},
		{"bad_json", `{`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/v1/productions", "application/json", strings.NewReader(tc.body))
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestGetProductionNotFound(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/v1/productions/nope")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestStartProductionEndpointAsync(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Post(srv.URL+"/v1/productions", "application/json",
		strings.NewReader(`{"prompt":"tell a short story","async":true}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}
	var run production.ProductionRun
	if err := json.NewDecoder(resp.Body).Decode(&run); err != nil {
		t.Fatalf("decode run: %v", err)
	}
	if run.ID == "" {
		t.Fatal("async response missing run id")
	}
}
