package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/avasant/casepipe/internal/config"
	"github.com/avasant/casepipe/internal/fieldgroup"
	"github.com/avasant/casepipe/internal/job"
	"github.com/avasant/casepipe/internal/pipeline"
	"github.com/avasant/casepipe/internal/storage"
)

const testKey = "test-key"

type nullEmbedder struct{}

func (nullEmbedder) Embed(context.Context, string) ([]float32, error) {
	return []float32{1}, nil
}

func (nullEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1}
	}
	return out, nil
}

type nullCompleter struct{}

func (nullCompleter) Complete(context.Context, []string, string) (string, error) {
	return "{}", nil
}

type nullRasterizer struct{}

func (nullRasterizer) PageCount([]byte) (int, error)          { return 0, nil }
func (nullRasterizer) RenderPage([]byte, int) ([]byte, error) { return nil, nil }

type nullExtractor struct{}

func (nullExtractor) ExtractText(context.Context, []byte) ([]string, error) { return nil, nil }

func newTestServer(t *testing.T) (*Server, *pipeline.Bus, *storage.MemoryStore, *job.MemoryStore) {
	t.Helper()
	templates, err := fieldgroup.Defaults()
	if err != nil {
		t.Fatalf("load templates: %v", err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	objects := storage.NewMemoryStore()
	states := job.NewMemoryStore()
	bus := pipeline.NewBus(log)

	p := pipeline.New(objects, states, nullRasterizer{}, nullExtractor{},
		nullEmbedder{}, nullCompleter{}, templates, bus, log, pipeline.DefaultConfig())
	p.RegisterStages(bus)

	cfg := config.Config{APIKey: testKey}
	return NewServer(p, log, cfg), bus, objects, states
}

func authed(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer "+testKey)
	return req
}

func TestHealth_NoAuthRequired(t *testing.T) {
	srv, _, _, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}
}

func TestAuth_RejectsMissingAndBadKey(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/cases", strings.NewReader(`{}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing key status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/cases", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer wrong")
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad key status = %d", rec.Code)
	}
}

func TestSubmit_AcceptsCaseAndReturnsPollURL(t *testing.T) {
	srv, bus, _, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	req := authed(httptest.NewRequest(http.MethodPost, "/api/cases",
		strings.NewReader(`{"link":"cases/jane"}`)))
	srv.ServeHTTP(rec, req)
	bus.Wait()

	if rec.Code != http.StatusAccepted {
		t.Fatalf("submit status = %d, body %s", rec.Code, rec.Body)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if resp["job_id"] == "" {
		t.Fatal("response missing job_id")
	}
	if resp["poll_url"] != "/api/cases/"+resp["job_id"] {
		t.Fatalf("poll_url = %q", resp["poll_url"])
	}
}

func TestSubmit_RejectsMissingLink(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	req := authed(httptest.NewRequest(http.MethodPost, "/api/cases", strings.NewReader(`{}`)))
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestSubmit_RejectsLinkWithoutPath(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	// A bare host normalizes to an empty storage prefix.
	rec := httptest.NewRecorder()
	req := authed(httptest.NewRequest(http.MethodPost, "/api/cases",
		strings.NewReader(`{"link":"https://bucket.example.com/"}`)))
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
}

// brokenStateStore fails every write, simulating an unreachable state
// backend.
type brokenStateStore struct{}

func (brokenStateStore) Set(context.Context, string, job.Role, job.State) error {
	return errors.New("state backend unavailable")
}

func (brokenStateStore) Get(context.Context, string, job.Role) (job.State, error) {
	return "", errors.New("state backend unavailable")
}

func TestSubmit_StateStoreFailureIsServerError(t *testing.T) {
	templates, err := fieldgroup.Defaults()
	if err != nil {
		t.Fatalf("load templates: %v", err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := pipeline.NewBus(log)
	p := pipeline.New(storage.NewMemoryStore(), brokenStateStore{}, nullRasterizer{},
		nullExtractor{}, nullEmbedder{}, nullCompleter{}, templates, bus, log,
		pipeline.DefaultConfig())
	p.RegisterStages(bus)
	srv := NewServer(p, log, config.Config{APIKey: testKey})

	rec := httptest.NewRecorder()
	req := authed(httptest.NewRequest(http.MethodPost, "/api/cases",
		strings.NewReader(`{"link":"cases/jane"}`)))
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
}

func TestResult_NotFoundProcessingAndDone(t *testing.T) {
	srv, _, objects, states := newTestServer(t)
	ctx := context.Background()

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, authed(httptest.NewRequest(http.MethodGet, "/api/cases/nope", nil)))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown job status = %d", rec.Code)
	}

	// One role still running: poller must retry.
	states.Set(ctx, "j1", job.RolePrimary, job.StateExtractionComplete)
	states.Set(ctx, "j1", job.RoleSecondary, job.StateVectorGenerated)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, authed(httptest.NewRequest(http.MethodGet, "/api/cases/j1", nil)))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("in-flight job status = %d", rec.Code)
	}

	// Both terminal with stored records: poller gets [primary, secondary].
	states.Set(ctx, "j2", job.RolePrimary, job.StateExtractionComplete)
	states.Set(ctx, "j2", job.RoleSecondary, job.StateExtractionComplete)
	objects.Put(ctx, storage.ResponseKey("j2", job.RolePrimary), []byte(`{"who":"primary"}`))
	objects.Put(ctx, storage.ResponseKey("j2", job.RoleSecondary), []byte(`{"who":"secondary"}`))

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, authed(httptest.NewRequest(http.MethodGet, "/api/cases/j2", nil)))
	if rec.Code != http.StatusOK {
		t.Fatalf("done job status = %d, body %s", rec.Code, rec.Body)
	}
	var records []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("parse records: %v", err)
	}
	if len(records) != 2 || records[0]["who"] != "primary" || records[1]["who"] != "secondary" {
		t.Fatalf("records = %v", records)
	}
}
