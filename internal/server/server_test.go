package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/amishk599/verigen/internal/ai"
	"github.com/amishk599/verigen/internal/generator"
	"github.com/amishk599/verigen/internal/model"
	"github.com/amishk599/verigen/internal/session"
	"github.com/amishk599/verigen/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubProvider struct {
	response string
	err      error
}

func (p *stubProvider) Complete(_ context.Context, _ string) (string, error) {
	return p.response, p.err
}

type fixture struct {
	handler  http.Handler
	store    *store.MemoryStore
	sess     *session.Session
	provider *stubProvider
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("VERIGEN_GROQ_API_KEY", "")

	logger := slog.New(slog.DiscardHandler)
	st := store.NewMemoryStore()
	sess := session.New(st)
	provider := &stubProvider{}
	factory := func(context.Context, model.Target, string) (ai.LLMProvider, error) {
		return provider, nil
	}
	gen := generator.New(factory, sess, st, time.Minute, logger)
	defaults := model.Target{Provider: "groq", Model: "llama3-8b-8192"}

	srv := New(gen, sess, st, defaults, time.Minute, logger)
	return &fixture{handler: srv.Handler(), store: st, sess: sess, provider: provider}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

type errorBody struct {
	Error APIError `json:"error"`
}

type resultBody struct {
	Result model.Result `json:"result"`
	Error  *APIError    `json:"error"`
}

func adderRequest() model.GenerationRequest {
	return model.GenerationRequest{
		CircuitDescription: "8-bit adder",
		CodingStyle:        model.StyleBehavioral,
		TestbenchType:      model.TestbenchBasic,
	}
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := decode[map[string]string](t, w)["status"]; got != "ok" {
		t.Errorf("status field = %q", got)
	}
}

func TestCatalog(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/api/catalog", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := decode[map[string]json.RawMessage](t, w)
	for _, key := range []string{"module_features", "testbench_features", "coding_styles", "testbench_types", "providers", "examples", "defaults"} {
		if _, ok := body[key]; !ok {
			t.Errorf("catalog missing %q", key)
		}
	}
}

func TestPrompt(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/api/prompt", map[string]any{"request": adderRequest()})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := decode[struct {
		Prompt string   `json:"prompt"`
		Badges []string `json:"badges"`
	}](t, w)
	if !strings.Contains(body.Prompt, "Circuit Description:\n8-bit adder\n") {
		t.Errorf("prompt missing description:\n%s", body.Prompt)
	}
	if len(body.Badges) != 3 || body.Badges[0] != "Circuit: Specified" {
		t.Errorf("badges = %v", body.Badges)
	}
}

func TestPrompt_BadJSON(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/api/prompt", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if got := decode[errorBody](t, w).Error.Code; got != ErrCodeBadRequest {
		t.Errorf("code = %q, want %q", got, ErrCodeBadRequest)
	}
}

func TestExtract(t *testing.T) {
	f := newFixture(t)
	resp := "MODULE_CODE_START\nmodule m; endmodule\nMODULE_CODE_END\nTESTBENCH_CODE_START\nmodule tb; endmodule\nTESTBENCH_CODE_END"
	w := f.do(t, http.MethodPost, "/api/extract", map[string]string{"response": resp})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := decode[map[string]string](t, w)
	if body["module_code"] != "module m; endmodule" || body["testbench_code"] != "module tb; endmodule" {
		t.Errorf("body = %v", body)
	}
	if body["strategy"] != "markers" {
		t.Errorf("strategy = %q, want markers", body["strategy"])
	}
}

func TestGenerate_Success(t *testing.T) {
	f := newFixture(t)
	f.provider.response = "```verilog\nmodule m; endmodule\n```\n```verilog\nmodule tb; endmodule\n```"
	if err := f.sess.SetAPIKey(context.Background(), "groq", "gsk-test"); err != nil {
		t.Fatal(err)
	}

	w := f.do(t, http.MethodPost, "/api/generate", map[string]any{"request": adderRequest()})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	got := decode[resultBody](t, w).Result
	if got.Source != model.SourceGenerated || got.ModuleCode != "module m; endmodule" {
		t.Errorf("result = %+v", got)
	}
	if got.Provider != "groq" || got.Model != "llama3-8b-8192" {
		t.Errorf("target = %s/%s, want defaults", got.Provider, got.Model)
	}

	if _, err := f.store.GetResult(context.Background(), got.ID); err != nil {
		t.Errorf("result not stored: %v", err)
	}
}

func TestGenerate_ValidationError(t *testing.T) {
	f := newFixture(t)
	req := adderRequest()
	req.CircuitDescription = "  "

	w := f.do(t, http.MethodPost, "/api/generate", map[string]any{"request": req})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	apiErr := decode[errorBody](t, w).Error
	if apiErr.Code != ErrCodeValidation || apiErr.Field != "circuit_description" {
		t.Errorf("error = %+v", apiErr)
	}
}

func TestGenerate_MissingKey(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/api/generate", map[string]any{"request": adderRequest(), "provider": "groq"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if got := decode[errorBody](t, w).Error.Field; got != "api_key" {
		t.Errorf("field = %q, want api_key", got)
	}
}

func TestGenerate_ProviderError(t *testing.T) {
	f := newFixture(t)
	f.provider.err = &model.HTTPError{StatusCode: 401, Err: errors.New("invalid API key for groq")}
	if err := f.sess.SetAPIKey(context.Background(), "groq", "bad"); err != nil {
		t.Fatal(err)
	}

	w := f.do(t, http.MethodPost, "/api/generate", map[string]any{"request": adderRequest()})
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
	body := decode[resultBody](t, w)
	if body.Result.Source != model.SourceError {
		t.Errorf("source = %q, want error", body.Result.Source)
	}
	if body.Error == nil || body.Error.Message != "invalid API key for groq" {
		t.Errorf("error = %+v", body.Error)
	}
}

func TestGenerate_RecordsMetrics(t *testing.T) {
	f := newFixture(t)
	f.provider.err = ai.ErrEmptyResponse
	if err := f.sess.SetAPIKey(context.Background(), "groq", "gsk-test"); err != nil {
		t.Fatal(err)
	}
	if w := f.do(t, http.MethodPost, "/api/generate", map[string]any{"request": adderRequest()}); w.Code != http.StatusOK {
		t.Fatalf("generate status = %d", w.Code)
	}

	w := f.do(t, http.MethodGet, "/metrics", nil)
	want := `verigen_generations_total{provider="groq",source="offline"} 1`
	if !strings.Contains(w.Body.String(), want) {
		t.Errorf("metrics missing %q:\n%s", want, w.Body.String())
	}
}

func TestResults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		r := model.Result{ID: id, Source: model.SourceGenerated, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := f.store.SaveResult(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	w := f.do(t, http.MethodGet, "/api/results?limit=2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	list := decode[struct {
		Results []model.Result `json:"results"`
	}](t, w).Results
	if len(list) != 2 || list[0].ID != "c" || list[1].ID != "b" {
		t.Errorf("results = %+v", list)
	}

	if w := f.do(t, http.MethodGet, "/api/results?limit=x", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", w.Code)
	}

	w = f.do(t, http.MethodGet, "/api/results/b", nil)
	if got := decode[resultBody](t, w).Result.ID; got != "b" {
		t.Errorf("get id = %q, want b", got)
	}

	w = f.do(t, http.MethodGet, "/api/results/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing status = %d, want 404", w.Code)
	}
}

func TestLatestResult(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if w := f.do(t, http.MethodGet, "/api/results/latest", nil); w.Code != http.StatusNotFound {
		t.Fatalf("empty status = %d, want 404", w.Code)
	}

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	_ = f.store.SaveResult(ctx, model.Result{ID: "old", CreatedAt: base})
	_ = f.store.SaveResult(ctx, model.Result{ID: "new", CreatedAt: base.Add(time.Hour)})

	w := f.do(t, http.MethodGet, "/api/results/latest", nil)
	if got := decode[resultBody](t, w).Result.ID; got != "new" {
		t.Errorf("latest without pointer = %q, want new", got)
	}

	if err := f.sess.SetLatestResult(ctx, "old"); err != nil {
		t.Fatal(err)
	}
	w = f.do(t, http.MethodGet, "/api/results/latest", nil)
	if got := decode[resultBody](t, w).Result.ID; got != "old" {
		t.Errorf("latest with pointer = %q, want old", got)
	}
}

func TestKeys(t *testing.T) {
	f := newFixture(t)

	if w := f.do(t, http.MethodPut, "/api/keys/groq", map[string]string{"api_key": " gsk-1 "}); w.Code != http.StatusNoContent {
		t.Fatalf("put status = %d", w.Code)
	}
	if w := f.do(t, http.MethodPut, "/api/keys/groq", map[string]string{"api_key": "  "}); w.Code != http.StatusBadRequest {
		t.Errorf("blank key status = %d, want 400", w.Code)
	}
	if w := f.do(t, http.MethodPut, "/api/keys/acme", map[string]string{"api_key": "k"}); w.Code != http.StatusNotFound {
		t.Errorf("unknown provider status = %d, want 404", w.Code)
	}

	w := f.do(t, http.MethodGet, "/api/keys", nil)
	if strings.Contains(w.Body.String(), "gsk-1") {
		t.Fatal("key value leaked in listing")
	}
	names := decode[struct {
		Providers []string `json:"providers"`
	}](t, w).Providers
	if len(names) != 1 || names[0] != "groq" {
		t.Errorf("providers = %v", names)
	}

	if w := f.do(t, http.MethodDelete, "/api/keys/groq", nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}
	if _, ok, _ := f.sess.APIKey(context.Background(), "groq"); ok {
		t.Error("key still present after delete")
	}
}

func TestDraft(t *testing.T) {
	f := newFixture(t)

	if w := f.do(t, http.MethodGet, "/api/draft", nil); w.Code != http.StatusNotFound {
		t.Fatalf("empty draft status = %d, want 404", w.Code)
	}

	draft := session.Draft{Request: adderRequest(), Provider: "openai", Model: "gpt-4o"}
	if w := f.do(t, http.MethodPut, "/api/draft", draft); w.Code != http.StatusNoContent {
		t.Fatalf("put status = %d", w.Code)
	}

	w := f.do(t, http.MethodGet, "/api/draft", nil)
	got := decode[struct {
		Draft session.Draft `json:"draft"`
	}](t, w).Draft
	if got.Provider != "openai" || got.Request.CircuitDescription != "8-bit adder" {
		t.Errorf("draft = %+v", got)
	}

	if w := f.do(t, http.MethodDelete, "/api/draft", nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}
	if w := f.do(t, http.MethodGet, "/api/draft", nil); w.Code != http.StatusNotFound {
		t.Errorf("after clear status = %d, want 404", w.Code)
	}
}
