// Package generator runs one Verilog generation: validate the request, build
// the prompt, call the provider, extract the code and record the result.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/amishk599/verigen/internal/ai"
	"github.com/amishk599/verigen/internal/catalog"
	"github.com/amishk599/verigen/internal/extract"
	"github.com/amishk599/verigen/internal/model"
	"github.com/amishk599/verigen/internal/prompt"
	"github.com/amishk599/verigen/internal/session"
)

// ProviderFactory builds the provider for a single generation.
type ProviderFactory func(ctx context.Context, target model.Target, apiKey string) (ai.LLMProvider, error)

// ValidationError reports input that must be fixed before anything is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Generator owns the generation pipeline:
// validate → save draft → prompt → provider → extract → save result.
type Generator struct {
	newProvider ProviderFactory
	session     *session.Session
	results     model.ResultStore
	timeout     time.Duration
	logger      *slog.Logger

	now   func() time.Time
	newID func() string
}

// New creates a Generator wired with all its dependencies. A zero timeout
// means no per-call deadline beyond ctx.
func New(
	newProvider ProviderFactory,
	sess *session.Session,
	results model.ResultStore,
	timeout time.Duration,
	logger *slog.Logger,
) *Generator {
	return &Generator{
		newProvider: newProvider,
		session:     sess,
		results:     results,
		timeout:     timeout,
		logger:      logger,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// Validate checks req and target the way the form does before submitting.
func Validate(req model.GenerationRequest, target model.Target) error {
	if strings.TrimSpace(req.CircuitDescription) == "" {
		return &ValidationError{Field: "circuit_description", Message: "please enter a circuit description"}
	}
	if !req.CodingStyle.Valid() {
		return &ValidationError{Field: "coding_style", Message: fmt.Sprintf("unknown coding style %q", req.CodingStyle)}
	}
	if !req.TestbenchType.Valid() {
		return &ValidationError{Field: "testbench_type", Message: fmt.Sprintf("unknown testbench type %q", req.TestbenchType)}
	}
	if target.Provider == "" {
		return &ValidationError{Field: "provider", Message: "please select an AI provider"}
	}
	if _, ok := catalog.LookupProvider(target.Provider); !ok {
		return &ValidationError{Field: "provider", Message: fmt.Sprintf("unknown provider %q", target.Provider)}
	}
	if target.Model == "" {
		return &ValidationError{Field: "model", Message: "please select a model"}
	}
	if target.Model == model.CustomModelID && strings.TrimSpace(target.CustomModel) == "" {
		return &ValidationError{Field: "custom_model", Message: "please enter a custom model name"}
	}
	return nil
}

// Generate validates the input, resolves the API key and runs the pipeline.
//
// Validation problems return a *ValidationError and no result. Once the
// provider has been called a result is always returned, even on failure: the
// error case carries placeholder code and the error is returned alongside it.
func (g *Generator) Generate(ctx context.Context, req model.GenerationRequest, target model.Target) (model.Result, error) {
	if err := Validate(req, target); err != nil {
		return model.Result{}, err
	}

	g.saveDraft(ctx, req, target)

	apiKey, ok, err := g.session.APIKey(ctx, target.Provider)
	if err != nil {
		return model.Result{}, fmt.Errorf("generate: %w", err)
	}
	if !ok {
		return model.Result{}, &ValidationError{
			Field:   "api_key",
			Message: fmt.Sprintf("please enter your %s API key", target.Provider),
		}
	}

	provider, err := g.newProvider(ctx, target, apiKey)
	if err != nil {
		return model.Result{}, fmt.Errorf("generate: create provider: %w", err)
	}

	return g.GenerateWith(ctx, provider, req, target)
}

// GenerateWith runs the pipeline against an already-built provider. It skips
// key resolution, which lets a saved response be replayed.
func (g *Generator) GenerateWith(ctx context.Context, provider ai.LLMProvider, req model.GenerationRequest, target model.Target) (model.Result, error) {
	if err := Validate(req, target); err != nil {
		return model.Result{}, err
	}

	callCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := g.now()
	raw, callErr := provider.Complete(callCtx, prompt.Build(req))

	result := model.Result{
		ID:        g.newID(),
		Provider:  target.Provider,
		Model:     target.ModelName(),
		CreatedAt: g.now().UTC(),
	}

	switch {
	case callErr == nil:
		code := extract.Artifacts(raw)
		result.ModuleCode = code.Module
		result.TestbenchCode = code.Testbench
		result.Strategy = string(code.Strategy)
		result.Description = "Generated Verilog code for: " + req.CircuitDescription
		result.Source = model.SourceGenerated
	case errors.Is(callErr, ai.ErrEmptyResponse):
		g.logger.Warn("provider returned no content, using offline result", "provider", target.Provider)
		result.ModuleCode = offlineModule
		result.TestbenchCode = offlineTestbench
		result.Description = OfflineDescription
		result.Source = model.SourceOffline
		callErr = nil
	default:
		msg := UserMessage(callErr)
		result.ModuleCode = errorModule(msg)
		result.TestbenchCode = errorTestbench
		result.Description = "Error: " + msg
		result.Source = model.SourceError
	}

	g.logger.Info("generation finished",
		"id", result.ID,
		"provider", result.Provider,
		"model", result.Model,
		"source", result.Source,
		"strategy", result.Strategy,
		"duration", g.now().Sub(start),
	)

	g.record(ctx, result)

	if callErr != nil {
		return result, fmt.Errorf("generate with %s: %w", target.Provider, callErr)
	}
	return result, nil
}

// UserMessage turns a provider failure into the text shown to the user.
func UserMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "Request timed out. The server might be overloaded."
	}
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.Err != nil {
		return httpErr.Err.Error()
	}
	if err == nil {
		return "Unknown error"
	}
	return err.Error()
}

func (g *Generator) saveDraft(ctx context.Context, req model.GenerationRequest, target model.Target) {
	draft := session.Draft{
		Request:     req,
		Provider:    target.Provider,
		Model:       target.Model,
		CustomModel: target.CustomModel,
	}
	if err := g.session.SaveDraft(ctx, draft); err != nil {
		g.logger.Warn("failed to save draft", "error", err)
	}
}

// record persists result. Failures are logged; the result is still shown.
func (g *Generator) record(ctx context.Context, result model.Result) {
	if err := g.results.SaveResult(ctx, result); err != nil {
		g.logger.Error("failed to save result", "id", result.ID, "error", err)
		return
	}
	if err := g.session.SetLatestResult(ctx, result.ID); err != nil {
		g.logger.Error("failed to update latest result", "id", result.ID, "error", err)
	}
}
