package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/amishk599/verigen/internal/catalog"
	"github.com/amishk599/verigen/internal/extract"
	"github.com/amishk599/verigen/internal/generator"
	"github.com/amishk599/verigen/internal/model"
	"github.com/amishk599/verigen/internal/prompt"
	"github.com/amishk599/verigen/internal/session"
)

const defaultResultLimit = 20

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) getCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"module_features":    catalog.ModuleFeatures,
		"testbench_features": catalog.TestbenchFeatures,
		"coding_styles":      catalog.CodingStyles,
		"testbench_types":    catalog.TestbenchTypes,
		"providers":          catalog.Providers,
		"examples":           catalog.ExampleCircuits,
		"defaults":           catalog.DefaultRequest(),
	})
}

type promptRequest struct {
	Request model.GenerationRequest `json:"request"`
}

func (s *Server) buildPrompt(c *gin.Context) {
	var body promptRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	summary := prompt.Summarize(body.Request)
	c.JSON(http.StatusOK, gin.H{
		"prompt":  prompt.Build(body.Request),
		"summary": summary,
		"badges":  summary.Badges(),
	})
}

type extractRequest struct {
	Response string `json:"response"`
}

func (s *Server) extractCode(c *gin.Context) {
	var body extractRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	code := extract.Artifacts(body.Response)
	c.JSON(http.StatusOK, gin.H{
		"module_code":    code.Module,
		"testbench_code": code.Testbench,
		"strategy":       code.Strategy,
	})
}

type generateRequest struct {
	Request     model.GenerationRequest `json:"request"`
	Provider    string                  `json:"provider"`
	Model       string                  `json:"model"`
	CustomModel string                  `json:"custom_model"`
}

func (s *Server) target(body generateRequest) model.Target {
	if body.Provider == "" {
		return s.defaults
	}
	t := model.Target{Provider: body.Provider, Model: body.Model, CustomModel: body.CustomModel}
	if t.Model == "" {
		if p, ok := catalog.LookupProvider(t.Provider); ok {
			t.Model = p.DefaultModel()
		}
	}
	return t
}

func (s *Server) generate(c *gin.Context) {
	var body generateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	target := s.target(body)

	start := time.Now()
	result, err := s.gen.Generate(c.Request.Context(), body.Request, target)

	var verr *generator.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": APIError{
			Code:    ErrCodeValidation,
			Message: verr.Message,
			Field:   verr.Field,
		}})
		return
	case err != nil && result.ID == "":
		internalError(c, err)
		return
	}

	s.metrics.observe(target.Provider, string(result.Source), time.Since(start))

	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, gin.H{
			"result": result,
			"error":  APIError{Code: ErrCodeProviderFailed, Message: generator.UserMessage(err)},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

func (s *Server) listResults(c *gin.Context) {
	limit := defaultResultLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(c, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	results, err := s.results.ListResults(c.Request.Context(), limit)
	if err != nil {
		internalError(c, err)
		return
	}
	if results == nil {
		results = []model.Result{}
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// latestResult prefers the result the session last pointed at and falls back
// to the newest stored one.
func (s *Server) latestResult(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok, err := s.sess.LatestResultID(ctx)
	if err != nil {
		internalError(c, err)
		return
	}
	var result model.Result
	if ok {
		result, err = s.results.GetResult(ctx, id)
	}
	if !ok || errors.Is(err, model.ErrNotFound) {
		result, err = s.results.LatestResult(ctx)
	}
	if errors.Is(err, model.ErrNotFound) {
		notFound(c, "no results yet")
		return
	}
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

func (s *Server) getResult(c *gin.Context) {
	id := c.Param("id")
	result, err := s.results.GetResult(c.Request.Context(), id)
	if errors.Is(err, model.ErrNotFound) {
		notFound(c, "result "+id+" not found")
		return
	}
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// listKeys reports which providers have a stored key. Key values are never
// returned.
func (s *Server) listKeys(c *gin.Context) {
	names, err := s.sess.Providers(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"providers": names})
}

type keyRequest struct {
	APIKey string `json:"api_key"`
}

func (s *Server) setKey(c *gin.Context) {
	provider := c.Param("provider")
	if _, ok := catalog.LookupProvider(provider); !ok {
		notFound(c, "unknown provider "+provider)
		return
	}
	var body keyRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	err := s.sess.SetAPIKey(c.Request.Context(), provider, body.APIKey)
	if errors.Is(err, session.ErrBlankKey) {
		badRequest(c, err.Error())
		return
	}
	if err != nil {
		internalError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) deleteKey(c *gin.Context) {
	if err := s.sess.DeleteAPIKey(c.Request.Context(), c.Param("provider")); err != nil {
		internalError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) getDraft(c *gin.Context) {
	draft, ok, err := s.sess.LoadDraft(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}
	if !ok {
		notFound(c, "no saved draft")
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": draft})
}

func (s *Server) saveDraft(c *gin.Context) {
	var draft session.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	if err := s.sess.SaveDraft(c.Request.Context(), draft); err != nil {
		internalError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) clearDraft(c *gin.Context) {
	if err := s.sess.ClearDraft(c.Request.Context()); err != nil {
		internalError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
