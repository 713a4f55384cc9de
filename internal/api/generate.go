package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-agentsite/internal/agentapi"
	"github.com/goliatone/go-agentsite/internal/pipeline"
	"github.com/goliatone/go-agentsite/internal/planner"
)

const generatedMessage = "Site generated and deployed successfully"

type generateRequest struct {
	Prompt    string          `json:"prompt" validate:"required"`
	AgentJSON json.RawMessage `json:"agent_json"`
	APIKey    string          `json:"api_key"`
	// UseNeuralSeek defaults to true when absent.
	UseNeuralSeek *bool `json:"use_neuralseek"`
}

type generateResponse struct {
	Success        bool           `json:"success"`
	URL            string         `json:"url"`
	Agent          agentapi.Agent `json:"agent"`
	NTL            planner.Plan   `json:"ntl"`
	ComponentCount int            `json:"component_count"`
	Message        string         `json:"message"`
	ProjectID      uuid.UUID      `json:"project_id"`
}

type generateFailure struct {
	Error              string          `json:"error"`
	Step               string          `json:"step"`
	Message            string          `json:"message"`
	Agent              *agentapi.Agent `json:"agent"`
	NeuralSeekResponse json.RawMessage `json:"neural_seek_response"`
}

func (s *Server) generateSite(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		writeError(w, http.StatusServiceUnavailable, "Site generation is not configured")
		return
	}

	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	req.Prompt = strings.TrimSpace(req.Prompt)
	if msg := s.validate.check(req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	useNeuralSeek := req.UseNeuralSeek == nil || *req.UseNeuralSeek
	result, err := s.runner.Run(r.Context(), pipeline.Request{
		Prompt:        req.Prompt,
		AgentJSON:     req.AgentJSON,
		APIKey:        req.APIKey,
		UseNeuralSeek: useNeuralSeek,
	})
	if err != nil {
		failure := generateFailure{Error: "Internal server error", Message: err.Error()}
		var stepErr *pipeline.StepError
		if errors.As(err, &stepErr) {
			failure.Step = stepErr.Step
			failure.Message = stepErr.Err.Error()
			failure.Agent = stepErr.Agent
			failure.NeuralSeekResponse = stepErr.NeuralSeekResponse
		}
		s.logger.Error("site generation failed", "step", failure.Step, "error", err)
		writeJSON(w, http.StatusInternalServerError, failure)
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{
		Success:        true,
		URL:            result.URL,
		Agent:          result.Agent,
		NTL:            result.Plan,
		ComponentCount: result.ComponentCount,
		Message:        generatedMessage,
		ProjectID:      result.ProjectID,
	})
}
