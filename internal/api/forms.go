package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-agentsite/internal/agentapi"
	"github.com/goliatone/go-agentsite/pkg/fields"
	"github.com/goliatone/go-agentsite/pkg/openapi"
	"github.com/goliatone/go-agentsite/pkg/schema"
	"github.com/goliatone/go-agentsite/pkg/submission"
)

type fieldsRequest struct {
	// Document is an OpenAPI object, or a string holding JSON or YAML.
	Document   json.RawMessage `json:"document" validate:"required"`
	MaxDepth   *int            `json:"max_depth" validate:"omitempty,min=-1"`
	Heuristics *bool           `json:"heuristics"`
}

type fieldsResponse struct {
	Path        string              `json:"path"`
	OperationID string              `json:"operation_id"`
	Fields      []fields.Descriptor `json:"fields"`
}

type valuesRequest struct {
	Values map[string]any `json:"values" validate:"required"`
}

func (s *Server) extractFields(w http.ResponseWriter, r *http.Request) {
	var req fieldsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if msg := s.validate.check(req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	doc, err := parseDocument(req.Document)
	if err != nil {
		writeError(w, http.StatusBadRequest, "document: "+err.Error())
		return
	}

	depth, heuristics := s.fieldDefaults.MaxDepth, s.fieldDefaults.Heuristics
	if req.MaxDepth != nil {
		depth = *req.MaxDepth
	}
	if req.Heuristics != nil {
		heuristics = *req.Heuristics
	}

	located, descriptors, err := openapi.ExtractDocumentFields(doc, fields.WithMaxDepth(depth), fields.WithHeuristics(heuristics))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, fieldsResponse{
		Path:        located.Path,
		OperationID: located.OperationID,
		Fields:      descriptors,
	})
}

// parseDocument accepts the document inline or as an encoded string.
func parseDocument(raw json.RawMessage) (openapi.Document, error) {
	payload := []byte(raw)
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		payload = []byte(text)
	}
	doc, err := schema.Parse(payload)
	if err != nil {
		return openapi.Document{}, err
	}
	if doc.Kind() != schema.KindObject {
		return openapi.Document{}, errors.New("must be an object")
	}
	return openapi.NewDocument(openapi.SourceInline("request"), payload)
}

func (s *Server) nestSubmission(w http.ResponseWriter, r *http.Request) {
	nested, ok := s.nestedValues(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, nested)
}

func (s *Server) invokeAgent(w http.ResponseWriter, r *http.Request) {
	if s.invoker == nil {
		writeError(w, http.StatusServiceUnavailable, "Agent invocation is not configured")
		return
	}
	nested, ok := s.nestedValues(w, r)
	if !ok {
		return
	}

	agent := chi.URLParam(r, "name")
	out, err := s.invoker.Invoke(r.Context(), agent, nested)
	if err != nil {
		status := http.StatusBadGateway
		switch {
		case errors.Is(err, agentapi.ErrNotConfigured):
			status = http.StatusServiceUnavailable
		case errors.Is(err, agentapi.ErrTimeout):
			status = http.StatusGatewayTimeout
		}
		s.logger.Error("invoke agent", "agent", agent, "error", err)
		writeError(w, status, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

// nestedValues decodes {values} and nests dotted keys. Conflicts answer 422.
func (s *Server) nestedValues(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var req valuesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return nil, false
	}
	if msg := s.validate.check(req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return nil, false
	}
	nested, err := submission.Nest(req.Values)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, submission.ErrPathConflict) || errors.Is(err, submission.ErrInvalidPath) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err.Error())
		return nil, false
	}
	return nested, true
}
