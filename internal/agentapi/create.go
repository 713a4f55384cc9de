package agentapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Agent is the result of an agent creation call. NTL holds the returned
// script, which may itself be an OpenAPI document or a UI plan in JSON.
type Agent struct {
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	NTL          string          `json:"ntl"`
	Capabilities []string        `json:"capabilities"`
	Raw          json.RawMessage `json:"neuralSeekRaw,omitempty"`
}

// CreateRequest is the creation payload.
type CreateRequest struct {
	Prompt  string `json:"prompt"`
	Context string `json:"context,omitempty"`
}

type createResponse struct {
	AgentName    string          `json:"agent_name"`
	Description  string          `json:"description"`
	NTLScript    json.RawMessage `json:"ntl_script"`
	Capabilities json.RawMessage `json:"capabilities"`
}

// Create asks NeuralSeek for a new agent. The returned Agent carries the raw
// response whenever one was received, even alongside an error, so callers can
// surface it. A response without a script yields ErrNoScript.
func (c *Client) Create(ctx context.Context, req CreateRequest) (Agent, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return Agent{}, fmt.Errorf("agentapi: prompt is required")
	}

	body, err := c.post(ctx, c.cfg.URL, "x-api-key", req)
	if err != nil {
		return Agent{}, err
	}

	agent := Agent{Raw: rawBody(body), Capabilities: []string{}}
	var resp createResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return agent, fmt.Errorf("%w: decode agent: %v", ErrBadResponse, err)
	}

	agent.Name = resp.AgentName
	agent.Description = resp.Description
	agent.NTL = scriptText(resp.NTLScript)
	if caps, ok := stringList(resp.Capabilities); ok {
		agent.Capabilities = caps
	} else if agent.NTL != "" {
		agent.Capabilities = ExtractCapabilities(agent.NTL)
	}

	if agent.NTL == "" {
		return agent, ErrNoScript
	}
	c.logger.Debug("agent created", "agent", agent.Name, "capabilities", len(agent.Capabilities))
	return agent, nil
}

// rawBody keeps the response as JSON, quoting it when the server sent
// something else.
func rawBody(body []byte) json.RawMessage {
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	quoted, _ := json.Marshal(string(body))
	return quoted
}

// scriptText accepts the script as a JSON string or as an embedded JSON
// document.
func scriptText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return string(trimmed)
}

func stringList(raw json.RawMessage) ([]string, bool) {
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out, true
}

var capabilitiesPattern = regexp.MustCompile(`(?i)capabilities\s*[:=]\s*\[(.*?)\]`)

// ExtractCapabilities reads a capability list out of an NTL script. JSON
// scripts with a capabilities array return it; other scripts are scanned for
// a `capabilities: [...]` literal. Anything else yields an empty list.
func ExtractCapabilities(ntl string) []string {
	var doc struct {
		Capabilities json.RawMessage `json:"capabilities"`
	}
	if err := json.Unmarshal([]byte(ntl), &doc); err == nil {
		if caps, ok := stringList(doc.Capabilities); ok {
			return caps
		}
		return []string{}
	}

	match := capabilitiesPattern.FindStringSubmatch(ntl)
	if len(match) < 2 {
		return []string{}
	}
	out := []string{}
	for _, part := range strings.Split(match[1], ",") {
		cleaned := strings.Map(func(r rune) rune {
			switch r {
			case '\'', '"', ' ', '\t', '\n', '\r':
				return -1
			}
			return r
		}, part)
		if cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}
