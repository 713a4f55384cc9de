package agentapi

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
)

// Param is one maistro parameter.
type Param struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// InvokeRequest is the maistro request body.
type InvokeRequest struct {
	Agent   string         `json:"agent"`
	Params  []Param        `json:"params"`
	Options map[string]any `json:"options"`
}

// NewInvokeRequest shapes a nested submission into a maistro body. Members of
// "params" and any other top-level keys become name/value pairs sorted by
// name; "options" passes through; a submitted "agent" key is ignored.
func NewInvokeRequest(agent string, values map[string]any) InvokeRequest {
	req := InvokeRequest{Agent: agent, Params: []Param{}, Options: map[string]any{}}

	merged := map[string]any{}
	for key, value := range values {
		switch key {
		case "agent":
		case "options":
			if opts, ok := value.(map[string]any); ok {
				req.Options = opts
			}
		case "params":
			switch typed := value.(type) {
			case map[string]any:
				for k, v := range typed {
					merged[k] = v
				}
			case []any:
				for _, item := range typed {
					if p, ok := item.(map[string]any); ok {
						if name, ok := p["name"].(string); ok {
							merged[name] = p["value"]
						}
					}
				}
			}
		default:
			merged[key] = value
		}
	}

	names := make([]string, 0, len(merged))
	for name := range merged {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		req.Params = append(req.Params, Param{Name: name, Value: merged[name]})
	}
	return req
}

// Invoke runs agent with the nested submission values and returns the raw
// maistro response.
func (c *Client) Invoke(ctx context.Context, agent string, values map[string]any) (json.RawMessage, error) {
	if agent == "" {
		return nil, fmt.Errorf("agentapi: agent name is required")
	}
	body, err := c.post(ctx, c.cfg.InvokeURL, "apikey", NewInvokeRequest(agent, values))
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: invoke returned invalid JSON", ErrBadResponse)
	}
	c.logger.Debug("agent invoked", "agent", agent)
	return json.RawMessage(body), nil
}

// InvokeURL reports the configured maistro endpoint.
func (c *Client) InvokeURL() string {
	return c.cfg.InvokeURL
}
