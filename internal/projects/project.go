package projects

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 50

// ErrNotFound is returned when a project does not exist.
var ErrNotFound = errors.New("projects: not found")

// Project is one logged generation run.
type Project struct {
	ID                 uuid.UUID       `db:"id" json:"id"`
	Prompt             string          `db:"prompt" json:"prompt"`
	URL                string          `db:"url" json:"url"`
	NTL                json.RawMessage `db:"ntl" json:"ntl,omitempty"`
	AgentName          string          `db:"agent_name" json:"agent_name"`
	AgentCapabilities  []string        `db:"agent_capabilities" json:"agent_capabilities"`
	NeuralSeekResponse json.RawMessage `db:"neural_seek_response" json:"neural_seek_response,omitempty"`
	// GenerationTime is in milliseconds.
	GenerationTime int64     `db:"generation_time" json:"generation_time"`
	ComponentCount int       `db:"component_count" json:"component_count"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Store persists project logs.
type Store interface {
	Create(ctx context.Context, p *Project) error
	List(ctx context.Context, limit int) ([]Project, error)
	Get(ctx context.Context, id uuid.UUID) (Project, error)
}

// prepare fills generated fields before insertion.
func prepare(p *Project, now time.Time) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now.UTC()
	}
	if p.AgentCapabilities == nil {
		p.AgentCapabilities = []string{}
	}
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
