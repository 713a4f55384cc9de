package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-agentsite/internal/agentapi"
)

// Step names, as reported to clients.
const (
	StepNeuralSeek  = "NeuralSeek agent creation"
	StepManualAgent = "Manual agent JSON"
	StepPlan        = "NTL plan generation"
	StepCodegen     = "Code generation"
	StepDeploy      = "Vercel deployment"
	StepLog         = "Project logging"
)

// StepError reports the step a run failed in, along with whatever agent
// data had been gathered by then.
type StepError struct {
	Step               string
	Err                error
	Agent              *agentapi.Agent
	NeuralSeekResponse json.RawMessage
}

func (e *StepError) Error() string {
	return fmt.Sprintf("pipeline: %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
