package planner

import "errors"

var (
	// ErrNoPlan means no usable plan could be derived.
	ErrNoPlan = errors.New("planner: no plan")
	// ErrEmptyCompletion means the model answered with nothing.
	ErrEmptyCompletion = errors.New("planner: empty completion")
	// ErrNoModel means a step needed the LLM but none is configured.
	ErrNoModel = errors.New("planner: no language model configured")
)
