// Package agentapi talks to NeuralSeek: it creates agents from a prompt and
// invokes existing agents through the maistro endpoint. Failures are
// reported with the sentinel errors in errors.go.
package agentapi
