package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-agentsite/internal/pipeline"
	"github.com/goliatone/go-agentsite/pkg/schema"
)

func generateCmd(a *app) *cobra.Command {
	var (
		req          pipeline.Request
		agentFile    string
		noNeuralSeek bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate, deploy and log one site",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if agentFile != "" {
				raw, err := os.ReadFile(agentFile)
				if err != nil {
					return fmt.Errorf("read agent file: %w", err)
				}
				if req.AgentJSON, err = agentPayload(raw); err != nil {
					return fmt.Errorf("agent file: %w", err)
				}
			}
			req.UseNeuralSeek = !noNeuralSeek

			svc, err := a.services(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer svc.close()

			res, err := svc.pipeline.Run(cmd.Context(), req)
			if err != nil {
				var stepErr *pipeline.StepError
				if errors.As(err, &stepErr) {
					return fmt.Errorf("%s step failed: %w", stepErr.Step, stepErr.Err)
				}
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&req.Prompt, "prompt", "", "what the site should do")
	cmd.Flags().StringVar(&agentFile, "agent-json", "", "agent description or OpenAPI document (JSON or YAML)")
	cmd.Flags().BoolVar(&noNeuralSeek, "no-neuralseek", false, "skip agent creation and use --agent-json")
	cmd.Flags().BoolVar(&req.SkipDeploy, "skip-deploy", false, "write the project locally without deploying")
	cmd.Flags().StringVar(&req.APIKey, "api-key", "", "OpenAI token for this run")
	_ = cmd.MarkFlagRequired("prompt")
	return cmd
}

// agentPayload passes JSON through and converts YAML documents to JSON.
func agentPayload(raw []byte) (json.RawMessage, error) {
	if json.Valid(raw) {
		return raw, nil
	}
	doc, err := schema.Parse(raw)
	if err != nil {
		return nil, err
	}
	return doc.MarshalJSON()
}
