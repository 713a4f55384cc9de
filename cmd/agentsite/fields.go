package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-agentsite"
	"github.com/goliatone/go-agentsite/pkg/fields"
	pkgopenapi "github.com/goliatone/go-agentsite/pkg/openapi"
)

type fieldsFlags struct {
	maxDepth   int
	heuristics bool
	strict     bool
}

func (f *fieldsFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.maxDepth, "max-depth", fields.DefaultMaxDepth, "object nesting to expand (-1 for unlimited)")
	cmd.Flags().BoolVar(&f.heuristics, "heuristics", false, "guess widgets from field names")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "validate the document before extraction")
}

// request merges flags over the configured field defaults.
func (f *fieldsFlags) request(cmd *cobra.Command, a *app, source string) (agentsite.FieldsRequest, error) {
	src, err := agentsite.ParseSource(source)
	if err != nil {
		return agentsite.FieldsRequest{}, err
	}
	depth := a.cfg.Fields.Depth()
	if cmd.Flags().Changed("max-depth") {
		depth = f.maxDepth
	}
	heuristics := a.cfg.Fields.Heuristics
	if cmd.Flags().Changed("heuristics") {
		heuristics = f.heuristics
	}
	loaderOptions := []pkgopenapi.LoaderOption{pkgopenapi.WithTimeout(a.cfg.NeuralSeek.Timeout.Duration)}
	if key := a.cfg.NeuralSeek.APIKey; key != "" {
		loaderOptions = append(loaderOptions, pkgopenapi.WithHeader("apikey", key))
	}
	return agentsite.FieldsRequest{
		Source:        src,
		Strict:        f.strict,
		LoaderOptions: loaderOptions,
		FieldOptions: []fields.Option{
			fields.WithMaxDepth(depth),
			fields.WithHeuristics(heuristics),
		},
	}, nil
}

func fieldsCmd(a *app) *cobra.Command {
	var flags fieldsFlags
	cmd := &cobra.Command{
		Use:   "fields <openapi file or url>",
		Short: "List the form fields of an agent's OpenAPI document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(cmd, a, args[0])
			if err != nil {
				return err
			}
			op, descriptors, err := agentsite.Fields(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"path":         op.Path,
				"operation_id": op.OperationID,
				"fields":       descriptors,
			})
		},
	}
	flags.register(cmd)
	return cmd
}
