package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-agentsite"
	"github.com/goliatone/go-agentsite/internal/prompt"
	"github.com/goliatone/go-agentsite/pkg/submission"
)

func fillCmd(a *app) *cobra.Command {
	var (
		flags  fieldsFlags
		invoke string
	)
	cmd := &cobra.Command{
		Use:   "fill <openapi file or url>",
		Short: "Prompt for an agent's form fields and print or send the request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(cmd, a, args[0])
			if err != nil {
				return err
			}
			_, descriptors, err := agentsite.Fields(cmd.Context(), req)
			if err != nil {
				return err
			}

			form, err := prompt.NewForm(prompt.NewSurveyDriver())
			if err != nil {
				return err
			}
			flat, err := form.Fill(cmd.Context(), descriptors)
			if errors.Is(err, prompt.ErrAborted) {
				fmt.Fprintln(cmd.ErrOrStderr(), "aborted")
				return nil
			}
			if err != nil {
				return err
			}
			values, err := submission.Build(flat, descriptors)
			if err != nil {
				return err
			}

			if invoke == "" {
				return printJSON(cmd.OutOrStdout(), values)
			}
			raw, err := a.agentClient().Invoke(cmd.Context(), invoke, values)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(append(raw, '\n'))
			return err
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&invoke, "invoke", "", "send the answers to this agent instead of printing them")
	return cmd
}
