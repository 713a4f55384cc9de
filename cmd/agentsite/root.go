package main

import (
	"encoding/json"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-agentsite/internal/config"
	"github.com/goliatone/go-agentsite/internal/logging"
)

// app carries what every command shares once flags are parsed.
type app struct {
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
}

func RootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "agentsite",
		Short:         "Generate and deploy web front ends for NeuralSeek agents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ./config.toml)")

	root.AddCommand(
		serveCmd(a),
		generateCmd(a),
		fieldsCmd(a),
		fillCmd(a),
		migrateCmd(a),
		projectsCmd(a),
	)
	return root
}

func (a *app) load() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logging.New(cfg.Log)
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
