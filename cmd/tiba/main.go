package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"tiba/internal/adapters/render"
	"tiba/internal/core/examples"
	"tiba/internal/core/version"
	"tiba/internal/platform/config"
	"tiba/internal/platform/logger"
	cmpdom "tiba/internal/services/api/compare/domain"
	cmpmod "tiba/internal/services/api/compare/module"
	wsdom "tiba/internal/services/api/workspace/domain"
)

// backends are the collaborators a command talks to
type backends struct {
	ws  wsdom.Backend
	cmp cmpdom.Backend
}

// connect builds backends from the persistent flags, swapped in tests
var connect = func(cmd *cobra.Command) backends {
	opts := render.FromConfig(config.New())
	if u, _ := cmd.Flags().GetString("backend"); u != "" {
		opts.BaseURL = u
	}
	c := render.NewClient(opts)
	return backends{ws: c, cmp: cmpmod.NewRenderBackend(c)}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tiba",
		Short: "Render behavioral analysis widgets from the command line",
		Long: `tiba drives the widget workspace in process against a rendering backend.

It loads a dataset, applies parameter edits through the same dirty/apply
gate the API uses, and prints artifact links once every widget settles.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			lvl := "warn"
			if v, _ := cmd.Flags().GetBool("verbose"); v {
				lvl = "debug"
			}
			logger.Init(logger.Options{Level: lvl, Format: "console", Service: "tiba", Writer: os.Stderr})
		},
	}

	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().Bool("verbose", false, "Log workspace activity to stderr")
	rootCmd.PersistentFlags().String("backend", "", "Rendering backend base URL (default RENDER_BASE_URL)")
	rootCmd.PersistentFlags().Duration("wait", 5*time.Minute, "How long to wait for the backend")

	rootCmd.AddCommand(
		newVersionCmd(),
		newExamplesCmd(),
		newRenderCmd(),
		newCompareCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Info()
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return writeJSON(cmd, info)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "tiba %s (%s, %s)\n", info.Version, info.Commit, info.Date)
			return nil
		},
	}
}

func newExamplesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "examples",
		Short: "List the bundled example datasets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := examples.Load()
			if err != nil {
				return err
			}
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return writeJSON(cmd, c)
			}
			for _, e := range c.Examples {
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", e.Key, e.Name)
			}
			return nil
		},
	}
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
