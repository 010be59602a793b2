package main

import (
	"fmt"

	"github.com/marmos91/embedhttp/pkg/config"
	"github.com/marmos91/embedhttp/pkg/docs"
	"github.com/spf13/cobra"
)

var docsFormat string

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Print the documentation tree of the configured endpoints",
	Long: `Build the configured endpoints without serving them and print their
documentation tree, the same document a docs endpoint returns.`,
	RunE: runDocs,
}

func init() {
	docsCmd.Flags().StringVar(&docsFormat, "format", "yaml", "Output format: yaml or json")
	rootCmd.AddCommand(docsCmd)
}

func runDocs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Object and keys endpoints need their stores to be built.
	reg, err := config.InitializeRegistry(cmd.Context(), cfg, nil)
	if err != nil {
		return err
	}
	defer func() { _ = reg.CloseAll() }()

	srv, err := config.CreateServer(cfg, reg, nil)
	if err != nil {
		return err
	}

	out, err := docs.Render(docs.Generate(srv.Services()), docsFormat)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
