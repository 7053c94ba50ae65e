package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/keyboxhn/keybox/internal/cli/message"
	"github.com/keyboxhn/keybox/internal/cli/migrate"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "keybox",
		Short:        "KeyBox message tools",
		Long:         `Operator tools for KeyBox: database migrations and offline template rendering.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		migrate.NewCommand(),
		message.NewExtractCommand(),
		message.NewRenderCommand(),
		message.NewBulkCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
