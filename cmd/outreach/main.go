// Command outreach runs the outreach email service and its maintenance tasks.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "outreach",
		Short:         "Scheduled outreach email service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default ./config.yaml)")

	cfgPath := func() string { return configPath }
	root.AddCommand(
		newServeCmd(cfgPath),
		newBatchCmd(cfgPath),
		newSendCmd(cfgPath),
		newMigrateCmd(cfgPath),
	)
	return root
}
