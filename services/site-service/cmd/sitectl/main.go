// Command sitectl runs operator tasks against the site database.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/websitekoning/koning-api/libs/config"
	"github.com/websitekoning/koning-api/libs/runtime"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sitectl",
		Short:         "Operator tasks for the site service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return config.LoadDotenv()
		},
	}

	root.AddCommand(newMigrateCmd())
	root.AddCommand(newSeedCmd())
	root.AddCommand(newSlotsCmd())
	root.AddCommand(newHashPasswordCmd())
	root.AddCommand(newTokenCmd())

	return root
}

func main() {
	ctx, stop := runtime.SignalContext()
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
