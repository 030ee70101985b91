package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete stored photos that no object references",
		Long: `Removes images left in the photo store by interrupted deletes or failed
saves. Images still linked to an object are never touched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, e *env) error {
				removed, err := e.svc.SweepOrphans(ctx)
				if err != nil {
					return err
				}
				for _, id := range removed {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), id)
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d orphaned photos removed\n", len(removed))
				return err
			})
		},
	}
}
