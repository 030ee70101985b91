package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newCollectionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "collection",
		Aliases: []string{"collections"},
		Short:   "Manage client collections",
	}

	cmd.AddCommand(newCollectionAddCmd())
	cmd.AddCommand(newCollectionListCmd())
	cmd.AddCommand(newCollectionDeleteCmd())

	return cmd
}

func newCollectionAddCmd() *cobra.Command {
	var clientName string
	var removalNumber string

	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Create a collection",
		Example: `  artcatalog collection add --client "Alice Smith" --removal-number R-100`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, e *env) error {
				c, err := e.svc.CreateCollection(ctx, clientName, removalNumber)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", c.ID, c.RemovalNumber, c.ClientName)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&clientName, "client", "", "Client name")
	cmd.Flags().StringVar(&removalNumber, "removal-number", "", "Removal number (unique)")
	_ = cmd.MarkFlagRequired("removal-number")
	return cmd
}

func newCollectionListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List collections, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, e *env) error {
				collections, err := e.svc.ListCollections(ctx)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				_, _ = fmt.Fprintln(w, "ID\tREMOVAL NUMBER\tCLIENT\tCREATED")
				for _, c := range collections {
					_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", c.ID, c.RemovalNumber, c.ClientName, c.CreatedAt.Format("2006-01-02"))
				}
				return w.Flush()
			})
		},
	}
}

func newCollectionDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <collection-id>",
		Short: "Delete a collection with all of its objects and photos",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withService(cmd, func(ctx context.Context, e *env) error {
				return e.svc.DeleteCollection(ctx, id)
			})
		},
	}
}
