package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vbonduro/artcatalog/internal/photoload"
)

func newPhotoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "photo",
		Aliases: []string{"photos"},
		Short:   "Manage object photos",
	}

	cmd.AddCommand(newPhotoAttachCmd())
	cmd.AddCommand(newPhotoGetCmd())
	cmd.AddCommand(newPhotoDetachAllCmd())

	return cmd
}

func newPhotoAttachCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "attach <object-id> <file>...",
		Short: "Attach photos to an existing object",
		Long: `Attach one or more photos to an object. An object holds at most five photos;
files are attached in the order given and attaching stops at the first failure.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withService(cmd, func(ctx context.Context, e *env) error {
				uploads, err := photoload.Load(ctx, args[1:], photoload.Options{
					Concurrency:  e.cfg.PhotoLoadConcurrency,
					MaxDimension: e.cfg.PhotoMaxDimension,
				})
				if err != nil {
					return err
				}
				for i, u := range uploads {
					p, err := e.svc.AttachPhoto(ctx, itemID, u)
					if err != nil {
						return fmt.Errorf("failed to attach %s: %w", args[1+i], err)
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", p.Position+1, p.ImageID)
				}
				return nil
			})
		},
	}
}

func newPhotoGetCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "get <image-id>",
		Short: "Write a stored photo to a file or stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, e *env) error {
				data, mimeType, err := e.svc.LoadPhoto(ctx, args[0])
				if err != nil {
					return err
				}
				e.logger.Debug("photo loaded", "image_id", args[0], "mime_type", mimeType, "bytes", len(data))
				if out == "" || out == "-" {
					_, err = cmd.OutOrStdout().Write(data)
					return err
				}
				if err := os.WriteFile(out, data, 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", out, err)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file (defaults to stdout)")
	return cmd
}

func newPhotoDetachAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detach-all <object-id>",
		Short: "Remove every photo from an object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withService(cmd, func(ctx context.Context, e *env) error {
				return e.svc.DetachAll(ctx, itemID)
			})
		},
	}
}
