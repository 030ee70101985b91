package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vbonduro/artcatalog/internal/domain"
	"github.com/vbonduro/artcatalog/internal/photoload"
	"github.com/vbonduro/artcatalog/internal/service"
)

const dateLayout = "2006-01-02"

func newObjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "object",
		Aliases: []string{"objects", "item"},
		Short:   "Manage the objects in a collection",
	}

	cmd.AddCommand(newObjectAddCmd())
	cmd.AddCommand(newObjectListCmd())
	cmd.AddCommand(newObjectShowCmd())
	cmd.AddCommand(newObjectDeleteCmd())

	return cmd
}

type objectFlags struct {
	objectType  string
	title       string
	artist      string
	medium      string
	description string
	dimensions  string
	contents    string
	storage     string
	location    string
	date        string
	photos      []string
}

// request turns the flags into a service request. Flags that do not belong to
// the chosen object type are rejected.
func (f *objectFlags) request(cmd *cobra.Command) (service.NewItemRequest, error) {
	objectType, err := domain.ParseObjectType(f.objectType)
	if err != nil {
		return service.NewItemRequest{}, err
	}
	storage, err := domain.ParseStorageType(f.storage)
	if err != nil {
		return service.NewItemRequest{}, err
	}
	date := time.Now()
	if f.date != "" {
		date, err = time.Parse(dateLayout, f.date)
		if err != nil {
			return service.NewItemRequest{}, fmt.Errorf("invalid --date %q, want YYYY-MM-DD", f.date)
		}
	}

	allowed := map[domain.ObjectType][]string{
		domain.ObjectArtwork:   {"title", "artist", "medium"},
		domain.ObjectFurniture: {"description"},
	}
	fieldFlags := []string{"title", "artist", "medium", "description", "dimensions", "contents"}
	ok := allowed[objectType]
	if objectType.IsContainer() {
		ok = []string{"dimensions", "contents"}
	}
	for _, name := range fieldFlags {
		if cmd.Flags().Changed(name) && !contains(ok, name) {
			return service.NewItemRequest{}, fmt.Errorf("%w: --%s does not apply to %s", domain.ErrInvalidVariantFields, name, objectType)
		}
	}

	var details domain.Details
	switch {
	case objectType == domain.ObjectArtwork:
		details = domain.ArtworkDetails{Title: f.title, ArtistName: f.artist, Medium: parseMedium(f.medium)}
	case objectType == domain.ObjectFurniture:
		details = domain.FurnitureDetails{Description: f.description}
	default:
		details = domain.ContainerDetails{Dimensions: f.dimensions, Contents: f.contents}
	}

	return service.NewItemRequest{
		Type:    objectType,
		Common:  domain.Common{Storage: storage, StorageLocation: f.location, Date: date},
		Details: details,
	}, nil
}

func parseMedium(s string) domain.Medium {
	s = strings.TrimSpace(s)
	for _, m := range []domain.Medium{domain.MediumPainting, domain.MediumSculpture} {
		if strings.EqualFold(s, string(m)) {
			return m
		}
	}
	return domain.Medium(s)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func newObjectAddCmd() *cobra.Command {
	var f objectFlags

	cmd := &cobra.Command{
		Use:   "add <collection-id>",
		Short: "Add an object to a collection",
		Example: `  # An artwork with two photos
  artcatalog object add 1 --type artwork --title "Starry Night" --artist "Van Gogh" \
    --medium painting --storage climate --location "Vault 3" --photo front.jpg --photo back.jpg

  # A crate
  artcatalog object add 1 --type crate --dimensions 120x90x40 --contents "Frames" --storage "not climate"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			collectionID, err := parseID(args[0])
			if err != nil {
				return err
			}
			req, err := f.request(cmd)
			if err != nil {
				return err
			}
			if len(f.photos) > domain.MaxPhotosPerItem {
				return fmt.Errorf("%w: %d photos given, at most %d allowed", domain.ErrPhotoLimitExceeded, len(f.photos), domain.MaxPhotosPerItem)
			}

			return withService(cmd, func(ctx context.Context, e *env) error {
				uploads, err := photoload.Load(ctx, f.photos, photoload.Options{
					Concurrency:  e.cfg.PhotoLoadConcurrency,
					MaxDimension: e.cfg.PhotoMaxDimension,
				})
				if err != nil {
					return err
				}
				item, err := e.svc.CreateCatalogItem(ctx, collectionID, req, uploads)
				if err != nil {
					return err
				}
				return printItem(cmd.OutOrStdout(), item)
			})
		},
	}

	cmd.Flags().StringVar(&f.objectType, "type", "", "Object type: artwork, furniture, crate, carton or package")
	cmd.Flags().StringVar(&f.title, "title", "", "Artwork title")
	cmd.Flags().StringVar(&f.artist, "artist", "", "Artwork artist name")
	cmd.Flags().StringVar(&f.medium, "medium", "", "Artwork medium (painting, sculpture or free text)")
	cmd.Flags().StringVar(&f.description, "description", "", "Furniture description")
	cmd.Flags().StringVar(&f.dimensions, "dimensions", "", "Container dimensions")
	cmd.Flags().StringVar(&f.contents, "contents", "", "Container contents")
	cmd.Flags().StringVar(&f.storage, "storage", "climate", `Storage type: "climate" or "not climate"`)
	cmd.Flags().StringVar(&f.location, "location", "", "Storage location")
	cmd.Flags().StringVar(&f.date, "date", "", "Date as YYYY-MM-DD (defaults to today)")
	cmd.Flags().StringArrayVar(&f.photos, "photo", nil, "Photo file to attach (repeatable, at most 5)")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func newObjectListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <collection-id>",
		Short: "List the objects of a collection by date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			collectionID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withService(cmd, func(ctx context.Context, e *env) error {
				items, err := e.svc.ListItems(ctx, collectionID)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				_, _ = fmt.Fprintln(w, "ID\tTYPE\tNAME\tDETAIL\tDATE\tPHOTOS")
				for _, item := range items {
					_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\n",
						item.ID, item.Type, item.DisplayName(), item.Subtitle(), item.Date.Format(dateLayout), len(item.Photos))
				}
				return w.Flush()
			})
		},
	}
}

func newObjectShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <object-id>",
		Short: "Show one object with its photos",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withService(cmd, func(ctx context.Context, e *env) error {
				item, err := e.svc.GetItem(ctx, id)
				if err != nil {
					return err
				}
				return printItem(cmd.OutOrStdout(), item)
			})
		},
	}
}

func newObjectDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <object-id>",
		Short: "Delete an object and its photos",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withService(cmd, func(ctx context.Context, e *env) error {
				return e.svc.DeleteItem(ctx, id)
			})
		},
	}
}

func printItem(out io.Writer, item *domain.CatalogItem) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "ID:\t%d\n", item.ID)
	_, _ = fmt.Fprintf(w, "Collection:\t%d\n", item.CollectionID)
	_, _ = fmt.Fprintf(w, "Type:\t%s\n", item.Type)
	_, _ = fmt.Fprintf(w, "Name:\t%s\n", item.DisplayName())
	_, _ = fmt.Fprintf(w, "Detail:\t%s\n", item.Subtitle())
	if m, ok := item.Medium(); ok && m != "" {
		_, _ = fmt.Fprintf(w, "Medium:\t%s\n", m)
	}
	if d, ok := item.Description(); ok && d != "" {
		_, _ = fmt.Fprintf(w, "Description:\t%s\n", d)
	}
	if d, ok := item.Dimensions(); ok && d != "" {
		_, _ = fmt.Fprintf(w, "Dimensions:\t%s\n", d)
	}
	_, _ = fmt.Fprintf(w, "Storage:\t%s\n", item.Storage)
	if item.StorageLocation != "" {
		_, _ = fmt.Fprintf(w, "Location:\t%s\n", item.StorageLocation)
	}
	_, _ = fmt.Fprintf(w, "Date:\t%s\n", item.Date.Format(dateLayout))
	for _, p := range item.Photos {
		_, _ = fmt.Fprintf(w, "Photo %d:\t%s\n", p.Position+1, p.ImageID)
	}
	return w.Flush()
}
