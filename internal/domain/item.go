package domain

import (
	"fmt"
	"strings"
	"time"
)

type ObjectType string

const (
	ObjectArtwork   ObjectType = "Artwork"
	ObjectFurniture ObjectType = "Furniture"
	ObjectCrate     ObjectType = "Crate"
	ObjectCarton    ObjectType = "Carton"
	ObjectPackage   ObjectType = "Package"
)

// ObjectTypes lists every object type in display order.
var ObjectTypes = []ObjectType{ObjectArtwork, ObjectFurniture, ObjectCrate, ObjectCarton, ObjectPackage}

func (t ObjectType) Valid() bool {
	switch t {
	case ObjectArtwork, ObjectFurniture, ObjectCrate, ObjectCarton, ObjectPackage:
		return true
	}
	return false
}

// ParseObjectType matches s against the object type names, ignoring case.
func ParseObjectType(s string) (ObjectType, error) {
	for _, t := range ObjectTypes {
		if strings.EqualFold(strings.TrimSpace(s), string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: unknown object type %q", ErrInvalidVariantFields, s)
}

type StorageType string

const (
	StorageClimate    StorageType = "Climate"
	StorageNotClimate StorageType = "Not Climate"
)

func (t StorageType) Valid() bool {
	return t == StorageClimate || t == StorageNotClimate
}

// ParseStorageType accepts "climate" and the spellings "not climate",
// "not-climate", "not_climate" and "notclimate", ignoring case.
func ParseStorageType(s string) (StorageType, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(norm)
	switch norm {
	case "climate":
		return StorageClimate, nil
	case "notclimate":
		return StorageNotClimate, nil
	}
	return "", fmt.Errorf("%w: unknown storage type %q", ErrInvalidVariantFields, s)
}

// Medium is open-ended; Painting and Sculpture are the predefined choices.
type Medium string

const (
	MediumPainting  Medium = "Painting"
	MediumSculpture Medium = "Sculpture"
)

// Details is the variant-specific payload of a catalog item. Only the types in
// this package implement it.
type Details interface {
	isDetails()
}

type ArtworkDetails struct {
	Title      string
	ArtistName string
	Medium     Medium
}

type FurnitureDetails struct {
	Description string
}

// ContainerDetails describes a Crate, Carton or Package.
type ContainerDetails struct {
	Dimensions string
	Contents   string
}

func (ArtworkDetails) isDetails()   {}
func (FurnitureDetails) isDetails() {}
func (ContainerDetails) isDetails() {}

// Common holds the fields every object type carries.
type Common struct {
	Storage         StorageType
	StorageLocation string
	Date            time.Time
}

type CatalogItem struct {
	ID           int64
	CollectionID int64
	Type         ObjectType
	Common
	Details   Details
	Photos    []*PhotoAssociation
	CreatedAt time.Time
}

// NewCatalogItem builds an unsaved item, rejecting details whose shape does not
// match objectType. The date is reduced to its UTC calendar day.
func NewCatalogItem(collectionID int64, objectType ObjectType, common Common, details Details) (*CatalogItem, error) {
	if !objectType.Valid() {
		return nil, fmt.Errorf("%w: unknown object type %q", ErrInvalidVariantFields, objectType)
	}
	if !common.Storage.Valid() {
		return nil, fmt.Errorf("%w: unknown storage type %q", ErrInvalidVariantFields, common.Storage)
	}
	if err := checkDetails(objectType, details); err != nil {
		return nil, err
	}

	common.StorageLocation = strings.TrimSpace(common.StorageLocation)
	common.Date = TruncateDate(common.Date)

	return &CatalogItem{
		CollectionID: collectionID,
		Type:         objectType,
		Common:       common,
		Details:      details,
	}, nil
}

func checkDetails(objectType ObjectType, details Details) error {
	switch d := details.(type) {
	case ArtworkDetails:
		if objectType != ObjectArtwork {
			return fmt.Errorf("%w: artwork fields given for %s", ErrInvalidVariantFields, objectType)
		}
		if strings.TrimSpace(string(d.Medium)) == "" {
			return fmt.Errorf("%w: artwork medium is required", ErrInvalidVariantFields)
		}
	case FurnitureDetails:
		if objectType != ObjectFurniture {
			return fmt.Errorf("%w: furniture fields given for %s", ErrInvalidVariantFields, objectType)
		}
	case ContainerDetails:
		if !objectType.IsContainer() {
			return fmt.Errorf("%w: container fields given for %s", ErrInvalidVariantFields, objectType)
		}
	case nil:
		return fmt.Errorf("%w: missing fields for %s", ErrInvalidVariantFields, objectType)
	default:
		return fmt.Errorf("%w: unsupported fields %T", ErrInvalidVariantFields, details)
	}
	return nil
}

// IsContainer reports whether t carries ContainerDetails.
func (t ObjectType) IsContainer() bool {
	return t == ObjectCrate || t == ObjectCarton || t == ObjectPackage
}

// TruncateDate returns midnight UTC of t's calendar day.
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// The accessors below report ok=false when the field does not apply to the
// item's object type.

func (i *CatalogItem) Title() (string, bool) {
	d, ok := i.Details.(ArtworkDetails)
	return d.Title, ok
}

func (i *CatalogItem) ArtistName() (string, bool) {
	d, ok := i.Details.(ArtworkDetails)
	return d.ArtistName, ok
}

func (i *CatalogItem) Medium() (Medium, bool) {
	d, ok := i.Details.(ArtworkDetails)
	return d.Medium, ok
}

func (i *CatalogItem) Description() (string, bool) {
	d, ok := i.Details.(FurnitureDetails)
	return d.Description, ok
}

func (i *CatalogItem) Dimensions() (string, bool) {
	d, ok := i.Details.(ContainerDetails)
	return d.Dimensions, ok
}

func (i *CatalogItem) Contents() (string, bool) {
	d, ok := i.Details.(ContainerDetails)
	return d.Contents, ok
}

// DisplayName is the primary listing line for an item.
func (i *CatalogItem) DisplayName() string {
	switch d := i.Details.(type) {
	case ArtworkDetails:
		return orDefault(d.Title, "Untitled Artwork")
	case FurnitureDetails:
		return orDefault(d.Description, "Furniture")
	case ContainerDetails:
		return string(i.Type)
	}
	return "Object"
}

// Subtitle is the secondary listing line for an item.
func (i *CatalogItem) Subtitle() string {
	switch d := i.Details.(type) {
	case ArtworkDetails:
		return "Artist: " + orDefault(d.ArtistName, "Unknown")
	case FurnitureDetails:
		return orDefault(d.Description, "N/A")
	case ContainerDetails:
		return "Contents: " + orDefault(d.Contents, "N/A")
	}
	return ""
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
