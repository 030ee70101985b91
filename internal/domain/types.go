package domain

import "time"

// MaxPhotosPerItem is the most photos a catalog item may carry.
const MaxPhotosPerItem = 5

type Collection struct {
	ID            int64
	ClientName    string
	RemovalNumber string
	CreatedAt     time.Time
}

// PhotoAssociation links a catalog item to one image in the photo store.
// Position is the 0-based insertion order.
type PhotoAssociation struct {
	ID            int64
	CatalogItemID int64
	ImageID       string
	Position      int
	CreatedAt     time.Time
}
