package domain

import "errors"

// Error kinds returned by the catalog core. Callers match them with errors.Is;
// underlying causes are wrapped alongside.
var (
	ErrNotFound               = errors.New("not found")
	ErrDuplicateRemovalNumber = errors.New("a collection with this removal number already exists")
	ErrInvalidCollection      = errors.New("invalid collection")
	ErrInvalidVariantFields   = errors.New("fields do not match object type")
	ErrPhotoLimitExceeded     = errors.New("photo limit exceeded")
	ErrStorageWrite           = errors.New("image storage write failed")
	ErrPersistenceWrite       = errors.New("catalog persistence write failed")
)
