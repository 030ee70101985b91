package photostore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMimeTypeExtRoundTrip(t *testing.T) {
	for _, mt := range []string{"image/png", "image/gif", "image/webp", "image/jpeg"} {
		assert.Equal(t, mt, ExtToMimeType(MimeTypeToExt(mt)), mt)
	}
}

func TestUnknownMimeType(t *testing.T) {
	assert.Equal(t, ".bin", MimeTypeToExt("application/x-unknown"))
	assert.Equal(t, "application/octet-stream", ExtToMimeType(".bin"))
}
