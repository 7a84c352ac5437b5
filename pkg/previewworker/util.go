package previewworker

import (
	"io"

	"github.com/google/uuid"

	"github.com/Chronolens/chronolens/pkg/blobstore"
)

func readAll(obj blobstore.Object) ([]byte, error) {
	return io.ReadAll(obj.Body)
}

func parseMediaID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}
