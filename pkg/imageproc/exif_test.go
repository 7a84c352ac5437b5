package imageproc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Chronolens/chronolens/pkg/imageproc"
)

func TestExtractMetadataRejectsSourceWithNoEXIFSegment(t *testing.T) {
	src := encodeJPEG(t, 32, 32)
	_, err := imageproc.ExtractMetadata(src)
	assert.Error(t, err)
	assert.True(t, imageproc.Unparseable.Has(err))
}
