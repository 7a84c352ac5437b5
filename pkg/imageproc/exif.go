package imageproc

import (
	"bytes"
	"math/big"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/Chronolens/chronolens/pkg/catalog"
)

// ExtractMetadata parses EXIF from src and fills whichever of spec §4.4
// step 2's fields are present. Any field may be absent; a field that
// cannot be read leaves the corresponding pointer nil rather than
// aborting extraction of the rest. A source with no EXIF segment at all
// returns Unparseable so the caller can Term the message.
func ExtractMetadata(src []byte) (catalog.MediaMetadataFields, error) {
	x, err := exif.Decode(bytes.NewReader(src))
	if err != nil {
		return catalog.MediaMetadataFields{}, Unparseable.Wrap(err)
	}

	var fields catalog.MediaMetadataFields

	// GPS: goexif's LatLong already performs the (deg,min,sec)+hemisphere
	// conversion spec §4.4 step 2 describes ("W"/"S" negate).
	if lat, long, err := x.LatLong(); err == nil {
		fields.Latitude = &lat
		fields.Longitude = &long
	}

	if w := tagInt(x, exif.PixelXDimension); w != nil {
		fields.ImageWidth = w
	} else if w := tagInt(x, exif.ImageWidth); w != nil {
		fields.ImageWidth = w
	}
	if h := tagInt(x, exif.PixelYDimension); h != nil {
		fields.ImageLength = h
	} else if h := tagInt(x, exif.ImageLength); h != nil {
		fields.ImageLength = h
	}

	fields.Make = tagString(x, exif.Make)
	fields.Model = tagString(x, exif.Model)
	fields.FNumber = tagRatFloat(x, exif.FNumber)
	fields.ExposureTime = tagRatString(x, exif.ExposureTime)
	if iso := tagInt(x, exif.ISOSpeedRatings); iso != nil {
		fields.PhotographicSensitivity = iso
	} else if iso := tagInt(x, exif.PhotographicSensitivity); iso != nil {
		fields.PhotographicSensitivity = iso
	}
	fields.Orientation = tagInt(x, exif.Orientation)

	return fields, nil
}

func tagString(x *exif.Exif, name exif.FieldName) *string {
	tag, err := x.Get(name)
	if err != nil {
		return nil
	}
	s, err := tag.StringVal()
	if err != nil {
		return nil
	}
	return &s
}

func tagInt(x *exif.Exif, name exif.FieldName) *int64 {
	tag, err := x.Get(name)
	if err != nil {
		return nil
	}
	v, err := tag.Int(0)
	if err != nil {
		return nil
	}
	v64 := int64(v)
	return &v64
}

func tagRatFloat(x *exif.Exif, name exif.FieldName) *float64 {
	tag, err := x.Get(name)
	if err != nil {
		return nil
	}
	r, err := tag.Rat(0)
	if err != nil {
		return nil
	}
	f, _ := new(big.Float).SetRat(r).Float64()
	return &f
}

func tagRatString(x *exif.Exif, name exif.FieldName) *string {
	tag, err := x.Get(name)
	if err != nil {
		return nil
	}
	s := tag.String()
	return &s
}
