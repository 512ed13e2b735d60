package screenshot

import (
	"bytes"
	"image"
	"image/jpeg"
	_ "image/png"
)

// Convert re-encodes lossless working-format bytes into format. PNG is the
// working format, so a PNG target returns data untouched whatever quality is.
// quality is handed to the JPEG encoder as is.
func Convert(data []byte, format Format, quality int) ([]byte, error) {
	if format != FormatJPEG {
		return data, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, EncodeFailed("failed to decode PNG", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, EncodeFailed("failed to encode JPEG", err)
	}
	return buf.Bytes(), nil
}
