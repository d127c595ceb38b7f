package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"go-vision-proxy/internal/provider"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Formats Gemini accepts as inline data without conversion.
var passthroughMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Decoded is an uploaded image after validation.
type Decoded struct {
	Image   image.Image
	Format  string
	Payload *provider.Image
}

// Decoder turns raw upload bytes into a provider-ready payload.
type Decoder interface {
	Decode(data []byte) (*Decoded, error)
}

type rasterDecoder struct{}

func NewDecoder() Decoder {
	return rasterDecoder{}
}

// Decode parses data as a raster image. The returned error is the image
// package's own message so it can be shown to the client unchanged.
func (rasterDecoder) Decode(data []byte) (*Decoded, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	mime := mimetype.Detect(data).String()
	if passthroughMIME[mime] {
		return &Decoded{
			Image:   img,
			Format:  format,
			Payload: &provider.Image{Data: data, MIMEType: mime},
		}, nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to re-encode %s image as png: %w", format, err)
	}
	return &Decoded{
		Image:   img,
		Format:  format,
		Payload: &provider.Image{Data: buf.Bytes(), MIMEType: "image/png"},
	}, nil
}
