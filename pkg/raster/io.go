package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Format names the container an image was decoded from or will be encoded to.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
	FormatGIF  Format = "gif"
	FormatWebP Format = "webp"
)

// FormatFromPath infers the encoder from a file extension. Unknown
// extensions fall back to PNG.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return FormatJPEG
	case ".bmp":
		return FormatBMP
	case ".tif", ".tiff":
		return FormatTIFF
	case ".gif":
		return FormatGIF
	default:
		return FormatPNG
	}
}

// Load reads and decodes an image file. JPEG EXIF orientation is applied so
// the returned samples are upright.
func Load(path string) (*Image, Format, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}
	return Decode(data)
}

// Decode decodes an in-memory encoded image.
func Decode(data []byte) (*Image, Format, error) {
	src, name, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	img := FromImage(src)
	f := Format(name)
	if f == FormatJPEG {
		if o, oerr := jpegOrientation(data); oerr == nil && o != 1 {
			img = img.Orient(o)
		}
	}
	return img, f, nil
}

// Save encodes img to path, choosing the encoder from the extension.
func Save(path string, img *Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Encode(f, img, FormatFromPath(path)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img *Image, format Format) error {
	if err := img.Validate(); err != nil {
		return err
	}
	std := img.ToImage()
	var err error
	switch format {
	case FormatJPEG:
		err = jpeg.Encode(w, std, &jpeg.Options{Quality: 92})
	case FormatBMP:
		err = bmp.Encode(w, std)
	case FormatTIFF:
		err = tiff.Encode(w, std, &tiff.Options{Compression: tiff.Deflate})
	case FormatGIF:
		err = gif.Encode(w, std, nil)
	default:
		err = png.Encode(w, std)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}
	return nil
}
