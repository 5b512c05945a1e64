// Package form reads the cover image out of the authoring form.
package form

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

const (
	imageField      = "image"
	magicNumberSeek = 512
)

// allowedImageTypes lists the MIME types the store's upload endpoint
// accepts.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

var mimeTypeSuffix = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

var (
	ErrUnsupportedMimeType = errors.New("unsupported mime type")
	ErrNoImageUploaded     = errors.New("image not uploaded")
)

type File struct {
	Size     int64
	Data     []byte
	Suffix   string
	MimeType string
}

// ReadCoverImage extracts the uploaded cover image from a multipart
// request. The content type is sniffed from the file's magic number,
// not trusted from the request.
func ReadCoverImage(r *http.Request) (*File, error) {
	f, _, err := r.FormFile(imageField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, errors.Join(ErrNoImageUploaded, err)
	} else if err != nil {
		return nil, fmt.Errorf("getting file from form: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNoImageUploaded
	}

	contentType := http.DetectContentType(data[:min(len(data), magicNumberSeek)])
	if !allowedImageTypes[contentType] {
		return nil, fmt.Errorf("mime type %q: %w", contentType, ErrUnsupportedMimeType)
	}

	return &File{
		Size:     int64(len(data)),
		MimeType: contentType,
		Suffix:   mimeTypeSuffix[contentType],
		Data:     data,
	}, nil
}
