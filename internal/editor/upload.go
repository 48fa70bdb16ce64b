package editor

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
)

// FormField is the multipart field carrying the uploaded file.
const FormField = "file"

// Upload is a file received from a multipart form.
type Upload struct {
	Name string
	Size int64
	File multipart.File
}

// ReadUpload parses the multipart body of r, refusing bodies larger than
// maxBytes plus a little form overhead. The caller must close Upload.File.
func ReadUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (*Upload, error) {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+(1<<20))
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, fmt.Errorf("%w: %w: limit is %d bytes", ErrUpload, ErrTooLarge, maxBytes)
		}
		return nil, fmt.Errorf("%w: read form: %w", ErrUpload, err)
	}
	file, header, err := r.FormFile(FormField)
	if err != nil {
		return nil, fmt.Errorf("%w: no file selected: %w", ErrUpload, err)
	}
	return &Upload{Name: header.Filename, Size: header.Size, File: file}, nil
}
