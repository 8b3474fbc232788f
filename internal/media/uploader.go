// Package media sends binary assets to a hosted media endpoint and returns their public URL.
// Every upload is a single attempt; failures are returned to the caller untouched.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
)

// GenericUploadMessage is reported when the host gives no usable error message.
const GenericUploadMessage = "Upload failed"

var ErrEmptyFile = errors.New("no file to upload")

// File is one binary asset to upload.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

type Uploader interface {
	Upload(ctx context.Context, f File) (string, error)
}

// UploadError is a rejection reported by the media host.
type UploadError struct {
	StatusCode int
	Message    string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// OpenFileHeader opens a multipart upload as a File. The returned func closes it.
func OpenFileHeader(fh *multipart.FileHeader) (*File, func(), error) {
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, err
	}
	return &File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Reader:      f,
	}, func() { _ = f.Close() }, nil
}
