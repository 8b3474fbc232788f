package media

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

type cloudinaryResponse struct {
	SecureURL string `json:"secure_url"`
}

type cloudinaryError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// CloudinaryUploader performs unsigned multipart uploads with an upload preset.
type CloudinaryUploader struct {
	client    *resty.Client
	uploadURL string
	preset    string
	apiKey    string
}

func NewCloudinaryUploader(uploadURL, preset, apiKey string) *CloudinaryUploader {
	return &CloudinaryUploader{
		client: resty.New().
			SetTimeout(5 * time.Minute).
			SetRetryCount(0),
		uploadURL: uploadURL,
		preset:    preset,
		apiKey:    apiKey,
	}
}

func (u *CloudinaryUploader) Upload(ctx context.Context, f File) (string, error) {
	if f.Reader == nil {
		return "", ErrEmptyFile
	}

	resp, err := u.client.R().
		SetContext(ctx).
		SetFileReader("file", f.Name, f.Reader).
		SetFormData(map[string]string{
			"upload_preset": u.preset,
			"api_key":       u.apiKey,
		}).
		Post(u.uploadURL)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}

	if !resp.IsSuccess() {
		msg := GenericUploadMessage
		var body cloudinaryError
		if json.Unmarshal(resp.Body(), &body) == nil && body.Error.Message != "" {
			msg = body.Error.Message
		}
		return "", &UploadError{StatusCode: resp.StatusCode(), Message: msg}
	}

	var out cloudinaryResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if out.SecureURL == "" {
		return "", fmt.Errorf("upload response has no secure_url")
	}
	return out.SecureURL, nil
}
