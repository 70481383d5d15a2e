package domain

import (
	"strings"
	"time"
)

// SignedURLRequest asks for a signed upload URL for one media file.
type SignedURLRequest struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
}

// Validate checks the upload request fields.
func (r SignedURLRequest) Validate() error {
	if strings.TrimSpace(r.FileName) == "" {
		return &ValidationError{Field: "fileName", Message: "required"}
	}
	if !strings.HasPrefix(r.ContentType, "image/") && !strings.HasPrefix(r.ContentType, "video/") {
		return &ValidationError{Field: "contentType", Message: "must be an image or video type"}
	}
	return nil
}

// SignedURLResponse is the issued upload target.
type SignedURLResponse struct {
	UploadURL  string    `json:"uploadUrl"`
	ObjectPath string    `json:"objectPath"`
	ExpiresAt  time.Time `json:"expiresAt"`
}
