package apiclient

import (
	"bytes"
	"fmt"
	"mime/multipart"
)

// MultipartForm is a fully encoded multipart/form-data payload. The content
// type carries the boundary and is sent verbatim; the dispatch layer never
// rewrites it.
type MultipartForm struct {
	ContentType string
	Body        []byte
}

// NewMultipartForm encodes one file part plus optional string fields into a
// multipart/form-data payload.
func NewMultipartForm(fieldName, fileName string, file []byte, fields map[string]string) (*MultipartForm, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile(fieldName, fileName)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(file); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}

	for key, value := range fields {
		if err := w.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("write form field %q: %w", key, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}
	return &MultipartForm{ContentType: w.FormDataContentType(), Body: buf.Bytes()}, nil
}
