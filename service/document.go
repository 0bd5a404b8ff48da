package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// ErrDocumentTooLarge is returned when a payload exceeds the configured limit
var ErrDocumentTooLarge = errors.New("document too large")

// DocumentSource turns an uploaded payload into an opaque reference that the
// request keeps. Content is never inspected beyond its media type.
type DocumentSource interface {
	Store(ctx context.Context, key, name, contentType string, r io.Reader, size int64) (string, error)
}

// DetectContentType picks a media type from the declared type, the file
// extension and finally the first bytes of the payload.
func DetectContentType(name, declared string, head []byte) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); byExt != "" {
		return byExt
	}
	return http.DetectContentType(head)
}

// DataURLSource embeds the payload in a data: URL, keeping the document in
// memory alongside the request
type DataURLSource struct {
	maxBytes int64
}

func NewDataURLSource(maxBytes int64) *DataURLSource {
	return &DataURLSource{maxBytes: maxBytes}
}

func (s *DataURLSource) Store(_ context.Context, _, name, contentType string, r io.Reader, size int64) (string, error) {
	if s.maxBytes > 0 && size > s.maxBytes {
		return "", fmt.Errorf("%s is %d bytes: %w", name, size, ErrDocumentTooLarge)
	}

	// size may be unknown, so enforce the limit on what is actually read
	if s.maxBytes > 0 {
		r = io.LimitReader(r, s.maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return "", fmt.Errorf("%s: %w", name, ErrDocumentTooLarge)
	}

	contentType = DetectContentType(name, contentType, data)

	var buf bytes.Buffer
	buf.WriteString("data:")
	buf.WriteString(contentType)
	buf.WriteString(";base64,")
	buf.WriteString(base64.StdEncoding.EncodeToString(data))
	return buf.String(), nil
}
