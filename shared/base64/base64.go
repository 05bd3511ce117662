// Package base64 converts binary images to self-describing data URLs and back.
//
// A data URL has the form "data:<media type>;base64,<payload>" and can be used
// directly as an image source, so records can carry the encoded image as a
// plain string field.
package base64

import (
	"bytes"
	stdBase64 "encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	dataPrefix   = "data:"
	base64Marker = ";base64,"

	contentTypeOctetStream = "application/octet-stream"

	sniffLength = 512
)

var (
	ErrRead      = errors.New("failed to read binary payload")
	ErrMalformed = errors.New("malformed data url")
)

// GetContentType returns the media type embedded in a data URL, or an empty string.
func GetContentType(file string) string {
	start := len(dataPrefix)
	end := strings.Index(file, base64Marker)

	if end == -1 || end < start {
		return ""
	}

	return file[start:end]
}

// DetectContentType sniffs the media type from the leading bytes of data.
func DetectContentType(data []byte) string {
	return mimetype.Detect(data).String()
}

// Sniff detects the media type from the leading bytes of rs and rewinds it.
func Sniff(rs io.ReadSeeker) (string, error) {
	head := make([]byte, sniffLength)

	n, err := io.ReadFull(rs, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("%w: %w", ErrRead, err)
	}

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("%w: %w", ErrRead, err)
	}

	return DetectContentType(head[:n]), nil
}

// Encode reads r to the end and returns the data URL for it. An empty or generic
// mediaType is replaced by the sniffed one.
func Encode(r io.Reader, mediaType string) (string, error) {
	buf := bytes.NewBuffer(nil)

	if _, err := buf.ReadFrom(r); err != nil {
		return "", fmt.Errorf("%w: %w", ErrRead, err)
	}

	if mediaType == "" || mediaType == contentTypeOctetStream {
		mediaType = DetectContentType(buf.Bytes())
	}

	return EncodeBytes(buf.Bytes(), mediaType), nil
}

// EncodeBytes returns the data URL for data tagged with mediaType.
func EncodeBytes(data []byte, mediaType string) string {
	var sb strings.Builder

	sb.Grow(len(dataPrefix) + len(mediaType) + len(base64Marker) + stdBase64.StdEncoding.EncodedLen(len(data)))
	sb.WriteString(dataPrefix)
	sb.WriteString(mediaType)
	sb.WriteString(base64Marker)
	sb.WriteString(stdBase64.StdEncoding.EncodeToString(data))

	return sb.String()
}

// Decode splits a data URL into its media type and decoded payload.
func Decode(content string) (mediaType string, data []byte, err error) {
	if !strings.HasPrefix(content, dataPrefix) {
		return "", nil, fmt.Errorf("%w: missing %q prefix", ErrMalformed, dataPrefix)
	}

	mediaType = GetContentType(content)
	if mediaType == "" {
		return "", nil, fmt.Errorf("%w: missing media type", ErrMalformed)
	}

	payload := content[len(dataPrefix)+len(mediaType)+len(base64Marker):]

	data, err = stdBase64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	return mediaType, data, nil
}
