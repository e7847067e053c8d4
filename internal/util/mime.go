package util

import (
	"bufio"
	"io"
	"net/http"
	"strings"
)

const sniffLen = 512

// SniffMIME detects the content type from the first bytes of r and returns a
// reader that still yields the full content.
func SniffMIME(r io.Reader) (string, io.Reader, error) {
	buffered := bufio.NewReaderSize(r, sniffLen)
	head, err := buffered.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return "", nil, err
	}
	return http.DetectContentType(head), buffered, nil
}

func IsImageMIME(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "image/")
}

// IsDecodableImage reports whether NormalizeAvatar can decode the type.
func IsDecodableImage(mimeType string) bool {
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case "image/jpeg", "image/png", "image/gif", "image/webp", "image/bmp", "image/tiff":
		return true
	default:
		return false
	}
}
