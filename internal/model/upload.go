package model

import (
	"io"
	"strings"
)

// Upload is one received multipart file.
type Upload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// PublicURL joins the public base (scheme://host) with a stored relative path.
func PublicURL(base string, rel string) string {
	return strings.TrimRight(base, "/") + "/public/" + strings.TrimLeft(rel, "/")
}
