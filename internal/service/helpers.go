package service

import "strings"

// storedPathFromURL recovers the relative upload path from a public URL.
func storedPathFromURL(url string) string {
	idx := strings.Index(url, "/public/")
	if idx < 0 {
		return ""
	}
	return url[idx+len("/public/"):]
}
