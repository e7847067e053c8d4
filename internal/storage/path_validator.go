package storage

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"go-project-hub/internal/model"
)

// PathValidator confines relative upload paths to a root directory.
type PathValidator struct {
	rootAbs string
}

func NewPathValidator(root string) (*PathValidator, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("root path cannot be empty")
	}

	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}

	return &PathValidator{rootAbs: rootAbs}, nil
}

func (v *PathValidator) RootAbs() string {
	return v.rootAbs
}

// ResolvePath maps a slash-separated relative path to an absolute path below
// the root. The root itself is never a valid target.
func (v *PathValidator) ResolvePath(rel string) (string, error) {
	normalized := strings.TrimPrefix(strings.ReplaceAll(strings.TrimSpace(rel), `\`, "/"), "/")
	if normalized == "" {
		return "", model.NewFieldError("path", "path cannot be empty")
	}

	for _, char := range normalized {
		if char == 0 || unicode.IsControl(char) {
			return "", model.NewFieldError("path", "path contains invalid characters")
		}
	}

	for _, segment := range strings.Split(normalized, "/") {
		if segment == ".." {
			return "", fmt.Errorf("path %q escapes upload root: %w", rel, model.ErrForbidden)
		}
	}

	cleanRel := filepath.Clean(filepath.FromSlash(normalized))
	if cleanRel == "." {
		return "", model.NewFieldError("path", "path cannot be empty")
	}

	resolvedAbs, err := filepath.Abs(filepath.Join(v.rootAbs, cleanRel))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}

	if !isWithinRoot(v.rootAbs, resolvedAbs) {
		return "", fmt.Errorf("path %q escapes upload root: %w", rel, model.ErrForbidden)
	}

	return resolvedAbs, nil
}

func isWithinRoot(rootAbs string, candidateAbs string) bool {
	return strings.HasPrefix(candidateAbs, rootAbs+string(filepath.Separator))
}
