package util

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"go-project-hub/internal/model"
)

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	t.Run("replaces separators and whitespace", func(t *testing.T) {
		actual, err := SanitizeFilename(` sprint plan<2026>?.pdf `)
		require.NoError(t, err)
		require.Equal(t, "sprint_plan_2026_.pdf", actual)
	})

	t.Run("flattens directories", func(t *testing.T) {
		actual, err := SanitizeFilename(`docs/q3/report.pdf`)
		require.NoError(t, err)
		require.Equal(t, "docs_q3_report.pdf", actual)
	})

	t.Run("rejects traversal names", func(t *testing.T) {
		_, err := SanitizeFilename(`../../etc/passwd`)
		require.Error(t, err)
	})

	t.Run("rejects empty filenames", func(t *testing.T) {
		_, err := SanitizeFilename("   ")
		require.ErrorIs(t, err, model.ErrValidation)
	})

	t.Run("rejects hidden filenames", func(t *testing.T) {
		_, err := SanitizeFilename(".env")
		require.Error(t, err)
	})

	t.Run("rejects windows reserved names", func(t *testing.T) {
		_, err := SanitizeFilename("CON.txt")
		require.Error(t, err)
	})

	t.Run("strips zero-width characters", func(t *testing.T) {
		actual, err := SanitizeFilename("mock\u200Bup\u2060.png")
		require.NoError(t, err)
		require.Equal(t, "mockup.png", actual)
	})

	t.Run("truncates by rune and keeps extension", func(t *testing.T) {
		input := strings.Repeat("é", 300) + ".png"
		actual, err := SanitizeFilename(input)
		require.NoError(t, err)
		require.Len(t, []rune(actual), maxFilenameRunes)
		require.True(t, strings.HasSuffix(actual, ".png"))
		require.True(t, utf8.ValidString(actual))
	})
}

func TestReplaceExtension(t *testing.T) {
	require.Equal(t, "avatar.png", ReplaceExtension("avatar.jpeg", ".png"))
	require.Equal(t, "avatar.png", ReplaceExtension("avatar", ".png"))
	require.Equal(t, "archive.tar.png", ReplaceExtension("archive.tar.gz", ".png"))
}
