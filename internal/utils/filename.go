package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// Characters invalid in filenames on most filesystems
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	// Whitespace characters to normalize
	whitespaceChars = regexp.MustCompile(`[\r\n\t]`)
	// Multiple spaces to collapse
	multipleSpaces = regexp.MustCompile(`\s+`)
)

// maxFilenameLength leaves room for the "_NNNpages.pdf" suffix.
const maxFilenameLength = 200

// SanitizeFilename strips characters that are invalid in filenames on
// common filesystems and collapses whitespace.
func SanitizeFilename(filename string) string {
	// Replace newlines/tabs with spaces
	filename = whitespaceChars.ReplaceAllString(filename, " ")

	// Remove invalid filename characters
	filename = invalidFilenameChars.ReplaceAllString(filename, "")

	// Collapse multiple spaces
	filename = multipleSpaces.ReplaceAllString(filename, " ")

	filename = strings.TrimSpace(filename)
	filename = strings.Trim(filename, ".")

	if len(filename) > maxFilenameLength {
		filename = strings.TrimSpace(truncateUTF8(filename, maxFilenameLength))
	}

	if filename == "" {
		filename = "Untitled"
	}

	return filename
}

// DocumentFilename names an exported book: the tab title, or the book key
// when there is no title, followed by the number of attempted pages.
func DocumentFilename(title, bookKey string, pages int) string {
	base := strings.TrimSpace(title)
	if base == "" {
		base = bookKey
	}
	return fmt.Sprintf("%s_%dpages.pdf", SanitizeFilename(base), pages)
}

func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
