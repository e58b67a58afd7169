package service

import (
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// makeSlug normalizes an explicit slug or derives one from the title. Titles
// that transliterate to nothing get a random slug.
func makeSlug(explicit, title string) (string, error) {
	source := strings.TrimSpace(explicit)
	if source == "" {
		source = title
	}
	s := slug.Make(source)
	if len(s) > 200 {
		s = strings.Trim(s[:200], "-")
	}
	if s != "" {
		return s, nil
	}

	id, err := gonanoid.Generate("abcdefghijklmnopqrstuvwxyz0123456789", 10)
	if err != nil {
		return "", fmt.Errorf("generate slug: %w", err)
	}
	return id, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
