package movie

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

const (
	maxSlugBase  = 280
	suffixLength = 8
	fallbackSlug = "movie"
)

// reservedSlugs are static routes under /movies.
var reservedSlugs = map[string]bool{
	"top": true,
}

type slugChecker interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// baseSlug derives the URL slug of a title.
func baseSlug(title string) string {
	s := slug.Make(title)
	if len(s) > maxSlugBase {
		s = strings.TrimRight(s[:maxSlugBase], "-")
	}
	if s == "" {
		s = fallbackSlug
	}
	return s
}

func withSuffix(base string) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	return base + "-" + token[:suffixLength]
}

// pickSlug returns base when free and a suffixed variant otherwise. The
// unique index is still the final word; see Service.Create.
func pickSlug(ctx context.Context, repo slugChecker, base string) (string, error) {
	if reservedSlugs[base] {
		return withSuffix(base), nil
	}
	taken, err := repo.SlugExists(ctx, base)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}
	return withSuffix(base), nil
}

func validSlug(s string) bool {
	return slug.IsSlug(s) && !reservedSlugs[s]
}
