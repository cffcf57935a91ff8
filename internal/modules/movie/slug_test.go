package movie

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSlugs map[string]bool

func (f fakeSlugs) SlugExists(_ context.Context, s string) (bool, error) {
	return f[s], nil
}

func TestBaseSlug(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Test Movie", "test-movie"},
		{"  Amélie  ", "amelie"},
		{"!!!", fallbackSlug},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, baseSlug(tt.title))
		})
	}

	long := baseSlug(strings.Repeat("a ", 400))
	assert.LessOrEqual(t, len(long), maxSlugBase)
	assert.False(t, strings.HasSuffix(long, "-"))
}

func TestPickSlug(t *testing.T) {
	ctx := context.Background()

	got, err := pickSlug(ctx, fakeSlugs{}, "stalker")
	require.NoError(t, err)
	assert.Equal(t, "stalker", got)

	got, err = pickSlug(ctx, fakeSlugs{"stalker": true}, "stalker")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "stalker-"))
	assert.Len(t, got, len("stalker-")+suffixLength)
	assert.True(t, validSlug(got))
}

func TestReservedSlugGetsSuffix(t *testing.T) {
	got, err := pickSlug(context.Background(), fakeSlugs{}, baseSlug("Top"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "top-"))
	assert.Len(t, got, len("top-")+suffixLength)

	assert.False(t, validSlug("top"))
	assert.True(t, validSlug("top-gun"))
}
