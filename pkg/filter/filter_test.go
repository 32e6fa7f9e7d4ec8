package filter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cr-transcripts/pkg/domain"
	"cr-transcripts/pkg/index"
)

type mockFilter struct {
	reject string
	err    error
}

func (m *mockFilter) ShouldKeep(ctx context.Context, name string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return name != m.reject, nil
}

func TestFilterNames(t *testing.T) {
	ctx := context.Background()
	names := []string{"cr1.html", "cr2.html", "cr3.html"}

	got, err := FilterNames(ctx, names, &mockFilter{reject: "cr2.html"})
	require.NoError(t, err)
	assert.Equal(t, []string{"cr1.html", "cr3.html"}, got)

	got, err = FilterNames(ctx, names)
	require.NoError(t, err)
	assert.Equal(t, names, got)
}

func TestFilterNames_Error(t *testing.T) {
	filterErr := errors.New("boom")

	got, err := FilterNames(context.Background(), []string{"cr1.html"}, &mockFilter{err: filterErr})

	assert.Nil(t, got)
	assert.ErrorIs(t, err, filterErr)
}

func TestPatternFilter(t *testing.T) {
	f := NewPatternFilter(index.DefaultPattern())

	keep, err := f.ShouldKeep(context.Background(), "cr1-01.html")
	require.NoError(t, err)
	assert.True(t, keep)

	keep, err = f.ShouldKeep(context.Background(), "index.html")
	require.NoError(t, err)
	assert.False(t, keep)
}

func TestMissing(t *testing.T) {
	remote := domain.NewFileSet("cr1.html", "cr2.html", "cr3.html")
	local := domain.NewFileSet("cr2.html", "cr9.html")

	got, err := Missing(context.Background(), remote, local, index.DefaultPattern())
	require.NoError(t, err)

	assert.Equal(t, []string{"cr1.html", "cr3.html"}, got)
}

func TestMissing_DropsNamesOutsidePattern(t *testing.T) {
	remote := domain.NewFileSet("cr1.html", "index.html", "cr.html", "cr2.htm")

	got, err := Missing(context.Background(), remote, domain.NewFileSet(), index.DefaultPattern())
	require.NoError(t, err)

	assert.Equal(t, []string{"cr1.html"}, got)
}

func TestMissing_NilLocal(t *testing.T) {
	got, err := Missing(context.Background(), domain.NewFileSet("cr1.html"), nil, index.DefaultPattern())
	require.NoError(t, err)

	assert.Equal(t, []string{"cr1.html"}, got)
}

func TestLocalFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"cr1-01.html", "cr.html", "index.html", "cr1-02.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "crdir.html"), 0o755))

	got, err := LocalFiles(dir, index.DefaultPattern())
	require.NoError(t, err)

	assert.Equal(t, []string{"cr.html", "cr1-01.html"}, got.Sorted())
}

func TestLocalFiles_GlobCharactersInDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data[1]*")
	require.NoError(t, os.Mkdir(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cr1-01.html"), []byte("x"), 0o644))

	got, err := LocalFiles(dir, index.DefaultPattern())
	require.NoError(t, err)

	assert.Equal(t, []string{"cr1-01.html"}, got.Sorted())
}

func TestLocalFiles_FollowsSymlinks(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(t.TempDir(), "episode.html")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))
	if err := os.Symlink(target, filepath.Join(dir, "cr1-01.html")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	got, err := LocalFiles(dir, index.DefaultPattern())
	require.NoError(t, err)

	assert.Equal(t, []string{"cr1-01.html"}, got.Sorted())
}

func TestLocalFiles_MissingDir(t *testing.T) {
	got, err := LocalFiles(filepath.Join(t.TempDir(), "nope"), index.DefaultPattern())
	require.NoError(t, err)

	assert.Empty(t, got)
}
