package spotlight

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"counties/internal/country"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryIndexBatches(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()
	var items []Item
	for i := 0; i < 40; i++ {
		items = append(items, Item{ID: fmt.Sprintf("id-%02d", i), Title: fmt.Sprintf("Item %02d", i)})
	}
	require.NoError(t, idx.IndexItems(ctx, items))

	var sizes []int
	var ids []string
	require.NoError(t, idx.Search(ctx, BuildQueryString(""), func(batch []string) {
		sizes = append(sizes, len(batch))
		ids = append(ids, batch...)
	}))
	assert.Equal(t, []int{16, 16, 8}, sizes)
	assert.Equal(t, "id-00", ids[0])
	assert.Equal(t, "id-39", ids[39])
}

func TestMemoryIndexUpsert(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()
	require.NoError(t, idx.IndexItems(ctx, []Item{{ID: "a", Title: "Old"}}))
	require.NoError(t, idx.IndexItems(ctx, []Item{{ID: "a", Title: "New"}, {ID: "b", Title: "Other"}}))
	assert.Equal(t, 2, idx.Len())
	it, ok := idx.Item("a")
	require.True(t, ok)
	assert.Equal(t, "New", it.Title)
}

func TestMemoryIndexCancelledAndBadQuery(t *testing.T) {
	idx := NewMemoryIndex()
	require.NoError(t, idx.IndexItems(context.Background(), []Item{{ID: "a", Title: "Kent"}}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := idx.Search(ctx, BuildQueryString("Kent"), func([]string) { called = true })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)

	err = idx.Search(context.Background(), "Kent", func([]string) {})
	assert.True(t, errors.Is(err, ErrBadQuery))
}

func TestIndexerItems(t *testing.T) {
	uk := country.UnitedKingdom()
	items := NewIndexer(NewMemoryIndex(), "").Items(uk.Regions)
	require.Len(t, items, 63)

	var kent Item
	for _, it := range items {
		if it.Title == "Kent" {
			kent = it
		}
	}
	assert.Equal(t, "kent", kent.ID)
	assert.Equal(t, "Population: 1,846,000 (2019)", kent.Description)
	assert.True(t, kent.SupportsNavigation)
	assert.Equal(t, uk.MustCounty("Kent").Location.Latitude, kent.Latitude)
	assert.Nil(t, kent.Thumbnail)
}

func writePNG(t *testing.T, path string, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return buf.Bytes()
}

func TestIndexerThumbnails(t *testing.T) {
	dir := t.TempDir()
	small := writePNG(t, filepath.Join(dir, "Kent.png"), 40, 20)
	writePNG(t, filepath.Join(dir, "Essex.png"), 600, 300)
	writePNG(t, filepath.Join(dir, "Cornwall.png"), 200, 900)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Devon.png"), []byte("gif"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Surrey.png"), append([]byte("\x89PNG\r\n\x1a\n"), 0, 1, 2), 0o644))

	uk := country.UnitedKingdom()
	var pick []country.County
	for _, n := range []string{"Kent", "Devon", "Essex", "Cornwall", "Surrey", "Dorset"} {
		pick = append(pick, uk.MustCounty(n))
	}
	items := NewIndexer(NewMemoryIndex(), dir).Items(country.FilterRegions(uk.Regions, pick))
	byTitle := map[string]Item{}
	for _, it := range items {
		byTitle[it.Title] = it
	}
	assert.Equal(t, small, byTitle["Kent"].Thumbnail)
	assert.Nil(t, byTitle["Devon"].Thumbnail)
	assert.Nil(t, byTitle["Surrey"].Thumbnail)
	assert.Nil(t, byTitle["Dorset"].Thumbnail)

	for name, want := range map[string]image.Point{"Essex": {300, 150}, "Cornwall": {66, 300}} {
		cfg, err := png.DecodeConfig(bytes.NewReader(byTitle[name].Thumbnail))
		require.NoError(t, err, name)
		assert.Equal(t, want, image.Pt(cfg.Width, cfg.Height), name)
	}
}

func TestIndexRegionsInBackground(t *testing.T) {
	idx := NewMemoryIndex()
	done := NewIndexer(idx, "").IndexRegions(country.UnitedKingdom().Regions)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("indexing did not finish")
	}
	assert.Equal(t, 63, idx.Len())
	it, ok := idx.Item("kent")
	require.True(t, ok)
	assert.Equal(t, "Kent", it.Title)
	_, ok = idx.Item("atlantis")
	assert.False(t, ok)
}
