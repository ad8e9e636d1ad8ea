package spotlight

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"counties/internal/country"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticFavourites []string

func (s staticFavourites) Counties(context.Context) []country.County {
	uk := country.UnitedKingdom()
	out := make([]country.County, 0, len(s))
	for _, n := range s {
		out = append(out, uk.MustCounty(n))
	}
	return out
}

// gatedIndex 对包含 "slow" 的查询一直阻塞到 ctx 结束
type gatedIndex struct {
	*MemoryIndex
	started chan struct{}
}

func (g *gatedIndex) Search(ctx context.Context, q string, found func([]string)) error {
	if strings.Contains(q, "slow") {
		g.started <- struct{}{}
		<-ctx.Done()
		return ctx.Err()
	}
	return g.MemoryIndex.Search(ctx, q, found)
}

type brokenIndex struct{ *MemoryIndex }

func (brokenIndex) Search(context.Context, string, func([]string)) error {
	return errors.New("index unavailable")
}

func indexedUK(t *testing.T) *MemoryIndex {
	t.Helper()
	idx := NewMemoryIndex()
	require.NoError(t, NewIndexer(idx, "").IndexRegionsSync(context.Background(), country.UnitedKingdom().Regions))
	return idx
}

func newController(t *testing.T, idx Index, opts ...Option) *Controller {
	t.Helper()
	return NewController(country.UnitedKingdom(), idx, staticFavourites{"Devon", "Kent"}, opts...)
}

func TestSearchAllCounties(t *testing.T) {
	ctl := newController(t, indexedUK(t))
	ctx := context.Background()

	got, err := ctl.SearchAndWait(ctx, Query{Text: "Ess"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Essex"}, country.Names(got))

	got, err = ctl.SearchAndWait(ctx, Query{Text: "sussex"})
	require.NoError(t, err)
	assert.Equal(t, []string{"East Sussex", "West Sussex"}, country.Names(got))
	assert.Equal(t, got, ctl.Results())

	got, err = ctl.SearchAndWait(ctx, Query{Text: "zzz"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearchFavouritesOnly(t *testing.T) {
	ctl := newController(t, indexedUK(t))
	got, err := ctl.SearchAndWait(context.Background(), Query{Text: "de", Filter: FavouritesOnly})
	require.NoError(t, err)
	assert.Equal(t, []string{"Devon"}, country.Names(got))
}

func TestSearchEmptyTextReturnsFilterList(t *testing.T) {
	ctl := newController(t, indexedUK(t))
	ctx := context.Background()

	all, err := ctl.SearchAndWait(ctx, Query{Text: "  "})
	require.NoError(t, err)
	assert.Len(t, all, 63)
	assert.Equal(t, "Aberdeenshire", all[0].Name)

	favs, err := ctl.SearchAndWait(ctx, Query{Filter: FavouritesOnly})
	require.NoError(t, err)
	assert.Equal(t, []string{"Devon", "Kent"}, country.Names(favs))
}

func TestSearchCompletionThroughDispatcher(t *testing.T) {
	queue := make(chan func(), 1)
	ctl := newController(t, indexedUK(t), WithDispatcher(func(fn func()) { queue <- fn }))

	results := make(chan []country.County, 1)
	ctl.Search(Query{Text: "Kent"}, func(cs []country.County) { results <- cs })

	var fn func()
	select {
	case fn = <-queue:
	case <-time.After(2 * time.Second):
		t.Fatal("completion never dispatched")
	}
	assert.Empty(t, results)
	fn()
	assert.Equal(t, []string{"Kent"}, country.Names(<-results))
}

func TestNewQuerySupersedesOld(t *testing.T) {
	g := &gatedIndex{MemoryIndex: indexedUK(t), started: make(chan struct{}, 1)}
	ctl := newController(t, g)

	slowCalled := make(chan struct{}, 1)
	ctl.Search(Query{Text: "slow"}, func([]country.County) { slowCalled <- struct{}{} })
	<-g.started

	errs := make(chan error, 1)
	go func() {
		_, err := ctl.SearchAndWait(context.Background(), Query{Text: "slower"})
		errs <- err
	}()
	<-g.started
	assert.Empty(t, ctl.Results())

	got, err := ctl.SearchAndWait(context.Background(), Query{Text: "Kent"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Kent"}, country.Names(got))

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(2 * time.Second):
		t.Fatal("superseded query did not return")
	}
	select {
	case <-slowCalled:
		t.Fatal("superseded query called completion")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSearchAndWaitContextDeadline(t *testing.T) {
	g := &gatedIndex{MemoryIndex: indexedUK(t), started: make(chan struct{}, 1)}
	ctl := newController(t, g)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := ctl.SearchAndWait(ctx, Query{Text: "slow"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSearchIndexError(t *testing.T) {
	ctl := newController(t, brokenIndex{NewMemoryIndex()})
	_, err := ctl.SearchAndWait(context.Background(), Query{Text: "Kent"})
	assert.EqualError(t, err, "index unavailable")

	called := make(chan struct{}, 1)
	ctl.Search(Query{Text: "Kent"}, func([]country.County) { called <- struct{}{} })
	select {
	case <-called:
		t.Fatal("completion called after index error")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("favourites")
	require.NoError(t, err)
	assert.Equal(t, FavouritesOnly, f)
	f, err = ParseFilter("")
	require.NoError(t, err)
	assert.Equal(t, AllCounties, f)
	_, err = ParseFilter("nearby")
	assert.Error(t, err)
	assert.Equal(t, "favourites", FavouritesOnly.String())
}

func TestSearchMatchesCountyNameOnly(t *testing.T) {
	ctl := newController(t, indexedUK(t))
	ctx := context.Background()
	for _, text := range []string{"pop", "population", "2019", "1,846"} {
		got, err := ctl.SearchAndWait(ctx, Query{Text: text})
		require.NoError(t, err, text)
		assert.Empty(t, got, text)
	}

	got, err := ctl.SearchAndWait(ctx, Query{Text: "k"})
	require.NoError(t, err)
	assert.Contains(t, country.Names(got), "Kent")
	for _, c := range got {
		assert.Contains(t, " "+strings.ToLower(c.Name), " k", c.Name)
	}
}

func TestCancelSupersedesWaitingSearch(t *testing.T) {
	g := &gatedIndex{MemoryIndex: indexedUK(t), started: make(chan struct{}, 1)}
	ctl := newController(t, g)

	errs := make(chan error, 1)
	go func() {
		_, err := ctl.SearchAndWait(context.Background(), Query{Text: "slow"})
		errs <- err
	}()
	<-g.started
	ctl.Cancel()

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled query did not return")
	}
	assert.Empty(t, ctl.Results())
}
