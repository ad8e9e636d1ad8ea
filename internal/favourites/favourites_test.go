package favourites

import (
	"context"
	"errors"
	"testing"
	"time"

	"counties/internal/country"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	*MemoryStore
}

func (f failingStore) SetStrings(context.Context, string, []string) error {
	return errors.New("quota exceeded")
}

func (f failingStore) Synchronize(context.Context) error { return errors.New("offline") }

func setup(t *testing.T) (*Controller, *MemoryStore, *country.Country) {
	t.Helper()
	uk := country.UnitedKingdom()
	ms := NewMemoryStore()
	require.NoError(t, ms.SetStrings(context.Background(), Key, []string{"Devon", "Hampshire"}))
	return New(uk, ms), ms, uk
}

func TestCountiesReadFromStore(t *testing.T) {
	c, _, _ := setup(t)
	assert.Equal(t, []string{"Devon", "Hampshire"}, country.Names(c.Counties(context.Background())))
}

func TestCountiesEmptyStore(t *testing.T) {
	c := New(country.UnitedKingdom(), NewMemoryStore())
	assert.Empty(t, c.Counties(context.Background()))
}

func TestCountiesDropsUnknownNames(t *testing.T) {
	ms := NewMemoryStore()
	ms.SetExternally(Key, []string{"Atlantis", "Kent"})
	c := New(country.UnitedKingdom(), ms)
	assert.Equal(t, []string{"Kent"}, country.Names(c.Counties(context.Background())))
}

func TestAddAppendsSortedAndPersists(t *testing.T) {
	ctx := context.Background()
	c, ms, uk := setup(t)
	changed, err := c.Add(ctx, uk.MustCounty("Kent"))
	require.NoError(t, err)
	assert.True(t, changed)

	stored, _ := ms.Strings(ctx, Key)
	assert.Equal(t, []string{"Devon", "Hampshire", "Kent"}, stored)

	_, err = c.Add(ctx, uk.MustCounty("Essex"))
	require.NoError(t, err)
	stored, _ = ms.Strings(ctx, Key)
	assert.Equal(t, []string{"Devon", "Essex", "Hampshire", "Kent"}, stored)
}

func TestAddExistingIsNoop(t *testing.T) {
	ctx := context.Background()
	c, ms, uk := setup(t)
	before := ms.Writes()
	var notified int
	c.OnChange(func(Change) { notified++ })

	changed, err := c.Add(ctx, uk.MustCounty("Devon"))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, before, ms.Writes())
	assert.Zero(t, notified)
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	c, ms, uk := setup(t)
	changed, err := c.Remove(ctx, uk.MustCounty("Hampshire"))
	require.NoError(t, err)
	assert.True(t, changed)
	stored, _ := ms.Strings(ctx, Key)
	assert.Equal(t, []string{"Devon"}, stored)
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	ctx := context.Background()
	c, ms, uk := setup(t)
	before := ms.Writes()
	var notified int
	c.OnChange(func(Change) { notified++ })

	changed, err := c.Remove(ctx, uk.MustCounty("Kent"))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, before, ms.Writes())
	assert.Zero(t, notified)
}

func TestChangeNotifications(t *testing.T) {
	ctx := context.Background()
	c, _, uk := setup(t)
	var got []Change
	c.OnChange(func(ch Change) { got = append(got, ch) })

	_, _ = c.Add(ctx, uk.MustCounty("Kent"))
	_, _ = c.Remove(ctx, uk.MustCounty("Devon"))

	require.Len(t, got, 2)
	assert.Equal(t, []string{"Devon", "Hampshire", "Kent"}, country.Names(got[0].Counties))
	assert.Equal(t, []string{"Hampshire", "Kent"}, country.Names(got[1].Counties))
	assert.False(t, got[0].External)
}

func TestWriteFailure(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()
	c := New(country.UnitedKingdom(), failingStore{ms})
	var notified int
	c.OnChange(func(Change) { notified++ })

	changed, err := c.Add(ctx, country.UnitedKingdom().MustCounty("Kent"))
	assert.Error(t, err)
	assert.False(t, changed)
	assert.Zero(t, notified)
	assert.Error(t, c.Synchronise(ctx))
}

func TestExternalChangeReemitted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c, ms, _ := setup(t)
	got := make(chan Change, 1)
	c.OnChange(func(ch Change) { got <- ch })
	require.NoError(t, c.Watch(ctx))

	ms.SetExternally(Key, []string{"Cornwall"})
	select {
	case ch := <-got:
		assert.True(t, ch.External)
		assert.Equal(t, []string{"Cornwall"}, country.Names(ch.Counties))
	case <-time.After(time.Second):
		t.Fatal("external change not delivered")
	}
}

func TestExternalChangeOtherKeyIgnored(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c, ms, _ := setup(t)
	var notified int
	c.OnChange(func(Change) { notified++ })
	require.NoError(t, c.Watch(ctx))
	ms.SetExternally("SomethingElse", []string{"x"})
	assert.Zero(t, notified)
}

func TestSynchronise(t *testing.T) {
	c, ms, _ := setup(t)
	require.NoError(t, c.Synchronise(context.Background()))
	assert.Equal(t, 1, ms.Syncs())
}

func TestWatchUnsupportedStore(t *testing.T) {
	type plain struct{ KeyValueStore }
	c := New(country.UnitedKingdom(), plain{NewMemoryStore()})
	assert.NoError(t, c.Watch(context.Background()))
}

func TestUnsortedExternalWriteReadBackSorted(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()
	ms.SetExternally(Key, []string{"Surrey", "Kent", "Essex"})
	c := New(country.UnitedKingdom(), ms)
	assert.Equal(t, []string{"Essex", "Kent", "Surrey"}, country.Names(c.Counties(ctx)))

	changed, err := c.Remove(ctx, country.UnitedKingdom().MustCounty("Kent"))
	require.NoError(t, err)
	assert.True(t, changed)
	stored, _ := ms.Strings(ctx, Key)
	assert.Equal(t, []string{"Essex", "Surrey"}, stored)
}

func TestUnknownNamesKeptOnWrite(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()
	ms.SetExternally(Key, []string{"Westmorland and Furness", "Kent"})
	c := New(country.UnitedKingdom(), ms)
	uk := country.UnitedKingdom()

	var got []Change
	c.OnChange(func(ch Change) { got = append(got, ch) })
	_, err := c.Add(ctx, uk.MustCounty("Essex"))
	require.NoError(t, err)
	stored, _ := ms.Strings(ctx, Key)
	assert.Equal(t, []string{"Essex", "Kent", "Westmorland and Furness"}, stored)

	_, err = c.Remove(ctx, uk.MustCounty("Kent"))
	require.NoError(t, err)
	stored, _ = ms.Strings(ctx, Key)
	assert.Equal(t, []string{"Essex", "Westmorland and Furness"}, stored)

	require.Len(t, got, 2)
	assert.Equal(t, []string{"Essex", "Kent"}, country.Names(got[0].Counties))
	assert.Equal(t, []string{"Essex"}, country.Names(got[1].Counties))
}

type unreadableStore struct {
	*MemoryStore
}

func (unreadableStore) Strings(context.Context, string) ([]string, error) {
	return nil, errors.New("offline")
}

func TestReadFailureDoesNotOverwrite(t *testing.T) {
	ms := NewMemoryStore()
	ms.SetExternally(Key, []string{"Devon"})
	c := New(country.UnitedKingdom(), unreadableStore{ms})
	changed, err := c.Add(context.Background(), country.UnitedKingdom().MustCounty("Kent"))
	assert.Error(t, err)
	assert.False(t, changed)
	stored, _ := ms.Strings(context.Background(), Key)
	assert.Equal(t, []string{"Devon"}, stored)
}
