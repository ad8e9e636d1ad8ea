package store

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"counties/internal/country"
	"counties/internal/migrate"
	"counties/internal/spotlight"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikePattern(t *testing.T) {
	cases := map[string]string{
		"kent*":   "%kent%",
		"*":       "%",
		"":        "%",
		"a**b":    "%a%b%",
		"50%_off": `%50\%\_off%`,
		`a\b*`:    `%a\\b%`,
	}
	for in, want := range cases {
		assert.Equal(t, want, likePattern(in), in)
	}
}

func TestLikeClauses(t *testing.T) {
	cl, err := spotlight.ParseQuery(spotlight.BuildQueryString("Ynys MÔ"))
	require.NoError(t, err)
	where, args := likeClauses(cl)
	assert.Equal(t, "search_text LIKE $1 AND search_text LIKE $2", where)
	assert.Equal(t, []any{"%ynys%", "%mo%"}, args)

	cl, err = spotlight.ParseQuery(spotlight.BuildQueryString(""))
	require.NoError(t, err)
	where, args = likeClauses(cl)
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestSearchText(t *testing.T) {
	got := SearchText(spotlight.Item{Title: "Ynys Môn", Description: "Population: 70,000 (2019)"})
	assert.Equal(t, "ynys mon\npopulation: 70,000 (2019)", got)
}

// 需要可用的 PostgreSQL：PG_TEST_DSN=postgres://...
func TestStoreSearch(t *testing.T) {
	dsn := os.Getenv("PG_TEST_DSN")
	if dsn == "" {
		t.Skip("PG_TEST_DSN not set")
	}
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, migrate.EnsureSchema(db))
	_, err = db.Exec(`TRUNCATE _county_search_items`)
	require.NoError(t, err)

	s := AttachDB(db)
	ctx := context.Background()
	require.NoError(t, spotlight.NewIndexer(s, "").IndexRegionsSync(ctx, country.UnitedKingdom().Regions))
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 63, n)

	var ids []string
	require.NoError(t, s.Search(ctx, spotlight.BuildQueryString("sussex"), func(b []string) { ids = append(ids, b...) }))
	assert.ElementsMatch(t, []string{"east-sussex", "west-sussex"}, ids)

	ids = nil
	require.NoError(t, s.Search(ctx, spotlight.BuildTitleQueryString("pop"), func(b []string) { ids = append(ids, b...) }))
	assert.Empty(t, ids)

	var sizes []int
	require.NoError(t, s.Search(ctx, spotlight.BuildQueryString(""), func(b []string) { sizes = append(sizes, len(b)) }))
	assert.Equal(t, []int{16, 16, 16, 15}, sizes)
}
