package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marble-idols/storefront/internal/catalog"
	"github.com/marble-idols/storefront/internal/domain"
)

func TestPrintView(t *testing.T) {
	state := catalog.WithSort(domain.DefaultFilterState(), domain.SortPriceLow)
	view := catalog.View{
		Status: catalog.StatusReady,
		State:  state,
		Items: []domain.Product{
			{Slug: "ganesha-1", Name: "Ganesha", Price: "12500", PaintingStyle: "gold", Material: &domain.MaterialRef{Title: "Makrana Marble"}},
			{Slug: "nandi-1", Name: "Nandi", Price: "4500"},
		},
		Total:      2,
		TotalPages: 1,
		PageSize:   12,
		Query:      catalog.ToQueryString(state),
	}

	var buf bytes.Buffer
	require.NoError(t, printView(&buf, view))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "SLUG"))
	assert.Contains(t, lines[1], "Makrana Marble")
	assert.Contains(t, lines[1], "₹12,500")
	assert.Equal(t, []string{"nandi-1", "Nandi", "-", "-", "₹4,500"}, strings.Fields(lines[2]))
	assert.Equal(t, `page 1 of 1, 2 matching, query "sort=price-low"`, lines[4])
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCommand()
	root.AddCommand(newServeCommand(), newCatalogCommand())

	for _, name := range []string{"serve", "catalog"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("env-file"))
}
