package domain

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recipe(id string, ingredients ...string) Recipe {
	return Recipe{ID: RecipeID(id), Name: "recipe " + id, Minutes: 30, Ingredients: ingredients, Tag: Tag30Minutes}
}

func TestBuildNodes(t *testing.T) {
	records := []Recipe{
		{ID: "1", Name: "soup", Minutes: 45, Ingredients: []string{"water"}, Tag: Tag60Minutes},
		{ID: "2", Name: "toast", Minutes: 5, Ingredients: []string{"bread"}, Tag: Tag15Minutes},
	}

	nodes := BuildNodes(records)

	want := []RecipeNode{
		{ID: "1", Name: "soup", Minutes: 45, Tag: Tag60Minutes},
		{ID: "2", Name: "toast", Minutes: 5, Tag: Tag15Minutes},
	}
	if diff := cmp.Diff(want, nodes); diff != "" {
		t.Errorf("BuildNodes mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildLinks(t *testing.T) {
	t.Run("four shared ingredients link", func(t *testing.T) {
		records := []Recipe{
			recipe("a", "salt", "pepper", "butter", "flour", "milk"),
			recipe("b", "eggs", "flour", "butter", "pepper", "salt"),
		}

		links, err := BuildLinks(records, DefaultMinSharedIngredients)
		require.NoError(t, err)
		require.Len(t, links, 1)
		assert.Equal(t, RecipeID("a"), links[0].Source)
		assert.Equal(t, RecipeID("b"), links[0].Target)
		assert.Equal(t, []string{"salt", "pepper", "butter", "flour"}, links[0].SharedIngredients)
		assert.Equal(t, 4, links[0].Weight())
	})

	t.Run("three shared ingredients do not link", func(t *testing.T) {
		records := []Recipe{
			recipe("a", "salt", "pepper", "butter", "milk"),
			recipe("b", "salt", "pepper", "butter", "eggs"),
		}

		links, err := BuildLinks(records, DefaultMinSharedIngredients)
		require.NoError(t, err)
		assert.Empty(t, links)
	})

	t.Run("match is case sensitive", func(t *testing.T) {
		records := []Recipe{
			recipe("a", "salt", "pepper", "butter", "flour"),
			recipe("b", "Salt", "pepper", "butter", "flour"),
		}

		links, err := BuildLinks(records, DefaultMinSharedIngredients)
		require.NoError(t, err)
		assert.Empty(t, links)
	})

	t.Run("duplicate ingredients count once", func(t *testing.T) {
		records := []Recipe{
			recipe("a", "salt", "salt", "salt", "salt", "pepper"),
			recipe("b", "salt", "pepper", "salt", "salt"),
		}

		links, err := BuildLinks(records, 1)
		require.NoError(t, err)
		require.Len(t, links, 1)
		assert.Equal(t, []string{"salt", "pepper"}, links[0].SharedIngredients)
	})

	t.Run("emission follows pair order", func(t *testing.T) {
		common := []string{"a", "b", "c", "d"}
		records := []Recipe{
			recipe("r0", common...),
			recipe("r1", "x"),
			recipe("r2", common...),
			recipe("r3", common...),
		}

		links, err := BuildLinks(records, DefaultMinSharedIngredients)
		require.NoError(t, err)

		var pairs []string
		for _, l := range links {
			pairs = append(pairs, fmt.Sprintf("%s-%s", l.Source, l.Target))
		}
		assert.Equal(t, []string{"r0-r2", "r0-r3", "r2-r3"}, pairs)
	})

	t.Run("custom threshold", func(t *testing.T) {
		records := []Recipe{
			recipe("a", "salt", "pepper"),
			recipe("b", "salt", "pepper"),
		}

		links, err := BuildLinks(records, 1)
		require.NoError(t, err)
		assert.Len(t, links, 1)

		links, err = BuildLinks(records, 2)
		require.NoError(t, err)
		assert.Empty(t, links)
	})

	t.Run("missing ingredients rejects batch", func(t *testing.T) {
		records := []Recipe{
			recipe("a", "salt", "pepper", "butter", "flour"),
			{ID: "b", Name: "nothing"},
		}

		links, err := BuildLinks(records, DefaultMinSharedIngredients)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMalformedRecord)
		assert.True(t, IsMalformed(err))
		assert.Contains(t, err.Error(), `"b"`)
		assert.Nil(t, links)
	})

	t.Run("negative threshold", func(t *testing.T) {
		_, err := BuildLinks([]Recipe{recipe("a", "salt")}, -1)
		require.Error(t, err)
	})

	t.Run("empty input", func(t *testing.T) {
		links, err := BuildLinks(nil, DefaultMinSharedIngredients)
		require.NoError(t, err)
		assert.Empty(t, links)
	})
}

// TestBuildLinks_MatchesPairwise checks the indexed implementation against a
// direct pairwise intersection over a generated batch.
func TestBuildLinks_MatchesPairwise(t *testing.T) {
	pantry := []string{"salt", "pepper", "butter", "flour", "milk", "eggs", "sugar", "garlic", "onion", "oil"}
	var records []Recipe
	for i := range 40 {
		var ings []string
		for k, ing := range pantry {
			if (i*7+k*3)%5 < 3 {
				ings = append(ings, ing)
			}
		}
		if len(ings) == 0 {
			ings = []string{"water"}
		}
		records = append(records, recipe(fmt.Sprintf("r%02d", i), ings...))
	}

	got, err := BuildLinks(records, DefaultMinSharedIngredients)
	require.NoError(t, err)

	var want []RecipeLink
	for i := 0; i < len(records)-1; i++ {
		for j := i + 1; j < len(records); j++ {
			var shared []string
			for _, a := range records[i].Ingredients {
				for _, b := range records[j].Ingredients {
					if a == b {
						shared = append(shared, a)
						break
					}
				}
			}
			if len(shared) > DefaultMinSharedIngredients {
				want = append(want, RecipeLink{Source: records[i].ID, Target: records[j].ID, SharedIngredients: shared})
			}
		}
	}

	require.NotEmpty(t, want)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BuildLinks mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildRecipeGraph(t *testing.T) {
	records := []Recipe{
		{ID: "1", Name: "stew", Minutes: 120, Ingredients: []string{"beef", "carrot", "onion", "potato", "salt"}, Tag: TagOver60},
		{ID: "2", Name: "soup", Minutes: 40, Ingredients: []string{"carrot", "onion", "potato", "salt", "water"}, Tag: Tag60Minutes},
		{ID: "3", Name: "salad", Minutes: 10, Ingredients: []string{"lettuce"}, Tag: Tag15Minutes},
	}

	g, err := BuildRecipeGraph(records, DefaultMinSharedIngredients)
	require.NoError(t, err)

	assert.Len(t, g.Nodes, 3)
	require.Len(t, g.Links, 1)
	assert.Equal(t, DefaultMinSharedIngredients, g.MinShared)
	assert.Equal(t, 4, g.MaxShared)
	assert.Equal(t, 120.0, g.MaxMinutes)

	t.Run("no links yields empty slice", func(t *testing.T) {
		g, err := BuildRecipeGraph(records[2:], DefaultMinSharedIngredients)
		require.NoError(t, err)
		assert.NotNil(t, g.Links)
		assert.Empty(t, g.Links)
		assert.Zero(t, g.MaxShared)
	})

	t.Run("malformed record", func(t *testing.T) {
		_, err := BuildRecipeGraph([]Recipe{{ID: "x"}}, DefaultMinSharedIngredients)
		assert.ErrorIs(t, err, ErrMalformedRecord)
	})
}
