package domain

import (
	"errors"
	"fmt"
	"slices"
)

// DefaultMinSharedIngredients is the link threshold: a pair of recipes is
// linked only when it shares strictly more ingredients than this.
const DefaultMinSharedIngredients = 3

// RecipeID identifies a recipe within one input batch.
type RecipeID string

// Recipe is a parsed recipe row.
type Recipe struct {
	ID          RecipeID
	Name        string
	Minutes     float64
	Ingredients []string
	Tag         Tag
}

// RecipeNode is the renderer's view of a recipe.
type RecipeNode struct {
	ID      RecipeID `json:"id" yaml:"id"`
	Name    string   `json:"name" yaml:"name"`
	Minutes float64  `json:"minutes" yaml:"minutes"`
	Tag     Tag      `json:"tag" yaml:"tag"`
}

// RecipeLink connects two recipes that share ingredients. Source always
// precedes Target in the input order.
type RecipeLink struct {
	Source            RecipeID `json:"source" yaml:"source"`
	Target            RecipeID `json:"target" yaml:"target"`
	SharedIngredients []string `json:"shared_ingredients" yaml:"shared_ingredients"`
}

// Weight is the number of shared ingredients.
func (l RecipeLink) Weight() int { return len(l.SharedIngredients) }

// RecipeGraph is the node/link dataset plus the value domains the renderer
// scales link widths and node radii by.
type RecipeGraph struct {
	Nodes      []RecipeNode `json:"nodes" yaml:"nodes"`
	Links      []RecipeLink `json:"links" yaml:"links"`
	MinShared  int          `json:"min_shared" yaml:"min_shared"`
	MaxShared  int          `json:"max_shared" yaml:"max_shared"`
	MaxMinutes float64      `json:"max_minutes" yaml:"max_minutes"`
}

// BuildNodes projects each recipe to a node. Ids are not deduplicated.
func BuildNodes(records []Recipe) []RecipeNode {
	nodes := make([]RecipeNode, len(records))
	for i, r := range records {
		nodes[i] = RecipeNode{ID: r.ID, Name: r.Name, Minutes: r.Minutes, Tag: r.Tag}
	}
	return nodes
}

// BuildLinks emits a link for every pair (i, j), i < j, whose ingredient sets
// intersect in more than minShared entries. Links come out in (i, j) order and
// list the shared ingredients in recipe i's order.
//
// An inverted index of ingredient → recipe positions limits the intersection
// work to pairs that share at least one ingredient.
func BuildLinks(records []Recipe, minShared int) ([]RecipeLink, error) {
	if minShared < 0 {
		return nil, fmt.Errorf("min shared ingredients must be >= 0, got %d", minShared)
	}

	sets := make([]map[string]struct{}, len(records))
	index := make(map[string][]int)
	for i, r := range records {
		if len(r.Ingredients) == 0 {
			return nil, fmt.Errorf("recipe %d (id %q): missing ingredients: %w", i, r.ID, ErrMalformedRecord)
		}
		set := make(map[string]struct{}, len(r.Ingredients))
		for _, ing := range r.Ingredients {
			if _, dup := set[ing]; dup {
				continue
			}
			set[ing] = struct{}{}
			index[ing] = append(index[ing], i)
		}
		sets[i] = set
	}

	var links []RecipeLink
	counts := make(map[int]int)
	for i, r := range records {
		clear(counts)
		for ing := range sets[i] {
			for _, j := range index[ing] {
				if j > i {
					counts[j]++
				}
			}
		}

		candidates := make([]int, 0, len(counts))
		for j, n := range counts {
			if n > minShared {
				candidates = append(candidates, j)
			}
		}
		slices.Sort(candidates)

		for _, j := range candidates {
			links = append(links, RecipeLink{
				Source:            r.ID,
				Target:            records[j].ID,
				SharedIngredients: intersect(r.Ingredients, sets[j]),
			})
		}
	}
	return links, nil
}

// intersect returns the members of ordered that are in set, first occurrence only.
func intersect(ordered []string, set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	seen := make(map[string]struct{}, len(set))
	for _, s := range ordered {
		if _, ok := set[s]; !ok {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// BuildRecipeGraph derives nodes, links and scale domains in one pass.
func BuildRecipeGraph(records []Recipe, minShared int) (RecipeGraph, error) {
	links, err := BuildLinks(records, minShared)
	if err != nil {
		return RecipeGraph{}, err
	}

	g := RecipeGraph{
		Nodes:     BuildNodes(records),
		Links:     links,
		MinShared: minShared,
	}
	if g.Links == nil {
		g.Links = []RecipeLink{}
	}
	for _, l := range g.Links {
		g.MaxShared = max(g.MaxShared, l.Weight())
	}
	for _, n := range g.Nodes {
		g.MaxMinutes = max(g.MaxMinutes, n.Minutes)
	}
	return g, nil
}

// IsMalformed reports whether err stems from a malformed input record.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedRecord)
}
