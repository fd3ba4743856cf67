package csvsource

import (
	"errors"
	"io"

	"github.com/couchcryptid/vizdata-etl-service/internal/domain"
)

// ReadRecipes parses recipe rows with columns id, name, minutes, ingredients
// and tags. Ingredients and tags are comma-joined lists; each token is
// trimmed of surrounding whitespace and empty tokens are dropped, so
// "eggs, milk" and "eggs,milk" yield the same ingredients. Matching stays
// case-sensitive. A row without an id or without ingredients rejects the file.
func ReadRecipes(r io.Reader) ([]domain.Recipe, error) {
	t, err := newTable(r, "id", "name", "minutes", "ingredients", "tags")
	if err != nil {
		return nil, err
	}

	var recipes []domain.Recipe
	for {
		row, err := t.next()
		if errors.Is(err, io.EOF) {
			return recipes, nil
		}
		if err != nil {
			return nil, err
		}

		id := row.get("id")
		if id == "" {
			return nil, row.malformed("empty recipe id")
		}
		ingredients := splitList(row.get("ingredients"))
		if len(ingredients) == 0 {
			return nil, row.malformed("recipe %q has no ingredients", id)
		}

		recipes = append(recipes, domain.Recipe{
			ID:          domain.RecipeID(id),
			Name:        row.get("name"),
			Minutes:     row.number("minutes"),
			Ingredients: ingredients,
			Tag:         domain.ClassifyTag(splitList(row.get("tags"))),
		})
	}
}
