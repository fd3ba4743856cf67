package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/couchcryptid/vizdata-etl-service/internal/domain"
	"github.com/spf13/cobra"
)

var errValidationFailed = errors.New("validation failed")

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func newValidateCmd(_ *cli) *cobra.Command {
	var (
		path      string
		minShared int
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the integrity of a snapshot fixture",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := loadSnapshot(path)
			if err != nil {
				return err
			}
			// The snapshot records the threshold it was built with.
			if snap.Recipes != nil && !cmd.Flags().Changed("min-shared") {
				minShared = snap.Recipes.MinShared
			}
			return report(cmd.OutOrStdout(), validateSnapshot(snap, minShared))
		},
	}
	cmd.Flags().StringVar(&path, "snapshot", "", "Path to a JSON snapshot fixture (required)")
	cmd.Flags().IntVar(&minShared, "min-shared", domain.DefaultMinSharedIngredients, "Override the link threshold stored in the snapshot")
	_ = cmd.MarkFlagRequired("snapshot")
	return cmd
}

func loadSnapshot(path string) (domain.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

func validateSnapshot(snap domain.Snapshot, minShared int) []*phase {
	phases := []*phase{}
	if snap.Recipes != nil {
		phases = append(phases, validateRecipeNodes(snap.Recipes), validateRecipeLinks(snap.Recipes, minShared))
	}
	if snap.Counties != nil {
		phases = append(phases, validateCountyMetrics(snap.Counties))
	}
	return phases
}

func validateRecipeNodes(g *domain.RecipeGraph) *phase {
	p := &phase{name: "Recipe nodes"}
	seen := make(map[domain.RecipeID]bool, len(g.Nodes))
	for i, n := range g.Nodes {
		if n.ID == "" {
			p.errorf("node %d: empty id", i)
			continue
		}
		if seen[n.ID] {
			p.errorf("node %d: duplicate id %q", i, n.ID)
		}
		seen[n.ID] = true
		if n.Minutes > g.MaxMinutes {
			p.errorf("node %q: minutes %v above max_minutes %v", n.ID, n.Minutes, g.MaxMinutes)
		}
	}
	return p
}

func validateRecipeLinks(g *domain.RecipeGraph, minShared int) *phase {
	p := &phase{name: "Recipe links"}
	position := make(map[domain.RecipeID]int, len(g.Nodes))
	for i, n := range g.Nodes {
		if _, ok := position[n.ID]; !ok {
			position[n.ID] = i
		}
	}

	type pair struct{ a, b domain.RecipeID }
	seen := make(map[pair]bool, len(g.Links))
	maxShared := 0
	for i, l := range g.Links {
		if l.Source == l.Target {
			p.errorf("link %d: self link on %q", i, l.Source)
		}
		key := pair{l.Source, l.Target}
		if seen[key] || seen[pair{l.Target, l.Source}] {
			p.errorf("link %d: duplicate pair %q-%q", i, l.Source, l.Target)
		}
		seen[key] = true

		if l.Weight() <= minShared {
			p.errorf("link %d: %d shared ingredients, need more than %d", i, l.Weight(), minShared)
		}
		maxShared = max(maxShared, l.Weight())

		si, okS := position[l.Source]
		ti, okT := position[l.Target]
		switch {
		case !okS || !okT:
			p.errorf("link %d: endpoint %q-%q has no node", i, l.Source, l.Target)
		case si >= ti:
			p.errorf("link %d: source %q does not precede target %q", i, l.Source, l.Target)
		}
	}
	if maxShared != g.MaxShared {
		p.errorf("max_shared is %d, links give %d", g.MaxShared, maxShared)
	}
	return p
}

func validateCountyMetrics(c *domain.Choropleth) *phase {
	p := &phase{name: "County metrics"}
	seen := make(map[string]bool, len(c.Counties))
	for i, m := range c.Counties {
		if m.CountyID == "" {
			p.errorf("county %d: empty id", i)
		} else if seen[m.CountyID] {
			p.errorf("county %d: duplicate id %q", i, m.CountyID)
		}
		seen[m.CountyID] = true

		if math.IsNaN(m.PerCapita) || math.IsInf(m.PerCapita, 0) {
			p.errorf("county %q: per_capita is not finite", m.CountyID)
			continue
		}
		if m.PerCapita < c.MinPerCapita || m.PerCapita > c.MaxPerCapita {
			p.errorf("county %q: per_capita %v outside [%v, %v]", m.CountyID, m.PerCapita, c.MinPerCapita, c.MaxPerCapita)
		}
	}
	return p
}

// report prints the phase table and details, returning errValidationFailed
// when any phase has errors.
func report(w io.Writer, phases []*phase) error {
	fmt.Fprintln(w, "=== Snapshot Integrity Validation ===")
	fmt.Fprintln(w)

	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-42s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if !allPassed {
		fmt.Fprintln(w, "\nValidation FAILED.")
		return errValidationFailed
	}
	fmt.Fprintln(w, "\nAll validations passed.")
	return nil
}
