package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/couchcryptid/vizdata-etl-service/internal/adapter/csvsource"
	"github.com/couchcryptid/vizdata-etl-service/internal/adapter/topojson"
	"github.com/couchcryptid/vizdata-etl-service/internal/domain"
	"golang.org/x/sync/errgroup"
)

// derive fills the enabled datasets of snap.
func (p *Pipeline) derive(ctx context.Context, snap *domain.Snapshot) error {
	if p.opts.Sources.recipesEnabled() {
		graph, err := p.deriveRecipes(ctx)
		if err != nil {
			return err
		}
		snap.Recipes = &graph
	}
	if p.opts.Sources.countiesEnabled() {
		choropleth, err := p.deriveCounties(ctx)
		if err != nil {
			return err
		}
		snap.Counties = &choropleth
	}
	return nil
}

func (p *Pipeline) deriveRecipes(ctx context.Context) (domain.RecipeGraph, error) {
	var records []domain.Recipe
	err := p.load(ctx, "recipes", p.opts.Sources.Recipes, func(r io.Reader) error {
		var err error
		records, err = csvsource.ReadRecipes(r)
		return err
	})
	if err != nil {
		return domain.RecipeGraph{}, err
	}
	p.metrics.RecordsLoaded.WithLabelValues("recipes").Add(float64(len(records)))

	graph, err := domain.BuildRecipeGraph(records, p.opts.MinSharedIngredients)
	if err != nil {
		return domain.RecipeGraph{}, fmt.Errorf("build recipe graph: %w", err)
	}
	return graph, nil
}

// deriveCounties loads topology, population and worship concurrently and
// joins them once all three have finished. The first load error cancels the
// others.
func (p *Pipeline) deriveCounties(ctx context.Context) (domain.Choropleth, error) {
	var (
		features   []domain.CountyFeature
		states     []topojson.Feature
		population []domain.PopulationRecord
		worship    csvsource.WorshipResult
	)
	src := p.opts.Sources

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return p.load(gctx, "counties", src.Topology, func(r io.Reader) error {
			topo, err := topojson.Decode(r)
			if err != nil {
				return err
			}
			if features, err = topo.Counties(); err != nil {
				return err
			}
			states, err = topo.States()
			return err
		})
	})
	g.Go(func() error {
		return p.load(gctx, "population", src.Population, func(r io.Reader) error {
			var err error
			population, err = csvsource.ReadPopulation(r)
			return err
		})
	})
	g.Go(func() error {
		return p.load(gctx, "worship", src.Worship, func(r io.Reader) error {
			var err error
			worship, err = csvsource.ReadWorship(r)
			return err
		})
	})
	if err := g.Wait(); err != nil {
		return domain.Choropleth{}, err
	}

	p.metrics.RecordsLoaded.WithLabelValues("counties").Add(float64(len(features)))
	p.metrics.RecordsLoaded.WithLabelValues("states").Add(float64(len(states)))
	p.metrics.RecordsLoaded.WithLabelValues("population").Add(float64(len(population)))
	p.metrics.RecordsLoaded.WithLabelValues("worship").Add(float64(len(worship.Records)))
	if n := len(worship.Unresolved); n > 0 {
		p.metrics.RecordsSkipped.WithLabelValues("worship", "unresolved_state").Add(float64(n))
		p.logger.Warn("skipped worship rows with unknown state",
			"count", n,
			"first_line", worship.Unresolved[0].Line,
			"first_state", worship.Unresolved[0].State,
		)
	}

	return domain.BuildChoropleth(features, population, worship.Records), nil
}

// load opens uri and hands the stream to parse, closing it afterwards.
func (p *Pipeline) load(ctx context.Context, dataset, uri string, parse func(io.Reader) error) error {
	rc, err := p.opener.Open(ctx, uri)
	if err != nil {
		return fmt.Errorf("open %s source: %w", dataset, err)
	}
	defer rc.Close()

	if err := parse(rc); err != nil {
		return fmt.Errorf("parse %s source: %w", dataset, err)
	}
	p.logger.Debug("source loaded", "dataset", dataset)
	return nil
}
