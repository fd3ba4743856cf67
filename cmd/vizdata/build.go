package main

import (
	"fmt"

	"github.com/couchcryptid/vizdata-etl-service/internal/adapter/csvsource"
	"github.com/couchcryptid/vizdata-etl-service/internal/domain"
	"github.com/couchcryptid/vizdata-etl-service/internal/pipeline"
	"github.com/spf13/cobra"
)

// runOnce derives the datasets named by sources in a single pipeline run.
func (c *cli) runOnce(cmd *cobra.Command, sources pipeline.Sources, minShared int) (domain.Snapshot, error) {
	opener, err := c.opener()
	if err != nil {
		return domain.Snapshot{}, err
	}
	p, err := pipeline.New(opener, nil, c.logger, c.metrics, pipeline.Options{
		Sources:              sources,
		MinSharedIngredients: minShared,
	})
	if err != nil {
		return domain.Snapshot{}, err
	}
	return p.RunOnce(cmd.Context())
}

func newRecipesCmd(c *cli) *cobra.Command {
	var (
		source    string
		minShared int
	)
	cmd := &cobra.Command{
		Use:   "recipes",
		Short: "Build the recipe network graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := c.runOnce(cmd, pipeline.Sources{Recipes: source}, minShared)
			if err != nil {
				return err
			}
			return c.emit(cmd, snap.Recipes)
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "Recipe CSV path or URI (required)")
	cmd.Flags().IntVar(&minShared, "min-shared", domain.DefaultMinSharedIngredients, "Link recipes sharing more than this many ingredients")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}

type countySources struct {
	worship, population, topology string
}

func (s *countySources) register(cmd *cobra.Command, required bool) {
	cmd.Flags().StringVar(&s.worship, "worship", "", "Places of worship CSV path or URI")
	cmd.Flags().StringVar(&s.population, "population", "", "County population CSV path or URI")
	cmd.Flags().StringVar(&s.topology, "topology", "", "US Atlas counties TopoJSON path or URI")
	if required {
		_ = cmd.MarkFlagRequired("worship")
		_ = cmd.MarkFlagRequired("population")
		_ = cmd.MarkFlagRequired("topology")
	}
}

func newCountiesCmd(c *cli) *cobra.Command {
	var src countySources
	cmd := &cobra.Command{
		Use:   "counties",
		Short: "Build the per-capita county choropleth",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := c.runOnce(cmd, pipeline.Sources{
				Worship:    src.worship,
				Population: src.population,
				Topology:   src.topology,
			}, 0)
			if err != nil {
				return err
			}
			return c.emit(cmd, snap.Counties)
		},
	}
	src.register(cmd, true)
	return cmd
}

func newSnapshotCmd(c *cli) *cobra.Command {
	var (
		recipes   string
		minShared int
		src       countySources
	)
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Build a full snapshot fixture from every given source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := c.runOnce(cmd, pipeline.Sources{
				Recipes:    recipes,
				Worship:    src.worship,
				Population: src.population,
				Topology:   src.topology,
			}, minShared)
			if err != nil {
				return err
			}
			return c.emit(cmd, snap)
		},
	}
	cmd.Flags().StringVar(&recipes, "recipes", "", "Recipe CSV path or URI")
	cmd.Flags().IntVar(&minShared, "min-shared", domain.DefaultMinSharedIngredients, "Link recipes sharing more than this many ingredients")
	src.register(cmd, false)
	return cmd
}

func newTradeCmd(c *cli) *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "trade",
		Short: "Parse textile trade records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opener, err := c.opener()
			if err != nil {
				return err
			}
			rc, err := opener.Open(cmd.Context(), source)
			if err != nil {
				return err
			}
			defer rc.Close()

			records, err := csvsource.ReadTrade(rc)
			if err != nil {
				return fmt.Errorf("parse trade source: %w", err)
			}
			return c.emit(cmd, records)
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "Trade CSV path or URI (required)")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}
