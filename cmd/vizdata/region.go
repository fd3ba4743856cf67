package main

import (
	"github.com/couchcryptid/vizdata-etl-service/internal/domain"
	"github.com/spf13/cobra"
)

type regionLookup struct {
	Input        string `json:"input" yaml:"input"`
	Name         string `json:"name" yaml:"name"`
	Abbreviation string `json:"abbreviation" yaml:"abbreviation"`
}

func newRegionCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "region [abbreviation|name]",
		Short: "Convert between a region name and its postal abbreviation",
		Long:  "Convert between a region name and its postal abbreviation. Without an argument, list the whole table.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return c.emit(cmd, domain.Regions())
			}
			input := args[0]
			if name, ok := domain.RegionName(input); ok {
				abbr, _ := domain.RegionAbbreviation(name)
				return c.emit(cmd, regionLookup{Input: input, Name: name, Abbreviation: abbr})
			}
			abbr, err := domain.LookupRegionAbbreviation(input)
			if err != nil {
				return err
			}
			name, _ := domain.RegionName(abbr)
			return c.emit(cmd, regionLookup{Input: input, Name: name, Abbreviation: abbr})
		},
	}
}
