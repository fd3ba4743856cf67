// Package domain derives the datasets behind the recipe network and the
// county choropleth visualizations.
//
// # Data Sources
//
// Recipes come from an adaptation of the Food.com recipes dataset
// (https://www.kaggle.com/shuyangli94/food-com-recipes-and-user-interactions),
// one row per recipe with comma-joined ingredient and tag lists.
//
// The choropleth joins three sources:
//
//	US Places of Worship, 2019      https://data.world/awram/us-places-of-worship
//	US Atlas TopoJSON (counties)    https://github.com/topojson/us-atlas
//	Census county population 2019   https://www.census.gov/data/datasets/time-series/demo/popest/2010s-counties-total.html
//
// # Recipe Network
//
// Every recipe becomes a node. Two recipes are linked when they share more
// than [DefaultMinSharedIngredients] ingredient strings (exact, case-sensitive
// match). Links are emitted once per unordered pair, with the source being the
// recipe that appears first in the input.
//
// Duration tags are classified by first match in priority order:
//
//	15-minutes-or-less  →  15-minutes
//	30-minutes-or-less  →  30-minutes
//	60-minutes-or-less  →  60-minutes
//	(none)              →  over60
//
// # County Choropleth
//
// Counties are keyed by their five-digit FIPS code (state code + county code).
// Topology features seed the key set; population rows overlay it, so a county
// known to either source appears exactly once in the output. Worship
// membership is summed per (full state name, county name) and attached to a
// county only when both the uppercased county name and the state name match.
// County names alone are ambiguous: "WASHINGTON" exists in 30 states.
//
//	perCapita = members / population
//
// A non-finite ratio (zero or missing population) is reported as 0.
//
// # Dirty Data
//
// Numeric fields are coerced once at ingestion by [CoerceNumericOrDefault]:
// empty, unparseable, NaN and infinite values become 0. Missing keys are not
// coerced; they fail the batch with [ErrMalformedRecord].
package domain
