package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/sightings-map-service/internal/domain"
)

func newFilterCmd() *cobra.Command {
	var (
		file      string
		species   string
		dateRange string
		city      string
		severity  string
		frozen    bool
	)
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Print the sightings matching a filter combination",
		Long: `Print the sightings matching a filter combination as a JSON array.

Severity is recomputed from the species/date subset unless --frozen is set,
in which case the tiers of the full dataset are kept.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			now, err := evaluationTime(cmd)
			if err != nil {
				return err
			}
			dr, err := domain.ParseDateRange(dateRange)
			if err != nil {
				return err
			}
			c := domain.FilterCriteria{Species: species, DateRange: dr, Location: city}
			if severity != "" {
				tier, err := domain.ParseSeverityTier(severity)
				if err != nil {
					return err
				}
				c = c.WithSeverity(tier)
			}

			all, err := loadFile(cmd.Context(), file)
			if err != nil {
				return err
			}
			res := domain.Evaluate(all, c, domain.Classify(all), !frozen, now)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res.Sightings)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "sightings JSON file")
	cmd.Flags().StringVar(&species, "species", "", "exact species name")
	cmd.Flags().StringVar(&dateRange, "date-range", "", "1m, 1y, 2y or more")
	cmd.Flags().StringVar(&city, "city", "", "exact location name")
	cmd.Flags().StringVar(&severity, "severity", "", "low, medium or high")
	cmd.Flags().BoolVar(&frozen, "frozen", false, "keep the full-dataset severity tiers")
	return cmd
}
