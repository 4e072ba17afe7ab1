package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/sightings-map-service/internal/domain"
)

func newClassifyCmd() *cobra.Command {
	var (
		file   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Print per-location counts and severity tiers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			all, err := loadFile(cmd.Context(), file)
			if err != nil {
				return err
			}
			mapping := domain.Classify(all)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(mapping)
			}

			counts := domain.CountByLocation(all)
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "LOCATION\tCOUNT\tTIER")
			for _, city := range mapping.Locations() {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", city, counts[city], mapping.Tier(city))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "sightings JSON file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the severity mapping as JSON")
	return cmd
}
