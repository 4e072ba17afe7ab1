package main

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/sightings-map-service/internal/adapter/coords"
	"github.com/couchcryptid/sightings-map-service/internal/adapter/filestore"
	"github.com/couchcryptid/sightings-map-service/internal/adapter/sqlite"
	"github.com/couchcryptid/sightings-map-service/internal/config"
	"github.com/couchcryptid/sightings-map-service/internal/domain"
)

type tick struct {
	species   string
	latinName string
}

var ticks = []tick{
	{"Sheep tick", "Ixodes ricinus"},
	{"Hedgehog tick", "Ixodes hexagonus"},
	{"Fox tick", "Ixodes canisuga"},
	{"Ornate cow tick", "Dermacentor reticulatus"},
	{"Red sheep tick", "Haemaphysalis punctata"},
}

// seedHorizon is how far back generated dates reach, so every date bucket gets data.
const seedHorizon = 3 * 365

func newSeedCmd() *cobra.Command {
	var (
		out    string
		driver string
		count  int
		seed   uint64
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Append a deterministic mock dataset to a store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if out == "" {
				return fmt.Errorf("--out is required")
			}
			if count < 1 {
				return fmt.Errorf("--count must be positive")
			}
			now, err := evaluationTime(cmd)
			if err != nil {
				return err
			}

			repo, closeRepo, err := openRepo(driver, out)
			if err != nil {
				return err
			}
			defer closeRepo() //nolint:errcheck // read-only after the last Add

			for _, n := range generate(count, seed, now) {
				if _, err := repo.Add(cmd.Context(), n); err != nil {
					return fmt.Errorf("add sighting: %w", err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d sightings into %s\n", count, out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "store path to write to")
	cmd.Flags().StringVar(&driver, "driver", config.StoreDriverFile, "store driver: file or sqlite")
	cmd.Flags().IntVarP(&count, "count", "n", 100, "number of sightings to generate")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")
	return cmd
}

// generate builds count sightings from seed. The same inputs always produce
// the same records.
func generate(count int, seed uint64, now time.Time) []domain.NewSighting {
	rng := rand.New(rand.NewPCG(seed, seed^0x5eed))
	cities := coords.Default().Cities()

	out := make([]domain.NewSighting, count)
	for i := range out {
		t := ticks[rng.IntN(len(ticks))]
		// Squaring skews towards the start of the list so some locations dominate.
		idx := rng.IntN(len(cities))
		idx = idx * idx / len(cities)
		date := now.AddDate(0, 0, -rng.IntN(seedHorizon))
		out[i] = domain.NewSighting{
			City:      cities[idx],
			Species:   t.species,
			LatinName: t.latinName,
			Date:      date.Format("2006-01-02"),
		}
	}
	return out
}

func openRepo(driver, path string) (domain.Repository, func() error, error) {
	switch driver {
	case config.StoreDriverFile:
		return filestore.New(path, stderrLogger()), func() error { return nil }, nil
	case config.StoreDriverSQLite:
		s, err := sqlite.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown driver %q", driver)
	}
}
