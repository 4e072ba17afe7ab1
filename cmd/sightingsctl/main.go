// Command sightingsctl classifies, filters and seeds sightings datasets from
// the command line using the same engine as the service.
//
// Usage:
//
//	sightingsctl classify --file data/sightings.json
//	sightingsctl filter --file data/sightings.json --species "Sheep tick" --date-range 1y --severity high
//	sightingsctl seed --out data/sightings.json --count 200 --seed 42
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
