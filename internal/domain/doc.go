// Package domain models geo-tagged wildlife sightings and the filtering and
// severity classification that drive the sightings map.
//
// # Data Source
//
// Sightings are recorded through the /api endpoint and stored as a flat JSON
// array (or a SQLite table). Each record carries a server-assigned integer ID,
// the place name it was reported at, the common and Latin species names, and
// an ISO date:
//
//	{"id": 7, "city": "Leeds", "species": "Sheep tick", "latinName": "Ixodes ricinus", "date": "2025-06-14"}
//
// IDs follow arrival order: the next ID is the largest stored ID plus one.
//
// # Severity Classification
//
// Severity is relative, not absolute. Sightings are grouped by location and
// each group's count is compared with the largest group in the same
// reference set:
//
//	count ≥ 75% of max  → high   (red)
//	count ≥ 25% of max  → medium (orange)
//	otherwise           → low    (green)
//
// Both lower bounds are inclusive. The comparison is done in integer
// arithmetic so boundary counts classify exactly. A location that does not
// appear in the reference set has no tier; lookups fall back to low.
//
// # Filtering
//
// Species, date range and the selected location combine as a logical AND and
// preserve input order. Date ranges are measured from "now" at evaluation
// time:
//
//	1m    age ≤ 30 days
//	1y    age ≤ 365 days
//	2y    age ≤ 730 days
//	more  age > 730 days
//
// The severity filter is a second pass that runs only after the active
// severity mapping has been chosen, because it reads that mapping.
//
// # Frozen Severity
//
// Applying new species or date filters recomputes severity from the
// species/date subset. Clicking a marker only toggles the selected location
// and reuses the active mapping unchanged, so marker colours stay put while
// the visible counts shrink. See [Evaluate] and [Session].
package domain
