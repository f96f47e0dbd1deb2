package geo

import (
	"fmt"
	"math"
)

// gridEpsilon absorbs floating point noise in the cell count so that a
// search span that is an exact multiple of the reference size does not
// gain an extra sliver row or column.
const gridEpsilon = 1e-9

// ComputeSubtiles splits search into a uniform grid whose cells are no
// larger, in kilometers, than reference scaled by safetyScale.
//
// The search region is measured at its own mid-latitude and the reference
// tile at its own. Cells are returned row-major starting at the south-west
// corner. The last row and column are snapped to the search edges so the
// cells partition search exactly.
func ComputeSubtiles(search, reference Bounds, safetyScale float64) ([]Bounds, error) {
	if err := search.Validate(); err != nil {
		return nil, fmt.Errorf("search bounds: %w", err)
	}
	search = search.Normalize()

	kmLon, kmLat := KmPerDegree(search.MidLatitude())
	widthKm := (search.East - search.West) * kmLon
	heightKm := (search.North - search.South) * kmLat

	refWidthKm, refHeightKm := reference.SizeKm()
	refWidthKm *= safetyScale
	refHeightKm *= safetyScale
	if !(refWidthKm > 0) || !(refHeightKm > 0) {
		return nil, fmt.Errorf("%w: reference tile %s has non-positive size (scale %g)",
			ErrConfiguration, reference, safetyScale)
	}

	cols := gridCount(widthKm / refWidthKm)
	rows := gridCount(heightKm / refHeightKm)

	dLon := (search.East - search.West) / float64(cols)
	dLat := (search.North - search.South) / float64(rows)

	tiles := make([]Bounds, 0, rows*cols)
	for i := 0; i < rows; i++ {
		south := search.South + float64(i)*dLat
		north := search.South + float64(i+1)*dLat
		if i == rows-1 {
			north = search.North
		}
		for j := 0; j < cols; j++ {
			west := search.West + float64(j)*dLon
			east := search.West + float64(j+1)*dLon
			if j == cols-1 {
				east = search.East
			}
			tiles = append(tiles, Bounds{North: north, South: south, East: east, West: west})
		}
	}
	return tiles, nil
}

// gridCount returns ceil(ratio) clamped to at least one.
func gridCount(ratio float64) int {
	n := int(math.Ceil(ratio - gridEpsilon))
	if n < 1 {
		return 1
	}
	return n
}
