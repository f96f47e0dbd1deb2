package geo

import (
	"errors"
	"math"
	"testing"
)

const tolerance = 1e-9

// TestComputeSubtiles tests grid partitioning.
func TestComputeSubtiles(t *testing.T) {
	t.Parallel()

	t.Run("unit square with tenth-degree reference yields 10x10 grid", func(t *testing.T) {
		t.Parallel()

		search := Bounds{North: 1.0, South: 0.0, East: 1.0, West: 0.0}
		ref := Bounds{North: 0.1, South: 0.0, East: 0.1, West: 0.0}

		tiles, err := ComputeSubtiles(search, ref, 1.0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(tiles) != 100 {
			t.Fatalf("expected 100 tiles, got %d", len(tiles))
		}
		for i, tile := range tiles {
			if math.Abs((tile.North-tile.South)-0.1) > tolerance {
				t.Errorf("tile %d: expected height 0.1, got %v", i, tile.North-tile.South)
			}
			if math.Abs((tile.East-tile.West)-0.1) > tolerance {
				t.Errorf("tile %d: expected width 0.1, got %v", i, tile.East-tile.West)
			}
		}
		assertPartition(t, search, tiles)
	})

	t.Run("output is row-major from the south-west corner", func(t *testing.T) {
		t.Parallel()

		search := Bounds{North: 1.0, South: 0.0, East: 1.0, West: 0.0}
		ref := Bounds{North: 0.5, South: 0.0, East: 0.5, West: 0.0}

		tiles, err := ComputeSubtiles(search, ref, 1.0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(tiles) != 4 {
			t.Fatalf("expected 4 tiles, got %d", len(tiles))
		}
		if tiles[0].South != 0 || tiles[0].West != 0 {
			t.Errorf("expected first tile at south-west corner, got %s", tiles[0])
		}
		if tiles[1].West <= tiles[0].West || tiles[1].South != tiles[0].South {
			t.Errorf("expected second tile east of first in same row, got %s", tiles[1])
		}
		if tiles[2].South <= tiles[0].South {
			t.Errorf("expected third tile in the next row north, got %s", tiles[2])
		}
	})

	t.Run("is deterministic", func(t *testing.T) {
		t.Parallel()

		search := Bounds{North: 37.81609909306968, South: 37.703729038459144, East: -122.34046069506836, West: -122.54817096118164}
		ref := Bounds{North: 37.797466660899765, South: 37.79044676337045, East: -122.41580987611296, West: -122.42879176774504}

		a, err := ComputeSubtiles(search, ref, 1.0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		b, err := ComputeSubtiles(search, ref, 1.0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(a) != len(b) {
			t.Fatalf("expected equal lengths, got %d and %d", len(a), len(b))
		}
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("tile %d differs: %s vs %s", i, a[i], b[i])
			}
		}
	})

	t.Run("tiles cover search and do not exceed reference size", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name   string
			search Bounds
			ref    Bounds
			scale  float64
		}{
			{
				name:   "san francisco",
				search: Bounds{North: 37.81609909306968, South: 37.703729038459144, East: -122.34046069506836, West: -122.54817096118164},
				ref:    Bounds{North: 37.797466660899765, South: 37.79044676337045, East: -122.41580987611296, West: -122.42879176774504},
				scale:  1.0,
			},
			{
				name:   "scaled down reference",
				search: Bounds{North: 10, South: 9, East: 20, West: 18.5},
				ref:    Bounds{North: 9.3, South: 9, East: 18.9, West: 18.5},
				scale:  0.5,
			},
			{
				name:   "southern hemisphere",
				search: Bounds{North: -33.7, South: -34.1, East: 151.4, West: 150.9},
				ref:    Bounds{North: -33.9, South: -33.97, East: 151.2, West: 151.1},
				scale:  1.0,
			},
			{
				name:   "reference larger than search",
				search: Bounds{North: 1, South: 0.9, East: 1, West: 0.9},
				ref:    Bounds{North: 5, South: 0, East: 5, West: 0},
				scale:  1.0,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				tiles, err := ComputeSubtiles(tt.search, tt.ref, tt.scale)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				assertPartition(t, tt.search, tiles)

				refW, refH := tt.ref.SizeKm()
				kmLon, kmLat := KmPerDegree(tt.search.Normalize().MidLatitude())
				for i, tile := range tiles {
					w := (tile.East - tile.West) * kmLon
					h := (tile.North - tile.South) * kmLat
					if w > refW*tt.scale*(1+1e-6) {
						t.Errorf("tile %d width %.6f km exceeds %.6f km", i, w, refW*tt.scale)
					}
					if h > refH*tt.scale*(1+1e-6) {
						t.Errorf("tile %d height %.6f km exceeds %.6f km", i, h, refH*tt.scale)
					}
				}
			})
		}
	})

	t.Run("rejects non-positive reference", func(t *testing.T) {
		t.Parallel()

		search := Bounds{North: 1, South: 0, East: 1, West: 0}
		tests := []struct {
			name  string
			ref   Bounds
			scale float64
		}{
			{"zero width", Bounds{North: 1, South: 0, East: 0, West: 0}, 1},
			{"zero height", Bounds{North: 0, South: 0, East: 1, West: 0}, 1},
			{"zero scale", Bounds{North: 1, South: 0, East: 1, West: 0}, 0},
			{"negative scale", Bounds{North: 1, South: 0, East: 1, West: 0}, -1},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()
				_, err := ComputeSubtiles(search, tt.ref, tt.scale)
				if !errors.Is(err, ErrConfiguration) {
					t.Errorf("expected ErrConfiguration, got %v", err)
				}
			})
		}
	})

	t.Run("rejects degenerate search bounds", func(t *testing.T) {
		t.Parallel()

		_, err := ComputeSubtiles(Bounds{North: 1, South: 1, East: 1, West: 0}, Bounds{North: 1, South: 0, East: 1, West: 0}, 1)
		if !errors.Is(err, ErrConfiguration) {
			t.Errorf("expected ErrConfiguration, got %v", err)
		}
	})

	t.Run("normalizes inverted search bounds", func(t *testing.T) {
		t.Parallel()

		tiles, err := ComputeSubtiles(Bounds{North: 0, South: 1, East: 0, West: 1}, Bounds{North: 0.5, South: 0, East: 0.5, West: 0}, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertPartition(t, Bounds{North: 1, South: 0, East: 1, West: 0}, tiles)
	})
}

// assertPartition checks that tiles form a gap-free, overlap-free grid over search.
func assertPartition(t *testing.T, search Bounds, tiles []Bounds) {
	t.Helper()

	search = search.Normalize()
	var area float64
	for i, tile := range tiles {
		if tile.North <= tile.South || tile.East <= tile.West {
			t.Fatalf("tile %d is degenerate: %s", i, tile)
		}
		if tile.South < search.South-tolerance || tile.North > search.North+tolerance ||
			tile.West < search.West-tolerance || tile.East > search.East+tolerance {
			t.Fatalf("tile %d %s escapes search %s", i, tile, search)
		}
		area += (tile.North - tile.South) * (tile.East - tile.West)
	}
	want := (search.North - search.South) * (search.East - search.West)
	if math.Abs(area-want) > 1e-9*math.Max(1, want) {
		t.Errorf("tile area %v does not equal search area %v", area, want)
	}

	for i := range tiles {
		for j := i + 1; j < len(tiles); j++ {
			a, b := tiles[i], tiles[j]
			overlapLat := math.Min(a.North, b.North) - math.Max(a.South, b.South)
			overlapLng := math.Min(a.East, b.East) - math.Max(a.West, b.West)
			if overlapLat > tolerance && overlapLng > tolerance {
				t.Fatalf("tiles %d and %d overlap: %s %s", i, j, a, b)
			}
		}
	}
}

// TestTileKey tests artifact file name derivation.
func TestTileKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		north float64
		west  float64
		want  string
	}{
		{"typical", 37.730169051308685, -122.38933369885972, "tile_37_730169051308685_long_-122_38933369885972"},
		{"integral values keep a zero decimal", 37, -122, "tile_37_0_long_-122_0"},
		{"negative north", -33.5, 151.25, "tile_-33_5_long_151_25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TileKey(tt.north, tt.west); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}

	t.Run("tile file name appends json", func(t *testing.T) {
		t.Parallel()
		tile := NewTile(Bounds{North: 1.5, South: 1, East: 2, West: 1.25})
		if tile.FileName() != "tile_1_5_long_1_25.json" {
			t.Errorf("unexpected file name %q", tile.FileName())
		}
		if !IsTileFileName(tile.FileName()) {
			t.Error("expected IsTileFileName to accept generated name")
		}
		for _, name := range []string{"visited_tiles.json", "tile_links.json"} {
			if IsTileFileName(name) {
				t.Errorf("expected %s to be rejected", name)
			}
		}
	})
}

// TestKmPerDegree tests the degree conversion.
func TestKmPerDegree(t *testing.T) {
	t.Parallel()

	lon, lat := KmPerDegree(0)
	if lon != 111.320 || lat != 110.574 {
		t.Errorf("unexpected equator values %v %v", lon, lat)
	}
	lon60, _ := KmPerDegree(60)
	if math.Abs(lon60-55.66) > 1e-6 {
		t.Errorf("expected ~55.66 km at 60 degrees, got %v", lon60)
	}
}
