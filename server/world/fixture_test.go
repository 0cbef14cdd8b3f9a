package world

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"
)

// TestFixtureGeneratorAppliesLegacyContent drives a deterministic,
// disk-backed fixture through a real Dimension tick cycle: PutLegacy
// upgrades and resolves a legacy fill state plus one override, the fixture
// store records them, and a Dimension configured with a FixtureGenerator
// must load that exact content into the region it spawns.
func TestFixtureGeneratorAppliesLegacyContent(t *testing.T) {
	store, err := OpenFixtureStore(filepath.Join(t.TempDir(), "fixtures"))
	if err != nil {
		t.Fatalf("OpenFixtureStore: %v", err)
	}
	defer store.Close()

	pos := RegionPos{0, 0, 0}
	fill := LegacyBlockState{Name: "minecraft:stone", Version: 17959425}
	dirtCell := [3]int{1, 1, 1}
	overrides := map[[3]int]LegacyBlockState{
		dirtCell: {Name: "minecraft:dirt", Version: 17959425},
	}
	biomes := NewPalettedContainer[BiomeId](4, 1)
	if err := store.PutLegacy(pos, fill, overrides, biomes); err != nil {
		t.Fatalf("PutLegacy: %v", err)
	}

	conf := Config{Log: slog.Default(), Generator: FixtureGenerator{Store: store}, Seed: 1}
	d := conf.New()
	defer d.Close()

	// TicketForced has no timeout, keeping the region resident for as long
	// as the poll loop below needs regardless of generation latency.
	d.tickets.Add(pos, TicketForced)
	d.pre()

	var r *Region
	for i := 0; i < 200 && r == nil; i++ {
		d.post()
		if got, ok := d.regions.Get(pos); ok && got.Status == RegionLoaded {
			r = got
		} else {
			time.Sleep(time.Millisecond)
		}
	}
	if r == nil {
		t.Fatalf("region never reached RegionLoaded")
	}

	stoneId := UpgradeToBlockStateId(fill)
	dirtId := UpgradeToBlockStateId(overrides[dirtCell])

	if got := r.Blocks.Get(0, 0, 0); got != stoneId {
		t.Fatalf("cell (0,0,0) = %d, want %d (stone fill)", got, stoneId)
	}
	if got := r.Blocks.Get(dirtCell[0], dirtCell[1], dirtCell[2]); got != dirtId {
		t.Fatalf("cell %v = %d, want %d (dirt override)", dirtCell, got, dirtId)
	}
	if got := r.Biomes.Get(0, 0, 0); got != BiomeId(1) {
		t.Fatalf("biome (0,0,0) = %d, want 1", got)
	}
}

// TestResolveBlockStateIdDeterministic confirms the registry boundary
// resolves the same legacy state to the same id regardless of property map
// iteration order, and distinct states to distinct ids.
func TestResolveBlockStateIdDeterministic(t *testing.T) {
	a := ResolveBlockStateId("minecraft:stone", map[string]any{"variant": "andesite", "polished": true})
	b := ResolveBlockStateId("minecraft:stone", map[string]any{"polished": true, "variant": "andesite"})
	if a != b {
		t.Fatalf("same properties in different map order resolved to different ids: %d != %d", a, b)
	}

	c := ResolveBlockStateId("minecraft:stone", map[string]any{"variant": "granite", "polished": true})
	if a == c {
		t.Fatalf("distinct property values resolved to the same id: %d", a)
	}
}
