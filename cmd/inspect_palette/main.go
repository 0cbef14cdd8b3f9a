// Command inspect_palette dumps the bits-per-entry, palette and non-air
// count of a single wire-encoded block PalettedContainer, for debugging the
// network paletted-container encoding.
package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/sandertv/gophertunnel/minecraft/protocol"

	"github.com/ambervale/worldcore/server/world"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: inspect_palette <region.bin>")
		os.Exit(1)
	}
	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		panic(err)
	}

	r := protocol.NewReader(bytes.NewReader(data), 0, false)
	blocks := world.ReadBlockPalette(r)

	fmt.Printf("bits per entry: %d\n", blocks.BitsPerEntry())
	fmt.Printf("non-air count:  %d\n", world.NonAirCount(blocks))

	seen := make(map[world.BlockStateId]int)
	blocks.ForEach(func(v world.BlockStateId) {
		seen[v]++
	})
	for state, count := range seen {
		fmt.Printf("state %5d: %d cells\n", state, count)
	}
}
