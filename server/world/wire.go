package world

import (
	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

// Network encoding bounds for the two paletted-container flavours this core
// emits. Indirect mode never transmits fewer than *MinMapBits per entry even
// when the live palette would fit in less, so a client-side decode table
// sized for the minimum width is always valid.
const (
	blockMapBits    = 8
	blockMinMapBits = 4
	blockMaxBits    = 15
	biomeMapBits    = 3
	biomeMinMapBits = 1
	biomeMaxBits    = 7
)

// WriteBlockPalette encodes c onto w using the block-container wire shape.
func WriteBlockPalette(w *protocol.Writer, c *PalettedContainer[BlockStateId]) {
	writePalette(w, c, blockMapBits, blockMinMapBits, blockMaxBits, func(w *protocol.Writer, v BlockStateId) {
		x := uint32(v)
		w.Varuint32(&x)
	})
}

// WriteBiomePalette encodes c onto w using the biome-container wire shape.
func WriteBiomePalette(w *protocol.Writer, c *PalettedContainer[BiomeId]) {
	writePalette(w, c, biomeMapBits, biomeMinMapBits, biomeMaxBits, func(w *protocol.Writer, v BiomeId) {
		x := uint32(v)
		w.Varuint32(&x)
	})
}

// writePalette implements the shared wire shape:
//
//	bits_per_entry : u8
//	palette:
//	  bits == 0      -> single id as VarInt                (Homogeneous)
//	  bits <= mapBits -> VarInt(len), VarInt[len]           (Indirect)
//	  else           -> nothing                             (Direct)
//	packed_data    : VarInt(word_count), i64[word_count]
//
// The encoder picks direct mode (maxBits wide) when the palette has more than
// mapBits entries; the decoder tells the modes apart by bits_per_entry alone.
func writePalette[V comparable](w *protocol.Writer, c *PalettedContainer[V], mapBits, minMapBits, maxBits uint8, writeValue func(*protocol.Writer, V)) {
	bits := c.BitsPerEntry()

	if bits == 0 {
		var zero uint8
		w.Uint8(&zero)
		palette, _ := c.ToPaletteAndPacked(0)
		writeValue(w, palette[0])
		var wordCount uint32
		w.Varuint32(&wordCount)
		return
	}

	wireBits, direct := bits, false
	if len(c.palette) > int(mapBits) {
		wireBits, direct = maxBits, true
	} else if wireBits < minMapBits {
		wireBits = minMapBits
	}

	bitsField := wireBits
	w.Uint8(&bitsField)

	palette, packed := c.ToPaletteAndPacked(wireBits)
	if direct {
		// Direct mode carries the values themselves, not palette indices.
		perWord := 64 / int(wireBits)
		packed = make([]int64, len(packed))
		i := 0
		c.ForEach(func(v V) {
			var raw int64
			switch p := any(v).(type) {
			case BlockStateId:
				raw = int64(p)
			case BiomeId:
				raw = int64(p)
			}
			packed[i/perWord] |= raw << (uint(i%perWord) * uint(wireBits))
			i++
		})
	} else {
		n := uint32(len(palette))
		w.Varuint32(&n)
		for _, v := range palette {
			writeValue(w, v)
		}
	}

	wc := uint32(len(packed))
	w.Varuint32(&wc)
	for _, v := range packed {
		word := v
		w.Int64(&word)
	}
}

// ReadBlockPalette decodes a block-container payload from r into a fresh
// PalettedContainer.
func ReadBlockPalette(r *protocol.Reader) *PalettedContainer[BlockStateId] {
	return readPalette(r, 16, blockMapBits, func(r *protocol.Reader) BlockStateId {
		var x uint32
		r.Varuint32(&x)
		return BlockStateId(x)
	})
}

// ReadBiomePalette decodes a biome-container payload from r into a fresh
// PalettedContainer.
func ReadBiomePalette(r *protocol.Reader) *PalettedContainer[BiomeId] {
	return readPalette(r, 4, biomeMapBits, func(r *protocol.Reader) BiomeId {
		var x uint32
		r.Varuint32(&x)
		return BiomeId(x)
	})
}

func readPalette[V comparable](r *protocol.Reader, dim int, mapBits uint8, readValue func(*protocol.Reader) V) *PalettedContainer[V] {
	var bits uint8
	r.Uint8(&bits)

	if bits == 0 {
		v := readValue(r)
		var wordCount uint32
		r.Varuint32(&wordCount)
		return NewPalettedContainer(dim, v)
	}

	var palette []V
	if bits <= mapBits {
		var n uint32
		r.Varuint32(&n)
		palette = make([]V, n)
		for i := range palette {
			palette[i] = readValue(r)
		}
	}

	var wordCount uint32
	r.Varuint32(&wordCount)
	packed := make([]int64, wordCount)
	for i := range packed {
		r.Int64(&packed[i])
	}

	if bits > mapBits {
		// Direct mode carried no palette; packed entries are the raw
		// values themselves, decoded back through readValue's width.
		full := make([]V, dim*dim*dim)
		entriesPerWord := 64 / int(bits)
		mask := int64(1)<<bits - 1
		for i := range full {
			word := packed[i/entriesPerWord]
			offset := uint(i%entriesPerWord) * uint(bits)
			full[i] = directValue[V]((word >> offset) & mask)
		}
		return containerFromCube(dim, full)
	}

	return FromPaletteAndPacked(dim, palette, packed, bits)
}

// directValue converts a raw direct-mode numeric entry back into V. Blocks
// and biomes are themselves small unsigned integers, so this is a plain
// numeric conversion; it is only ever instantiated for BlockStateId and
// BiomeId.
func directValue[V comparable](raw int64) V {
	var v V
	switch p := any(&v).(type) {
	case *BlockStateId:
		*p = BlockStateId(raw)
	case *BiomeId:
		*p = BiomeId(raw)
	}
	return v
}

// containerFromCube builds a PalettedContainer directly from a fully
// decompressed cube of values, rebuilding the palette and counts the same
// way the in-memory Set path would.
func containerFromCube[V comparable](dim int, cube []V) *PalettedContainer[V] {
	c := NewPalettedContainer(dim, cube[0])
	for i, v := range cube {
		if i == 0 {
			continue
		}
		x, z, y := i%dim, (i/dim)%dim, i/(dim*dim)
		c.Set(x, y, z, v)
	}
	return c
}
