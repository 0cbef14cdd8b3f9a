package world

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/df-mc/worldupgrader/blockupgrader"
)

// LegacyBlockState is a named, versioned block state in the shape regions
// generated against an older block-state table carry: a name, a property
// bag and the numeric version they were encoded with.
type LegacyBlockState struct {
	Name       string
	Properties map[string]any
	Version    int32
}

// UpgradeBlockState runs a legacy block state through the upgrade schema
// chain, returning the current-version name/properties pair a BlockStateId
// registry resolves against. Region content is itself opaque integers: this
// exists only at the registry boundary a Generator's caller uses to turn
// generation output produced against an older palette into the BlockStateIds
// this core actually stores.
func UpgradeBlockState(s LegacyBlockState) (name string, properties map[string]any) {
	up := blockupgrader.Upgrade(blockupgrader.BlockState{
		Name:       s.Name,
		Properties: s.Properties,
		Version:    s.Version,
	})
	return up.Name, up.Properties
}

// ResolveBlockStateId deterministically maps an upgraded (name, properties)
// pair onto this core's opaque BlockStateId space, by hashing a canonical
// string form of the pair. Property ordering is normalised by sorting keys
// so the same state always resolves to the same id regardless of map
// iteration order.
func ResolveBlockStateId(name string, properties map[string]any) BlockStateId {
	keys := make([]string, 0, len(properties))
	for k := range properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(name)
	for _, k := range keys {
		b.WriteByte(';')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(propertyString(properties[k]))
	}
	return BlockStateId(xxhash.Sum64String(b.String()))
}

func propertyString(v any) string {
	switch p := v.(type) {
	case string:
		return p
	case bool:
		if p {
			return "true"
		}
		return "false"
	case fmt.Stringer:
		return p.String()
	default:
		return fmt.Sprint(p)
	}
}

// UpgradeToBlockStateId runs a legacy block state through the upgrade chain
// and resolves the result to a BlockStateId in one step — the path a fixture
// or generator takes when its recorded content predates the current
// block-state schema.
func UpgradeToBlockStateId(s LegacyBlockState) BlockStateId {
	name, properties := UpgradeBlockState(s)
	return ResolveBlockStateId(name, properties)
}
