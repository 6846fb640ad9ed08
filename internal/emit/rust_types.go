package emit

import (
	"strconv"

	"github.com/rosy-lang/rosyc/internal/types"
)

// baseRustType names the Rust type the runtime exposes for a scalar SRC
// kind, grounded on rosy_lib's type aliases (RE/ST/LO map to Rust
// primitives directly; CM/VE/DA/CD are runtime-defined types re-exported
// at the runtime crate root once vendored).
func baseRustType(b types.Base) string {
	switch b {
	case types.RE:
		return "f64"
	case types.ST:
		return "String"
	case types.LO:
		return "bool"
	case types.CM:
		return "rosy_runtime::CM"
	case types.VE:
		return "rosy_runtime::VE"
	case types.DA:
		return "rosy_runtime::DA"
	case types.CD:
		return "rosy_runtime::CD"
	default:
		return "()"
	}
}

// rustType renders the full Rust type of a descriptor, wrapping the base
// type in as many Vec<...> layers as the descriptor has array dimensions.
func rustType(d types.Descriptor) string {
	t := baseRustType(d.Base)
	for range d.Dims {
		t = "Vec<" + t + ">"
	}
	return t
}

// defaultValue renders the Rust expression that default-initializes a
// freshly declared variable of descriptor d: the base type's zero value,
// wrapped in nested allocated vectors when dimensions are present.
func defaultValue(d types.Descriptor) string {
	if len(d.Dims) == 0 {
		return scalarDefault(d.Base)
	}
	inner := defaultValue(types.Descriptor{Base: d.Base, Dims: d.Dims[1:]})
	n := d.Dims[0]
	return "vec![" + inner + "; " + strconv.Itoa(n) + "]"
}

func scalarDefault(b types.Base) string {
	switch b {
	case types.RE:
		return "0.0_f64"
	case types.ST:
		return "String::new()"
	case types.LO:
		return "false"
	case types.CM:
		return "rosy_runtime::CM::default()"
	case types.VE:
		return "rosy_runtime::VE::default()"
	case types.DA:
		return "rosy_runtime::DA::default()"
	case types.CD:
		return "rosy_runtime::CD::default()"
	default:
		return "Default::default()"
	}
}

