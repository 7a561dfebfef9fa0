package value

import "math/big"

// ToFields implements the `to_fields()` intrinsic:
// every scalar value encodes to exactly one field element; arrays, tuples,
// and structs concatenate their members' encodings in declaration order.
// Futures have no field encoding — calling ToFields on one is a checker
// error, not something this function is asked to handle.
func (v Value) ToFields() []Value {
	switch v.Kind {
	case KindField:
		return []Value{v}
	case KindBool:
		if v.Bool {
			return []Value{Field(big.NewInt(1))}
		}
		return []Value{Field(big.NewInt(0))}
	case KindInt:
		return []Value{Field(new(big.Int).Set(v.Int))}
	case KindScalar:
		return []Value{Field(v.Scalar.BigInt(new(big.Int)))}
	case KindGroup:
		return []Value{Field(v.Group.X.BigInt(new(big.Int)))}
	case KindAddress:
		// Addresses are curve points in the real encoding; this core treats
		// the raw bech32 text as an opaque placeholder field (out of scope:
		// address<->group conversion is a codec concern).
		return []Value{Field(big.NewInt(0))}
	case KindArray:
		var out []Value
		for _, e := range v.Array {
			out = append(out, e.ToFields()...)
		}
		return out
	case KindTuple:
		var out []Value
		for _, e := range v.Tuple {
			out = append(out, e.ToFields()...)
		}
		return out
	case KindStruct:
		var out []Value
		for _, name := range v.FieldOrder {
			out = append(out, v.Struct[name].ToFields()...)
		}
		return out
	default:
		return nil
	}
}
