// Package canon provides the canonical serialization form shared by the
// rule hasher, the artifact generator, and the evidence Merkle builder.
//
// Canonicalization rules:
//   - maps are recursively canonicalized and re-marshaled with sorted keys
//   - slices/arrays are recursively canonicalized, order preserved
//   - strings are normalized to NFC
//   - whole-valued floats are narrowed to int64; fractional floats are rejected
//   - nil values are stripped from maps
package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"golang.org/x/text/unicode/norm"
)

// ErrFractional is returned when a float value cannot be narrowed to an
// integer without loss.
var ErrFractional = errors.New("canon: fractional numbers are not allowed in canonical form")

// Canonicalize recursively transforms an arbitrary Go value (typically the
// result of json.Unmarshal into interface{}, or a JSON-tagged struct) into
// its canonical form.
func Canonicalize(v any) (any, error) {
	return canonicalize(reflect.ValueOf(v))
}

func canonicalize(val reflect.Value) (any, error) {
	if !val.IsValid() {
		return nil, nil
	}

	switch val.Kind() {
	case reflect.Interface, reflect.Ptr:
		if val.IsNil() {
			return nil, nil
		}
		return canonicalize(val.Elem())

	case reflect.Map:
		out := make(map[string]any, val.Len())
		iter := val.MapRange()
		for iter.Next() {
			k := fmt.Sprintf("%v", iter.Key().Interface())
			cv, err := canonicalize(iter.Value())
			if err != nil {
				return nil, err
			}
			if cv == nil {
				continue
			}
			out[k] = cv
		}
		return out, nil

	case reflect.Struct:
		// Route structs through JSON tags so field names and omitempty
		// semantics are respected, then canonicalize the resulting map.
		raw, err := json.Marshal(val.Interface())
		if err != nil {
			return nil, err
		}
		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return nil, err
		}
		return canonicalize(reflect.ValueOf(generic))

	case reflect.Slice, reflect.Array:
		out := make([]any, val.Len())
		for i := 0; i < val.Len(); i++ {
			cv, err := canonicalize(val.Index(i))
			if err != nil {
				return nil, err
			}
			out[i] = cv
		}
		return out, nil

	case reflect.String:
		return norm.NFC.String(val.String()), nil

	case reflect.Float32, reflect.Float64:
		f := val.Float()
		if f != float64(int64(f)) {
			return nil, ErrFractional
		}
		return int64(f), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return val.Int(), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(val.Uint()), nil

	case reflect.Bool:
		return val.Bool(), nil

	default:
		return nil, fmt.Errorf("canon: unsupported kind %s", val.Kind())
	}
}

// Bytes returns the canonical JSON bytes for v (sorted keys, NFC strings,
// integral numbers). Map key order is guaranteed by encoding/json.
func Bytes(v any) ([]byte, error) {
	can, err := Canonicalize(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(can)
}

// Hash returns the "sha256:<hex>" digest of the canonical bytes of v.
func Hash(v any) (string, error) {
	b, err := Bytes(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return "sha256:" + hex.EncodeToString(sum[:]), nil
}
