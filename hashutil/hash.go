/*
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package hashutil provides canonical, order-independent hashing of
// structured metadata for provenance (spec.md §4.1, component C1).
package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"reflect"
	"sort"
	"strconv"

	"github.com/w2t-align/tempcore/domain"
)

// Hash canonicalizes value and returns its 64-hex-digit SHA-256 digest.
// Two structurally-equal inputs yield the same digest regardless of
// construction order: map keys are sorted, struct fields are walked in
// declaration order (fixed regardless of how the struct literal was
// built), and floats are formatted with a fixed, round-trip-safe
// representation.
func Hash(value any) (string, error) {
	var buf []byte
	buf, err := appendCanonical(buf, reflect.ValueOf(value))
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(buf)
	return hex.EncodeToString(sum[:]), nil
}

// MustHash panics if Hash fails. Intended for callers that have already
// validated their input is serializable.
func MustHash(value any) string {
	digest, err := Hash(value)
	if err != nil {
		panic(err)
	}
	return digest
}

func appendCanonical(buf []byte, v reflect.Value) ([]byte, error) {
	if !v.IsValid() {
		return append(buf, "null"...), nil
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return append(buf, "null"...), nil
		}
		return appendCanonical(buf, v.Elem())

	case reflect.String:
		return appendQuoted(buf, v.String()), nil

	case reflect.Bool:
		if v.Bool() {
			return append(buf, "true"...), nil
		}
		return append(buf, "false"...), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.AppendInt(buf, v.Int(), 10), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.AppendUint(buf, v.Uint(), 10), nil

	case reflect.Float32, reflect.Float64:
		// 'g' with -1 precision gives the shortest representation that
		// round-trips exactly, independent of how the caller constructed
		// the value.
		return strconv.AppendFloat(buf, v.Float(), 'g', -1, 64), nil

	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return append(buf, "null"...), nil
		}
		buf = append(buf, '[')
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				buf = append(buf, ',')
			}
			var err error
			buf, err = appendCanonical(buf, v.Index(i))
			if err != nil {
				return nil, err
			}
		}
		return append(buf, ']'), nil

	case reflect.Map:
		if v.IsNil() {
			return append(buf, "null"...), nil
		}
		keys := v.MapKeys()
		type kv struct {
			key   string
			value reflect.Value
		}
		pairs := make([]kv, 0, len(keys))
		for _, k := range keys {
			if k.Kind() != reflect.String {
				return nil, &domain.HashSerializationError{Reason: fmt.Sprintf("non-string map key type %s", k.Kind())}
			}
			pairs = append(pairs, kv{key: k.String(), value: v.MapIndex(k)})
		}
		sort.Slice(pairs, func(i, j int) bool { return pairs[i].key < pairs[j].key })
		buf = append(buf, '{')
		for i, p := range pairs {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = appendQuoted(buf, p.key)
			buf = append(buf, ':')
			var err error
			buf, err = appendCanonical(buf, p.value)
			if err != nil {
				return nil, err
			}
		}
		return append(buf, '}'), nil

	case reflect.Struct:
		t := v.Type()
		buf = append(buf, '{')
		wrote := false
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if field.PkgPath != "" {
				// unexported field: not serializable, skip like encoding/json would
				continue
			}
			if wrote {
				buf = append(buf, ',')
			}
			wrote = true
			buf = appendQuoted(buf, field.Name)
			buf = append(buf, ':')
			var err error
			buf, err = appendCanonical(buf, v.Field(i))
			if err != nil {
				return nil, err
			}
		}
		return append(buf, '}'), nil

	default:
		return nil, &domain.HashSerializationError{Reason: fmt.Sprintf("unsupported kind %s", v.Kind())}
	}
}

func appendQuoted(buf []byte, s string) []byte {
	buf = append(buf, '"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			buf = append(buf, '\\', byte(r))
		case '\n':
			buf = append(buf, '\\', 'n')
		default:
			buf = append(buf, string(r)...)
		}
	}
	return append(buf, '"')
}
