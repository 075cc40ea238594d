// Package record implements the opaque keyed record/container (spec.md
// §6) that Coordinate.Save/Restore read and write. It is a thin typed
// wrapper over a JSON document, using gjson for lookups and sjson for
// mutation-in-place rather than round-tripping through encoding/json's
// map[string]interface{}, matching how the teacher's types/decode.go
// reaches for gjson over a hand-rolled JSON walk.
package record

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Record is a flat, JSON-backed key/value container. The zero value holds
// no keys (its encoding is empty until the first Set); New returns an empty
// record encoded as "{}".
type Record struct {
	raw string
}

// New returns an empty Record.
func New() *Record {
	return &Record{raw: "{}"}
}

// Parse builds a Record from existing JSON bytes.
func Parse(data []byte) (*Record, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("record: invalid JSON")
	}
	return &Record{raw: string(data)}, nil
}

// Bytes returns the record's current JSON encoding.
func (r *Record) Bytes() []byte { return []byte(r.raw) }

func (r *Record) set(path string, value any) {
	out, err := sjson.Set(r.raw, path, value)
	if err != nil {
		// sjson.Set only fails on malformed paths, which this package
		// never constructs from untrusted input.
		panic(fmt.Sprintf("record: set %q: %v", path, err))
	}
	r.raw = out
}

// Has reports whether key exists in the record.
func (r *Record) Has(key string) bool {
	return gjson.Get(r.raw, key).Exists()
}

// SetString, SetFloat64, SetFloat64Slice, SetStringSlice, SetInt and
// SetBool write a scalar or slice field. SetSub embeds another Record as a
// named sub-record (spec.md §6: "linear<k>", "direction<k>", ...).

func (r *Record) SetString(key, v string)   { r.set(key, v) }
func (r *Record) SetFloat64(key string, v float64) { r.set(key, v) }
func (r *Record) SetInt(key string, v int)  { r.set(key, v) }
func (r *Record) SetBool(key string, v bool) { r.set(key, v) }

func (r *Record) SetFloat64Slice(key string, v []float64) {
	r.set(key, v)
}

func (r *Record) SetStringSlice(key string, v []string) {
	r.set(key, v)
}

func (r *Record) SetSub(key string, sub *Record) {
	r.set(key, gjson.Parse(sub.raw).Value())
}

// GetString, GetFloat64, GetInt, GetBool, GetFloat64Slice, GetStringSlice
// and GetSub read back a field written by the corresponding setter. The
// second return is false if the key is absent.

func (r *Record) GetString(key string) (string, bool) {
	res := gjson.Get(r.raw, key)
	if !res.Exists() {
		return "", false
	}
	return res.String(), true
}

func (r *Record) GetFloat64(key string) (float64, bool) {
	res := gjson.Get(r.raw, key)
	if !res.Exists() {
		return 0, false
	}
	return res.Float(), true
}

func (r *Record) GetInt(key string) (int, bool) {
	res := gjson.Get(r.raw, key)
	if !res.Exists() {
		return 0, false
	}
	return int(res.Int()), true
}

func (r *Record) GetBool(key string) (bool, bool) {
	res := gjson.Get(r.raw, key)
	if !res.Exists() {
		return false, false
	}
	return res.Bool(), true
}

func (r *Record) GetFloat64Slice(key string) ([]float64, bool) {
	res := gjson.Get(r.raw, key)
	if !res.Exists() || !res.IsArray() {
		return nil, false
	}
	arr := res.Array()
	out := make([]float64, len(arr))
	for i, e := range arr {
		out[i] = e.Float()
	}
	return out, true
}

func (r *Record) GetStringSlice(key string) ([]string, bool) {
	res := gjson.Get(r.raw, key)
	if !res.Exists() || !res.IsArray() {
		return nil, false
	}
	arr := res.Array()
	out := make([]string, len(arr))
	for i, e := range arr {
		out[i] = e.String()
	}
	return out, true
}

// SetIntSliceLike and GetIntSliceLike store/read a []int through the same
// JSON array machinery as the float64 slice accessors — used for the axis
// maps (worldmap<k>/pixelmap<k>), which are integers but travel fine as
// JSON numbers.
func (r *Record) SetIntSliceLike(key string, v []int) {
	f := make([]float64, len(v))
	for i, x := range v {
		f[i] = float64(x)
	}
	r.set(key, f)
}

func (r *Record) GetIntSliceLike(key string) ([]int, bool) {
	f, ok := r.GetFloat64Slice(key)
	if !ok {
		return nil, false
	}
	out := make([]int, len(f))
	for i, x := range f {
		out[i] = int(x)
	}
	return out, true
}

func (r *Record) GetSub(key string) (*Record, bool) {
	res := gjson.Get(r.raw, key)
	if !res.Exists() {
		return nil, false
	}
	return &Record{raw: res.Raw}, true
}
