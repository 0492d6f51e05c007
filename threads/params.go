package threads

import (
	"encoding"
	"fmt"
	"maps"
	"net/url"
	"reflect"
	"strconv"
)

// Params holds request parameters. GET requests send them as a query string,
// POST requests as a JSON object.
type Params map[string]any

// Merge returns a new Params holding base overlaid with overrides.
// Keys present in overrides win. Neither input is modified.
func Merge(base, overrides Params) Params {
	out := make(Params, len(base)+len(overrides))
	maps.Copy(out, base)
	maps.Copy(out, overrides)
	return out
}

// Values encodes the params as URL query values.
// Nil values are left out, slices add one value per element.
func (p Params) Values() (url.Values, error) {
	out := make(url.Values, len(p))
	for k, v := range p {
		if v == nil {
			continue
		}

		if s, ok := formatScalar(v); ok {
			out.Set(k, s)
			continue
		}

		ref := reflect.ValueOf(v)
		if ref.Kind() != reflect.Slice && ref.Kind() != reflect.Array {
			return nil, fmt.Errorf("can't encode query param '%s' with type: %T", k, v)
		}
		for i := 0; i < ref.Len(); i++ {
			elem := ref.Index(i).Interface()
			if elem == nil {
				continue
			}
			s, ok := formatScalar(elem)
			if !ok {
				return nil, fmt.Errorf("can't encode query param '%s' with element type: %T", k, elem)
			}
			out.Add(k, s)
		}
	}
	return out, nil
}

func formatScalar(v any) (string, bool) {
	switch v := v.(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(v), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case encoding.TextMarshaler:
		b, err := v.MarshalText()
		if err != nil {
			return "", false
		}
		return string(b), true
	case fmt.Stringer:
		return v.String(), true
	default:
		return "", false
	}
}
