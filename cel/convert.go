package cel

// This file converts between rulebuilder's field types and CEL's.
// celType declares form fields to the CEL type checker; coerce converts node
// parameters, usually decoded from JSON, to the values CEL expects for the
// declared type.

import (
	"fmt"
	"math"
	"time"

	"github.com/ezachrisen/rulebuilder"
	celgo "github.com/google/cel-go/cel"
)

// celType converts a rulebuilder type to the CEL type used to declare a variable.
func celType(t rulebuilder.Type) (*celgo.Type, error) {
	switch v := t.(type) {
	case rulebuilder.String:
		return celgo.StringType, nil
	case rulebuilder.Int:
		return celgo.IntType, nil
	case rulebuilder.Float:
		return celgo.DoubleType, nil
	case rulebuilder.Bool:
		return celgo.BoolType, nil
	case rulebuilder.Duration:
		return celgo.DurationType, nil
	case rulebuilder.Timestamp:
		return celgo.TimestampType, nil
	case rulebuilder.Any, rulebuilder.Ref:
		return celgo.DynType, nil
	case rulebuilder.List:
		elem, err := celType(v.ValueType)
		if err != nil {
			return nil, fmt.Errorf("list value: %w", err)
		}
		return celgo.ListType(elem), nil
	case rulebuilder.Map:
		key, err := celType(v.KeyType)
		if err != nil {
			return nil, fmt.Errorf("map key: %w", err)
		}
		val, err := celType(v.ValueType)
		if err != nil {
			return nil, fmt.Errorf("map value: %w", err)
		}
		return celgo.MapType(key, val), nil
	case nil:
		return nil, fmt.Errorf("missing type")
	default:
		return nil, fmt.Errorf("unsupported type %T", t)
	}
}

// coerce converts v to the Go value CEL binds for a variable of type t.
func coerce(t rulebuilder.Type, v any) (any, error) {
	switch t := t.(type) {
	case rulebuilder.Int:
		return toInt(v)
	case rulebuilder.Float:
		return toFloat(v)
	case rulebuilder.Duration:
		switch d := v.(type) {
		case time.Duration:
			return d, nil
		case string:
			return time.ParseDuration(d)
		}
	case rulebuilder.Timestamp:
		switch ts := v.(type) {
		case time.Time:
			return ts, nil
		case string:
			return time.Parse(time.RFC3339, ts)
		}
	case rulebuilder.List:
		items, ok := v.([]any)
		if !ok {
			return v, nil
		}
		out := make([]any, len(items))
		for i, item := range items {
			cv, err := coerce(t.ValueType, item)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			out[i] = cv
		}
		return out, nil
	case rulebuilder.Map:
		m, ok := v.(map[string]any)
		if !ok {
			return v, nil
		}
		out := make(map[string]any, len(m))
		for k, item := range m {
			cv, err := coerce(t.ValueType, item)
			if err != nil {
				return nil, fmt.Errorf("key %s: %w", k, err)
			}
			out[k] = cv
		}
		return out, nil
	default:
		return v, nil
	}
	return nil, fmt.Errorf("cannot use %v (%T) as %s", v, v, t)
}

func toInt(v any) (any, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint8:
		return int64(n), nil
	case uint:
		return toInt(uint64(n))
	case uint64:
		if n > math.MaxInt64 {
			return nil, fmt.Errorf("%d overflows int", n)
		}
		return int64(n), nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return nil, fmt.Errorf("%v is not an integer", n)
		}
		// float64(math.MaxInt64) rounds up to 2^63
		if n < math.MinInt64 || n >= math.MaxInt64 {
			return nil, fmt.Errorf("%v overflows int", n)
		}
		return int64(n), nil
	case float32:
		return toInt(float64(n))
	}
	return nil, fmt.Errorf("cannot use %v (%T) as int", v, v)
}

func toFloat(v any) (any, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case int8:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint16:
		return float64(n), nil
	case uint8:
		return float64(n), nil
	}
	return nil, fmt.Errorf("cannot use %v (%T) as float", v, v)
}
