package memstore

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/vinicius-lino-figueiredo/bst"
)

// idComparer orders identities in the primary-key index.
type idComparer struct{}

// newIDComparer returns the comparer used by the primary-key index.
func newIDComparer() bst.Comparer[any, any] {
	return idComparer{}
}

// CompareKeys implements [bst.Comparer].
func (idComparer) CompareKeys(a, b any) (int, error) { return compare(a, b), nil }

// CompareValues implements [bst.Comparer].
func (idComparer) CompareValues(a, b any) (bool, error) { return valueEqual(a, b), nil }

// compare orders two raw values: numbers by magnitude regardless of width,
// then strings, booleans and times by their natural order. Values of
// unrelated types order by type name so sorting stays total.
func compare(a, b any) int {
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}

	switch at := a.(type) {
	case string:
		if bt, ok := b.(string); ok {
			return strings.Compare(at, bt)
		}
	case bool:
		if bt, ok := b.(bool); ok {
			switch {
			case at == bt:
				return 0
			case bt:
				return -1
			default:
				return 1
			}
		}
	case time.Time:
		if bt, ok := b.(time.Time); ok {
			return at.Compare(bt)
		}
	}

	return strings.Compare(fmt.Sprintf("%T", a), fmt.Sprintf("%T", b))
}

// valueEqual reports raw value equality, treating numeric values of
// different widths as equal when their magnitudes match.
func valueEqual(a, b any) bool {
	if af, aok := asFloat(a); aok {
		bf, bok := asFloat(b)
		return bok && af == bf
	}
	return reflect.DeepEqual(a, b)
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	default:
		return 0, false
	}
}
