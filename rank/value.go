package rank

import (
	"cmp"
	"math"
	"time"
)

type keyKind int

const (
	kindUnsupported keyKind = iota
	kindNumber
	kindString
	kindBool
	kindTime
)

func kindOf(v any) keyKind {
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, uintptr,
		float32, float64:
		return kindNumber
	case string:
		return kindString
	case bool:
		return kindBool
	case time.Time:
		return kindTime
	default:
		return kindUnsupported
	}
}

// CompareValues orders two dynamically typed keys. Numbers of any Go numeric
// type compare by value, strings lexically, false before true, times
// chronologically. Keys of different kinds, or of any other type, are
// incomparable.
func CompareValues(a, b any) (int, error) {
	ka, kb := kindOf(a), kindOf(b)
	if ka == kindUnsupported {
		return 0, &IncomparableKeyError{Left: a}
	}
	if kb == kindUnsupported {
		return 0, &IncomparableKeyError{Left: b}
	}
	if ka != kb {
		return 0, &IncomparableKeyError{Left: a, Right: b}
	}
	return compareKind(ka, a, b), nil
}

// commonKind checks that every key in the pass has the same supported kind.
func commonKind[T any](ks []keyed[T, any]) (keyKind, error) {
	first := ks[0].key
	k := kindOf(first)
	if k == kindUnsupported {
		return k, &IncomparableKeyError{Left: first}
	}
	for _, e := range ks[1:] {
		switch kindOf(e.key) {
		case k:
		case kindUnsupported:
			return k, &IncomparableKeyError{Left: e.key}
		default:
			return k, &IncomparableKeyError{Left: first, Right: e.key}
		}
	}
	return k, nil
}

// compareKind assumes both values are of kind k.
func compareKind(k keyKind, a, b any) int {
	switch k {
	case kindNumber:
		return compareNumbers(a, b)
	case kindString:
		return cmp.Compare(a.(string), b.(string))
	case kindBool:
		return compareBools(a.(bool), b.(bool))
	case kindTime:
		return a.(time.Time).Compare(b.(time.Time))
	}
	return 0
}

func compareBools(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// compareNumbers orders numbers by exact value, whatever their Go types.
// Integer pairs never go through float64, and an integer against a float
// compares the integer with the float's integral part, then its fraction.
// NaN sorts before every other number, as with cmp.Compare.
func compareNumbers(a, b any) int {
	fa, aFloat := asFloat(a)
	fb, bFloat := asFloat(b)
	switch {
	case aFloat && bFloat:
		return cmp.Compare(fa, fb)
	case aFloat:
		return -compareIntFloat(asInteger(b), fa)
	case bFloat:
		return compareIntFloat(asInteger(a), fb)
	}
	return compareIntegers(asInteger(a), asInteger(b))
}

// integer is any Go integer as sign and magnitude. neg implies mag > 0.
type integer struct {
	neg bool
	mag uint64
}

func asInteger(v any) integer {
	switch x := v.(type) {
	case int:
		return fromInt64(int64(x))
	case int8:
		return fromInt64(int64(x))
	case int16:
		return fromInt64(int64(x))
	case int32:
		return fromInt64(int64(x))
	case int64:
		return fromInt64(x)
	case uint:
		return integer{mag: uint64(x)}
	case uint8:
		return integer{mag: uint64(x)}
	case uint16:
		return integer{mag: uint64(x)}
	case uint32:
		return integer{mag: uint64(x)}
	case uint64:
		return integer{mag: x}
	case uintptr:
		return integer{mag: uint64(x)}
	}
	return integer{}
}

func fromInt64(i int64) integer {
	if i >= 0 {
		return integer{mag: uint64(i)}
	}
	// -(i+1) cannot overflow, even for math.MinInt64.
	return integer{neg: true, mag: uint64(-(i + 1)) + 1}
}

func compareIntegers(a, b integer) int {
	switch {
	case a.neg && !b.neg:
		return -1
	case !a.neg && b.neg:
		return 1
	case a.neg:
		return cmp.Compare(b.mag, a.mag)
	default:
		return cmp.Compare(a.mag, b.mag)
	}
}

// twoTo64 is 2^64, the first float64 beyond every uint64 magnitude.
const twoTo64 = 1 << 64

func compareIntFloat(i integer, f float64) int {
	switch {
	case math.IsNaN(f):
		return 1
	case math.IsInf(f, 1):
		return -1
	case math.IsInf(f, -1):
		return 1
	}

	t := math.Trunc(f)
	var ti integer
	switch {
	case t >= twoTo64:
		return -1
	case t <= -twoTo64:
		return 1
	case t < 0:
		ti = integer{neg: true, mag: uint64(-t)}
	default:
		ti = integer{mag: uint64(t)}
	}
	if c := compareIntegers(i, ti); c != 0 {
		return c
	}
	switch frac := f - t; {
	case frac > 0:
		return -1
	case frac < 0:
		return 1
	}
	return 0
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float32:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}
