package arena

// initialCapacity is the starting capacity for growable containers (spec
// §4.1: "Growable containers double capacity from an initial of 8").
const initialCapacity = 8

// GrowForAppend returns a slice with room for one more element beyond
// len(s), doubling capacity from initialCapacity as needed and failing on
// overflow, matching spec §4.1's container-growth discipline instead of
// relying on Go's built-in append growth policy.
func GrowForAppend[T any](s []T) ([]T, error) {
	if len(s) < cap(s) {
		return s, nil
	}
	newCap := cap(s) * 2
	if newCap == 0 {
		newCap = initialCapacity
	}
	if newCap < 0 {
		return nil, oomErrorf("arena: container capacity overflow")
	}
	grown := make([]T, len(s), newCap)
	copy(grown, s)
	return grown, nil
}

// Insert inserts v at index i, shifting the tail by one slot. If i == len(s)
// it behaves like append. Matches spec §4.1: "array_insert at an interior
// index shifts the tail by one slot in place when capacity suffices and
// otherwise reallocates and copies with the gap left open."
func Insert[T any](s []T, i int, v T) ([]T, error) {
	grown, err := GrowForAppend(s)
	if err != nil {
		return nil, err
	}
	grown = grown[:len(s)+1]
	copy(grown[i+1:], grown[i:len(s)])
	grown[i] = v
	return grown, nil
}

// RemoveAt removes the element at index i, shifting the tail down by one
// slot (spec §4.1: "remove shifts the tail by one").
func RemoveAt[T any](s []T, i int) []T {
	copy(s[i:], s[i+1:])
	var zero T
	s[len(s)-1] = zero
	return s[:len(s)-1]
}
