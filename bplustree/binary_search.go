package bplus

import "bytes"

// lowerBound returns the first index whose key is >= target.
func lowerBound(keys [][]byte, target []byte) int {
	lo, hi := 0, len(keys)
	for lo < hi {
		mid := lo + (hi-lo)/2
		if bytes.Compare(keys[mid], target) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// upperBound returns the first index whose key is > target. Used to pick the
// routing child, so equal keys descend to the right of their separator.
func upperBound(keys [][]byte, target []byte) int {
	lo, hi := 0, len(keys)
	for lo < hi {
		mid := lo + (hi-lo)/2
		if bytes.Compare(keys[mid], target) <= 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// insertAt inserts elem at index i, shifting the tail right by one.
func insertAt[T any](slice []T, i int, elem T) []T {
	var zero T
	slice = append(slice, zero)
	copy(slice[i+1:], slice[i:])
	slice[i] = elem
	return slice
}

// removeAt deletes the element at index i, shifting the tail left by one.
func removeAt[T any](slice []T, i int) []T {
	return append(slice[:i], slice[i+1:]...)
}
