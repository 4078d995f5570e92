// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slice holds the generic helpers the standard [slices] package lacks.
package slice

// Map returns transform applied to every element. A nil input stays nil.
func Map[T, U any](input []T, transform func(T) U) []U {
	if input == nil {
		return nil
	}

	out := make([]U, len(input))
	for i, v := range input {
		out[i] = transform(v)
	}
	return out
}

// Filter returns the elements for which keep is true, in order.
// The input is never modified.
func Filter[T any](input []T, keep func(T) bool) []T {
	if input == nil {
		return nil
	}

	var out []T
	for _, v := range input {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// Sum folds the elements into a total using value.
func Sum[T any, N int | float64](input []T, value func(T) N) N {
	var total N
	for _, v := range input {
		total += value(v)
	}
	return total
}
