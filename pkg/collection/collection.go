// Package collection holds the small generic slice helpers used when
// composing order snapshots into other shapes (email line-ups, feeds).
package collection

// Map transforms every element of s through fn.
func Map[T, R any](s []T, fn func(T) R) []R {
	out := make([]R, len(s))
	for i, item := range s {
		out[i] = fn(item)
	}
	return out
}

// Pluck extracts one field from every element, preserving order:
//
//	names := collection.Pluck(order.Items, func(i models.OrderItem) string { return i.Name })
func Pluck[T, R any](s []T, fn func(T) R) []R {
	return Map(s, fn)
}
