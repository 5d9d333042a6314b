// Package paginate splits ordered sequences into fixed-capacity pages.
package paginate

import "fmt"

// Chunk partitions items into consecutive pages of at most size items.
// Every page but the last has exactly size items; an empty input yields no pages.
// A non-positive size is a programming error and panics.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		panic(fmt.Sprintf("paginate: invalid page capacity %d", size))
	}
	if len(items) == 0 {
		return nil
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for i := 0; i < len(items); i += size {
		end := min(i+size, len(items))
		chunks = append(chunks, items[i:end:end])
	}
	return chunks
}

// Count returns the number of pages Chunk would produce.
func Count(n, size int) int {
	if size <= 0 {
		panic(fmt.Sprintf("paginate: invalid page capacity %d", size))
	}
	return (n + size - 1) / size
}
