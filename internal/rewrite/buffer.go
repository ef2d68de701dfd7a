// Package rewrite implements the byte-level edit buffer the instrumentation
// engine renders its mutation through.
//
// The buffer accumulates insert and replace operations against the original
// source text and applies them in one pass. Edits never modify the source
// they were planned against, so every offset an edit carries keeps meaning
// no matter how many edits are queued before it.
//
// Ordering contract: edits apply in ascending offset order. When an insert
// and a replace share an offset, the inserted text lands first. That is
// exactly what a prepend-block-then-replace-first-expression mutation
// needs: the block precedes the statement even when the replaced expression
// starts at the statement's first byte.
//
// Overlapping edits indicate a logic bug in the planner, not bad input, and
// surface as an error from Render.
package rewrite

import (
	"fmt"
	"sort"
	"strings"
)

// Buffer collects edits against one source text.
//
// Not safe for concurrent use; one invocation owns one buffer.
type Buffer struct {
	src   string
	edits []edit
}

// edit is one pending operation. An insert has length 0.
type edit struct {
	off    int
	length int
	text   string
	seq    int // insertion-order tiebreak for equal offsets
}

// NewBuffer creates an edit buffer over the given source text.
func NewBuffer(src string) *Buffer {
	return &Buffer{src: src}
}

// Insert queues text to be inserted at the given byte offset.
func (b *Buffer) Insert(off int, text string) {
	b.edits = append(b.edits, edit{off: off, text: text, seq: len(b.edits)})
}

// Replace queues the replacement of length bytes at off with text.
func (b *Buffer) Replace(off, length int, text string) {
	b.edits = append(b.edits, edit{off: off, length: length, text: text, seq: len(b.edits)})
}

// Len reports the number of queued edits.
func (b *Buffer) Len() int {
	return len(b.edits)
}

// Render applies all queued edits and returns the resulting text.
//
// Errors:
//   - an edit outside the source bounds
//   - two edits whose affected ranges overlap
//
// Both are programmer errors in the planning layer and the caller should
// treat them as fatal for the invocation.
func (b *Buffer) Render() (string, error) {
	sorted := make([]edit, len(b.edits))
	copy(sorted, b.edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].off != sorted[j].off {
			return sorted[i].off < sorted[j].off
		}
		// Inserts before replaces at the same offset; otherwise keep
		// queue order.
		if (sorted[i].length == 0) != (sorted[j].length == 0) {
			return sorted[i].length == 0
		}
		return sorted[i].seq < sorted[j].seq
	})

	var out strings.Builder
	out.Grow(len(b.src) + totalInserted(sorted))
	cursor := 0
	for _, e := range sorted {
		if e.off < 0 || e.off+e.length > len(b.src) {
			return "", fmt.Errorf("edit [%d,%d) out of bounds for %d-byte source",
				e.off, e.off+e.length, len(b.src))
		}
		if e.off < cursor {
			return "", fmt.Errorf("overlapping edits at offset %d", e.off)
		}
		out.WriteString(b.src[cursor:e.off])
		out.WriteString(e.text)
		cursor = e.off + e.length
	}
	out.WriteString(b.src[cursor:])
	return out.String(), nil
}

func totalInserted(edits []edit) int {
	n := 0
	for _, e := range edits {
		n += len(e.text)
	}
	return n
}
