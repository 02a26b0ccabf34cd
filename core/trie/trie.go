package trie

import "errors"

// ErrEmptyKey is returned when inserting an empty key.
var ErrEmptyKey = errors.New("trie: empty key")

const rootIndex = 0

// node is a single arena slot. Children reference other slots by index,
// so a node never points back at its parent.
type node[V any] struct {
	children map[byte]int
	value    V
	complete bool
}

// Trie maps byte strings to values and supports prefix enumeration.
// It is not safe for concurrent use; callers guard it with their own lock.
type Trie[V any] struct {
	nodes []node[V]
	free  []int
	size  int
}

// New creates an empty trie.
func New[V any]() *Trie[V] {
	t := &Trie[V]{}
	t.nodes = append(t.nodes, node[V]{})
	return t
}

// Len returns the number of complete entries.
func (t *Trie[V]) Len() int {
	return t.size
}

// Insert stores value under key. An existing value at the same key is
// overwritten.
func (t *Trie[V]) Insert(key string, value V) error {
	if key == "" {
		return ErrEmptyKey
	}

	idx := rootIndex
	for i := 0; i < len(key); i++ {
		c := key[i]
		next, ok := t.nodes[idx].children[c]
		if !ok {
			next = t.alloc()
			if t.nodes[idx].children == nil {
				t.nodes[idx].children = make(map[byte]int)
			}
			t.nodes[idx].children[c] = next
		}
		idx = next
	}

	n := &t.nodes[idx]
	if !n.complete {
		t.size++
	}
	n.value = value
	n.complete = true
	return nil
}

// Lookup returns the value stored at key. Keys that only exist as a prefix
// of other keys are not found.
func (t *Trie[V]) Lookup(key string) (V, bool) {
	idx, ok := t.walk(key)
	if !ok || !t.nodes[idx].complete {
		var zero V
		return zero, false
	}
	return t.nodes[idx].value, true
}

// PrefixSearch returns every value whose key starts with prefix. The empty
// prefix matches everything. Result order follows map iteration and must
// not be relied upon.
func (t *Trie[V]) PrefixSearch(prefix string) []V {
	results := []V{}
	idx, ok := t.walk(prefix)
	if !ok {
		return results
	}
	return t.collect(idx, results)
}

// Remove clears the entry at key and prunes branches left without entries.
// It reports whether the terminal node itself was pruned; a missing key
// returns false and leaves the trie untouched.
func (t *Trie[V]) Remove(key string) bool {
	path := make([]int, 0, len(key)+1)
	path = append(path, rootIndex)
	idx := rootIndex
	for i := 0; i < len(key); i++ {
		next, ok := t.nodes[idx].children[key[i]]
		if !ok {
			return false
		}
		idx = next
		path = append(path, idx)
	}

	n := &t.nodes[idx]
	if !n.complete {
		return false
	}
	var zero V
	n.complete = false
	n.value = zero
	t.size--

	if len(n.children) > 0 || idx == rootIndex {
		return false
	}

	for i := len(path) - 1; i > 0; i-- {
		child := path[i]
		if len(t.nodes[child].children) > 0 || t.nodes[child].complete {
			break
		}
		parent := path[i-1]
		delete(t.nodes[parent].children, key[i-1])
		t.release(child)
	}
	return true
}

func (t *Trie[V]) walk(key string) (int, bool) {
	idx := rootIndex
	for i := 0; i < len(key); i++ {
		next, ok := t.nodes[idx].children[key[i]]
		if !ok {
			return 0, false
		}
		idx = next
	}
	return idx, true
}

func (t *Trie[V]) collect(idx int, results []V) []V {
	n := &t.nodes[idx]
	if n.complete {
		results = append(results, n.value)
	}
	for _, child := range n.children {
		results = t.collect(child, results)
	}
	return results
}

func (t *Trie[V]) alloc() int {
	if n := len(t.free); n > 0 {
		idx := t.free[n-1]
		t.free = t.free[:n-1]
		return idx
	}
	t.nodes = append(t.nodes, node[V]{})
	return len(t.nodes) - 1
}

func (t *Trie[V]) release(idx int) {
	t.nodes[idx] = node[V]{}
	t.free = append(t.free, idx)
}
