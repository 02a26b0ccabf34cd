// Package trie provides a byte-wise prefix tree used as the file catalog index.
//
// Keys are matched byte for byte and case-sensitively. Nodes live in an arena
// slice and reference their children by index, which keeps ownership strictly
// parent to child and makes pruning on removal a matter of recycling slots.
//
// # Usage
//
//	idx := trie.New[*models.FileRecord]()
//	_ = idx.Insert("docs/a.txt", rec)
//	all := idx.PrefixSearch("docs/")
package trie
