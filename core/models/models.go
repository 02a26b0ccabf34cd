package models

// FileRecord describes a single regular file in the catalog.
type FileRecord struct {
	// Path is slash separated and relative to the scanned root.
	Path string
	// Size is the file length in bytes.
	Size uint64
	// ModifiedAt is the last write time in unix seconds.
	ModifiedAt int64
	// Deleted marks a tombstone for a file that disappeared after the scan.
	Deleted bool
}

// State returns the size/time pair used for change detection.
func (r FileRecord) State() FileState {
	return FileState{Size: r.Size, ModifiedAt: r.ModifiedAt}
}

// Entry converts the record to its wire representation.
func (r FileRecord) Entry() FileEntry {
	return FileEntry{Path: r.Path, Size: r.Size, Time: r.ModifiedAt, Delete: r.Deleted}
}

// FileState is what a destination or the metadata cache knows about a copy.
type FileState struct {
	Size       uint64
	ModifiedAt int64
}

// DirectoryNode summarizes one directory of a scan.
type DirectoryNode struct {
	// Name is the base name of the directory.
	Name string `json:"Name"`
	// FileCount counts direct regular-file children only.
	FileCount uint32 `json:"Count"`
	// Children are the scanned subdirectories.
	Children []*DirectoryNode `json:"Children,omitempty"`
}

// Walk visits the node and all descendants depth first, passing the slash
// joined path from the tree root.
func (d *DirectoryNode) Walk(fn func(path string, node *DirectoryNode)) {
	d.walk(d.Name, fn)
}

func (d *DirectoryNode) walk(path string, fn func(string, *DirectoryNode)) {
	fn(path, d)
	for _, child := range d.Children {
		child.walk(path+"/"+child.Name, fn)
	}
}

// TotalFiles sums FileCount over the whole tree.
func (d *DirectoryNode) TotalFiles() int {
	total := 0
	d.Walk(func(_ string, n *DirectoryNode) {
		total += int(n.FileCount)
	})
	return total
}
