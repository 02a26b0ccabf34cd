package models

// FileEntry is the JSON shape of a FileRecord on the wire.
type FileEntry struct {
	Path   string `json:"Path"`
	Size   uint64 `json:"Size"`
	Time   int64  `json:"Time"`
	Delete bool   `json:"Delete"`
}

// Record converts a wire entry back to a FileRecord.
func (e FileEntry) Record() FileRecord {
	return FileRecord{Path: e.Path, Size: e.Size, ModifiedAt: e.Time, Deleted: e.Delete}
}

// ListResponse is the body of GET /list.
type ListResponse struct {
	Files []FileEntry `json:"Files"`
}

// DirResponse is the body of GET /dir.
type DirResponse struct {
	Dir *DirectoryNode `json:"Dir"`
}

// ErrorResponse is returned by handlers on failure.
type ErrorResponse struct {
	Error string `json:"error"`
}
