package models

// ContentEntry is a single file prepared for a directory upload.
type ContentEntry struct {
	// VirtualPath - path inside the store, rooted at the upload prefix (ex. public/img/logo.png)
	VirtualPath string `json:"path"`

	// Content - full file content
	Content []byte `json:"-"`
}

// AddedObject is one object reported back by the store after an upload.
type AddedObject struct {
	// Path - virtual path (or the hash itself for single files)
	Path string `json:"path"`

	// Hash - content identifier
	Hash string `json:"hash"`

	// Size - size reported by the store
	Size uint64 `json:"size"`
}
