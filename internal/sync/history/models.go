package history

// Signature is the stable content fingerprint recorded for every synced
// file. Change detection compares Hash (an xxh3-128 hex digest), so a file
// touched without modification is still considered in sync; Size and MTime
// are kept as a fast path that lets the scanner skip rehashing unchanged
// files.
type Signature struct {
	Size  int64  `json:"size"`
	MTime int64  `json:"mtime"`
	Hash  string `json:"hash"`
}

// Equal reports whether two signatures describe the same content
func (s Signature) Equal(other Signature) bool {
	if s.Hash != "" && other.Hash != "" {
		return s.Hash == other.Hash
	}
	return s.Size == other.Size && s.MTime == other.MTime
}

// Delta accumulates history mutations during a sync run. It is applied to
// the store once at the end of the run, but reflects every individual
// successful action, including those that preceded a failure.
type Delta struct {
	// Upserts maps relative path to the signature recorded after a
	// successful Add or Update
	Upserts map[string]Signature
	// Deletes lists relative paths whose entries are dropped after a
	// successful Remove
	Deletes []string
}

// NewDelta creates an empty delta
func NewDelta() *Delta {
	return &Delta{Upserts: make(map[string]Signature)}
}

// Empty reports whether the delta contains no mutations
func (d *Delta) Empty() bool {
	return d == nil || (len(d.Upserts) == 0 && len(d.Deletes) == 0)
}
