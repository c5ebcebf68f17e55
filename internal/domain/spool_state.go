package domain

import "time"

// SpoolState is the persisted read position of a tailed spool file.
// It lets the tailer resume after a restart without re-sending lines.
type SpoolState struct {
	// Path is the spool file being read.
	Path string `json:"path"`

	// Offset is the byte offset just past the last consumed line.
	Offset int64 `json:"offset"`

	// Lines is the number of lines consumed since the state was created.
	Lines uint64 `json:"lines"`

	// LastCommitAt is the time the offset last advanced.
	LastCommitAt time.Time `json:"last_commit_at"`
}

// IsEmpty returns true if the state has not been initialized.
func (s SpoolState) IsEmpty() bool {
	return s.Path == ""
}

// Advance moves the offset forward after lines were handed to the client.
func (s *SpoolState) Advance(bytes int64, lines int, now time.Time) {
	s.Offset += bytes
	s.Lines += uint64(lines)
	s.LastCommitAt = now
}

// Reset starts over at the beginning of path, used after truncation or rotation.
func (s *SpoolState) Reset(path string) {
	s.Path = path
	s.Offset = 0
}
