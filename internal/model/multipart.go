package model

// CompletedPart is one acknowledged chunk of a multipart transfer
type CompletedPart struct {
	Number    int    `json:"number"`
	ContentID string `json:"content_id"` // ETag for uploads, sha256 for downloads
	Size      int64  `json:"size"`
}

// MultipartState is the resumable part of a chunked transfer. It is a plain
// record so it can be written to disk and read back after a restart.
type MultipartState struct {
	SessionID      string          `json:"session_id"` // upload id for uploads
	ChunkSize      int64           `json:"chunk_size"`
	TotalParts     int             `json:"total_parts"`
	CompletedParts []CompletedPart `json:"completed_parts"`
	LastPartNumber int             `json:"last_part_number"`
	IdentityToken  string          `json:"identity_token"`
}

// Clone returns a deep copy of the state
func (m *MultipartState) Clone() *MultipartState {
	if m == nil {
		return nil
	}
	c := *m
	c.CompletedParts = append([]CompletedPart(nil), m.CompletedParts...)
	return &c
}

// CompletedBytes sums the sizes of the acknowledged parts
func (m *MultipartState) CompletedBytes() int64 {
	if m == nil {
		return 0
	}
	var total int64
	for _, p := range m.CompletedParts {
		total += p.Size
	}
	return total
}

// NextPartNumber is the part the executor should continue from
func (m *MultipartState) NextPartNumber() int {
	if m == nil {
		return 1
	}
	return m.LastPartNumber + 1
}

// Reset drops every completed part, keeping the session parameters.
func (m *MultipartState) Reset() {
	m.CompletedParts = nil
	m.LastPartNumber = 0
}
