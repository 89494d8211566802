package models

// SearchFilter is the exact-match attribute filter accepted by the search
// service, in the {"@eq": {attr: value}} wire form.
type SearchFilter struct {
	Eq map[string]string `json:"@eq,omitempty"`
}

// IsZero reports whether no filter was supplied.
func (f *SearchFilter) IsZero() bool {
	return f == nil || len(f.Eq) == 0
}

// SearchResult is one ranked chunk returned by the search service.
type SearchResult struct {
	ChunkID         string   `json:"chunk_id"`
	DocumentID      string   `json:"document_id"`
	FileName        string   `json:"file_name"`
	Text            string   `json:"text"`
	DocumentSection string   `json:"document_section"`
	Region          string   `json:"region"`
	Keywords        []string `json:"keywords"`
	Score           float64  `json:"score"`
}
