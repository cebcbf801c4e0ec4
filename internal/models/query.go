package models

// AnalyzeRequest is the body of an analyze call: a batch of documents and a query to score.
type AnalyzeRequest struct {
	Documents []Document `json:"documents"`
	Query     string     `json:"query"`
	TopK      int        `json:"top_k,omitempty"`
	Source    string     `json:"source,omitempty"`
}

// Validate checks document IDs and applies defaultTopK when TopK is unset.
// An empty document list is valid; the analysis is then empty.
func (r *AnalyzeRequest) Validate(defaultTopK int) error {
	if r.TopK == 0 {
		r.TopK = defaultTopK
	}
	if r.TopK <= 0 {
		return NewInvalidInputError("top_k", "must be positive, got %d", r.TopK)
	}
	for i, doc := range r.Documents {
		if doc.ID <= 0 || int64(doc.ID) > MaxDocumentID {
			return NewInvalidInputError("documents", "document %d has id %d outside [1, %d]", i, doc.ID, MaxDocumentID)
		}
	}
	if r.Source == "" {
		r.Source = "api"
	}
	return nil
}
