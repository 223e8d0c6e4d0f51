package models

import "time"

// CardRecord holds the fields guessed from the OCR text of one business card.
type CardRecord struct {
	Name           string `json:"name"`
	Designation    string `json:"designation"`
	Email          string `json:"email"`
	Mobile         string `json:"mobile"`
	Address        string `json:"address"`
	Airline        string `json:"airline"`
	SourceFileName string `json:"source_file_name"`
}

// Image processing states reported per archive entry.
const (
	StateExtracted = "extracted"
	StateSkipped   = "skipped"
)

type ImageStatus struct {
	FileName string `json:"file_name"`
	State    string `json:"state"`
	Message  string `json:"message,omitempty"`
}

// DuplicatePair points at two records in a batch that look like the same person.
type DuplicatePair struct {
	First      int     `json:"first"`
	Second     int     `json:"second"`
	Similarity float64 `json:"similarity"`
}

// Batch is the ordered result of one uploaded archive.
type Batch struct {
	ID           string          `json:"id"`
	CreatedAt    time.Time       `json:"created_at"`
	Records      []CardRecord    `json:"records"`
	Unrecognized []string        `json:"unrecognized"`
	Statuses     []ImageStatus   `json:"statuses"`
	Duplicates   []DuplicatePair `json:"duplicates,omitempty"`
}

// Empty reports whether no card in the batch produced any text.
func (b *Batch) Empty() bool {
	return b == nil || len(b.Records) == 0
}
