package profile

import (
	"fmt"
	"time"
)

// ConflictRecord captures a mismatch between a stored field value and a
// newly extracted one, awaiting the user's yes/no confirmation.
type ConflictRecord struct {
	Field     string    `json:"field"`
	Existing  string    `json:"existing"`
	Proposed  string    `json:"proposed"`
	CreatedAt time.Time `json:"created_at"`
}

// DetectConflicts compares newly extracted fields against the current
// profile and returns one record per field whose stored value differs from
// the proposed one. Fields not yet stored never conflict.
func DetectConflicts(current, extracted map[string]string) []ConflictRecord {
	var conflicts []ConflictRecord
	for _, f := range RequiredFields {
		proposed, ok := extracted[f.Key]
		if !ok || proposed == "" {
			continue
		}
		existing := current[f.Key]
		if existing == "" || existing == proposed {
			continue
		}
		conflicts = append(conflicts, ConflictRecord{
			Field:     f.Key,
			Existing:  existing,
			Proposed:  proposed,
			CreatedAt: time.Now(),
		})
	}
	return conflicts
}

// Prompt renders the confirmation question for a pending conflict.
func (c ConflictRecord) Prompt() string {
	return fmt.Sprintf("프로필 변경이 감지되었습니다: %s = %s (기존: %s)\n변경할까요? (네/아니오)",
		LabelFor(c.Field), c.Proposed, c.Existing)
}
