package models

import "fmt"

// ReportKind selects which report variant is produced.
type ReportKind int

const (
	// KindCandidate is an interview-candidate report, including the
	// position-suitability section.
	KindCandidate ReportKind = 0

	// KindCustomer is a customer-conversation report; the suitability
	// section is removed during assembly.
	KindCustomer ReportKind = 1
)

// Valid reports whether the kind is one of the two known variants.
func (k ReportKind) Valid() bool {
	return k == KindCandidate || k == KindCustomer
}

// SessionRecord is the full input record for one report: one subject, one
// session, one question/answer pair. It is built once from the uploaded CSV
// and never mutated afterwards.
type SessionRecord struct {
	PersonName  string `json:"person_name"`
	SessionName string `json:"session_name"`

	Score    float64 `json:"score"`
	AvgScore float64 `json:"avg_score"`

	Emotions EmotionRecord `json:"emotions"`

	OffScreenSeconds    float64 `json:"off_screen_seconds"`
	AvgOffScreenSeconds float64 `json:"avg_off_screen_seconds"`
	OffScreenCount      int     `json:"off_screen_count"`
	AvgOffScreenCount   int     `json:"avg_off_screen_count"`

	Question string `json:"question"`
	Answer   string `json:"answer"`

	Kind ReportKind `json:"kind"`
}

// Validate checks the record invariants: a known kind and emotion
// percentages within [0,100].
func (s *SessionRecord) Validate() error {
	if !s.Kind.Valid() {
		return fmt.Errorf("tip must be 0 or 1, got %d", int(s.Kind))
	}
	for _, key := range EmotionKeys {
		if v, ok := s.Emotions.Value(key); ok && (v < 0 || v > 100) {
			return fmt.Errorf("%s out of range [0,100]: %v", key.Column(), v)
		}
		if a, ok := s.Emotions.Averages[key]; ok && (a < 0 || a > 100) {
			return fmt.Errorf("%s out of range [0,100]: %v", key.AverageColumn(), a)
		}
	}
	return nil
}

// ReportFilename derives the download filename from the subject and session
// names, matching the historical naming of generated reports.
func (s *SessionRecord) ReportFilename() string {
	return fmt.Sprintf("%s_%s_Rapor.pdf", s.PersonName, s.SessionName)
}
