package model

// SummaryResult is the two-field output of summarization: a short summary and
// a derived title. It is never persisted on its own.
type SummaryResult struct {
	Summary string
	Title   string
}
