package entity

// AggregatedCorpus is the budget-bounded text handed to the extraction model.
type AggregatedCorpus struct {
	Text            string
	Truncated       bool
	SourcePageCount int
}
