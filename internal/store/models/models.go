package models

import "time"

// ResponseRecord is one respondent's answer within a session. The identity
// key is (session date, first name, last name); a resubmission under the
// same key overwrites the previous record.
//
// Group is a pointer so an ungrouped record is distinguishable from one
// whose group label happens to be the empty string. The store normalizes
// empty-string groups to nil on write.
type ResponseRecord struct {
	SessionDate string
	FirstName   string
	LastName    string
	Group       *string
	Answer      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// QueryRecord is one completed summarization query against a session.
type QueryRecord struct {
	ID               string
	SessionDate      string
	Group            *string
	OriginalQuestion string
	Question         string
	Response         string
	ResponseCount    int
	LatencyMS        int
	CreatedAt        time.Time
}
