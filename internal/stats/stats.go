// Package stats computes descriptive statistics over a response corpus for
// the listing surface. Everything here is computed fresh per request.
package stats

import (
	"github.com/jdkato/prose/v2"
)

type CorpusStats struct {
	Records   int `json:"records"`
	Words     int `json:"words"`
	Sentences int `json:"sentences"`
}

func Compute(answers []string) (CorpusStats, error) {
	cs := CorpusStats{Records: len(answers)}

	for _, answer := range answers {
		if answer == "" {
			continue
		}
		doc, err := prose.NewDocument(answer,
			prose.WithExtraction(false),
			prose.WithTagging(false),
		)
		if err != nil {
			return cs, err
		}
		cs.Words += len(doc.Tokens())
		cs.Sentences += len(doc.Sentences())
	}

	return cs, nil
}
