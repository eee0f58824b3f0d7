// Package moderation screens user-submitted text with an external classifier
// before it is stored.
package moderation

import (
	"context"
	"sort"
)

type Verdict struct {
	Flagged        bool
	Categories     map[string]bool
	CategoryScores map[string]float64

	// The author is a moderator and the classifier was never asked.
	Bypassed bool
}

// The categories the classifier flagged, sorted.
func (v Verdict) FlaggedCategories() []string {
	var res []string
	for name, flagged := range v.Categories {
		if flagged {
			res = append(res, name)
		}
	}
	sort.Strings(res)
	return res
}

type Classifier interface {
	// Returns an error matching qaerr.ErrModerationUnavailable when no verdict
	// could be produced.
	Classify(ctx context.Context, content string) (Verdict, error)
}

type ClassifierFunc func(ctx context.Context, content string) (Verdict, error)

func (f ClassifierFunc) Classify(ctx context.Context, content string) (Verdict, error) {
	return f(ctx, content)
}
