// Package redaction decides what text readers see for an answer.
package redaction

import (
	"git.campusqa.org/campusqa/campusqa/src/models"
	"git.campusqa.org/campusqa/campusqa/src/qaerr"
	"git.campusqa.org/campusqa/campusqa/src/utils"
)

/*
Moves answer into the given redaction state.

Redacting requires a non-blank replacement body; without one this returns
qaerr.ErrMissingRedactionBody and leaves answer untouched. Making an answer
visible again discards any replacement body.
*/
func SetRedactionState(answer *models.Answer, state models.RedactionState, redactedBody *string) error {
	switch state {
	case models.RedactionRedacted:
		if utils.IsBlank(redactedBody) {
			return qaerr.ErrMissingRedactionBody
		}
		body := *redactedBody
		answer.RedactionState = models.RedactionRedacted
		answer.RedactedBody = &body
	case models.RedactionVisible:
		answer.RedactionState = models.RedactionVisible
		answer.RedactedBody = nil
	default:
		return qaerr.Validation("redaction_state", "must be one of %s, %s", models.RedactionVisible, models.RedactionRedacted)
	}
	return nil
}

// The text to show readers. Never display answer.Body directly.
func RenderedBody(answer *models.Answer) string {
	if answer.RedactionState == models.RedactionRedacted && answer.RedactedBody != nil {
		return *answer.RedactedBody
	}
	return answer.Body
}
