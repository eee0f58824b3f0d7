package qaerr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("saving answer: %w", Validation("body", "can't be blank"))
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.NotErrorIs(t, err, ErrMissingRedactionBody)
	assert.Equal(t, "saving answer: body can't be blank", err.Error())

	var verr *ValidationError
	if assert.True(t, errors.As(err, &verr)) {
		assert.Equal(t, "body", verr.Field)
	}
}

func TestMissingRedactionBody(t *testing.T) {
	err := fmt.Errorf("redacting: %w", ErrMissingRedactionBody)
	assert.ErrorIs(t, err, ErrMissingRedactionBody)
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Equal(t, "redacted_body must be provided when content is redacted", ErrMissingRedactionBody.Error())
}

func TestNotFound(t *testing.T) {
	err := NotFound("post", 42)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "post 42 not found", err.Error())
}

func TestFlagged(t *testing.T) {
	err := &FlaggedError{Categories: []string{"violence", "harassment"}}
	assert.ErrorIs(t, err, ErrContentFlagged)
	assert.NotErrorIs(t, err, ErrModerationUnavailable)
	assert.Equal(t, "content was flagged by moderation (harassment, violence)", err.Error())
	assert.Equal(t, []string{"violence", "harassment"}, err.Categories, "error message must not reorder the caller's slice")
}

func TestUnavailable(t *testing.T) {
	err := &UnavailableError{Cause: context.DeadlineExceeded}
	assert.ErrorIs(t, err, ErrModerationUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, ErrContentFlagged)
}
