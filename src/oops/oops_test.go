package oops

import (
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

var errSample = errors.New("some error occurred that you should handle")

type sampleErrorType struct {
	Message string
}

func (s sampleErrorType) Error() string {
	return s.Message
}

func init() {
	zerolog.ErrorStackMarshaler = ZerologStackMarshaler
}

func TestNew(t *testing.T) {
	t.Run("errors.Is", func(t *testing.T) {
		err := New(errSample, "test error")
		assert.ErrorIs(t, err, errSample)
	})
	t.Run("errors.As", func(t *testing.T) {
		err := New(sampleErrorType{Message: "some fancy error type has occurred"}, "test error")
		var sErr sampleErrorType
		assert.True(t, errors.As(err, &sErr))
		assert.Equal(t, "some fancy error type has occurred", sErr.Message)
	})
	t.Run("message without cause", func(t *testing.T) {
		err := New(nil, "answer %d vanished", 12)
		assert.Equal(t, "answer 12 vanished", err.Error())
	})
	t.Run("message with cause", func(t *testing.T) {
		err := New(errSample, "failed to cast vote")
		assert.Equal(t, "failed to cast vote: "+errSample.Error(), err.Error())
	})
}

func TestStackStartsAtCaller(t *testing.T) {
	err := New(nil, "boom").(*Error)
	if assert.NotEmpty(t, err.Stack) {
		assert.True(t, strings.HasSuffix(err.Stack[0].Function, "TestStackStartsAtCaller"), err.Stack[0].Function)
	}

	frames := Trace()
	if assert.NotEmpty(t, frames) {
		assert.True(t, strings.HasSuffix(frames[0].Function, "TestStackStartsAtCaller"), frames[0].Function)
	}
}
