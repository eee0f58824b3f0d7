package perf

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestBlocks(t *testing.T) {
	p := MakeNewRequestPerf("PostShow", "GET", "/posts/1")
	p.StartBlock("SQL", "Fetch post")
	p.StartBlock("SQL", "Fetch answers")
	assert.True(t, p.EndBlock())
	p.EndRequest()

	assert.Len(t, p.Blocks, 2)
	for _, b := range p.Blocks {
		assert.False(t, b.End.IsZero())
	}
	assert.False(t, p.EndBlock())
	assert.GreaterOrEqual(t, p.Duration().Nanoseconds(), int64(0))

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	logger.Info().Object("perf", p).Send()
	assert.Contains(t, buf.String(), `"description":"Fetch answers"`)
}

func TestNilPerfIsHarmless(t *testing.T) {
	p := ExtractPerf(context.Background())
	assert.Nil(t, p)
	p.StartBlock("SQL", "nothing")
	assert.False(t, p.EndBlock())
	p.EndRequest()

	real := MakeNewRequestPerf("r", "GET", "/")
	assert.Same(t, real, ExtractPerf(AttachPerf(context.Background(), real)))
}
