// Package perf times the phases of a request. Blocks are started and ended
// around expensive work (SQL, moderation, rendering) and logged when the
// request turns out to be slow.
package perf

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

type RequestPerf struct {
	Route  string
	Path   string // the path actually matched
	Method string
	Start  time.Time
	End    time.Time
	Blocks []PerfBlock
}

func MakeNewRequestPerf(route string, method string, path string) *RequestPerf {
	return &RequestPerf{
		Start:  time.Now(),
		Route:  route,
		Path:   path,
		Method: method,
	}
}

// The methods below are safe to call on a nil *RequestPerf, so helpers can
// time themselves whether or not they run inside a request.

func (rp *RequestPerf) EndRequest() {
	if rp == nil {
		return
	}
	for rp.EndBlock() {
	}
	rp.End = time.Now()
}

func (rp *RequestPerf) StartBlock(category, description string) {
	if rp == nil {
		return
	}
	rp.Blocks = append(rp.Blocks, PerfBlock{
		Start:       time.Now(),
		Category:    category,
		Description: description,
	})
}

func (rp *RequestPerf) EndBlock() bool {
	if rp == nil {
		return false
	}
	for i := len(rp.Blocks) - 1; i >= 0; i -= 1 {
		if rp.Blocks[i].End.IsZero() {
			rp.Blocks[i].End = time.Now()
			return true
		}
	}
	return false
}

func (rp *RequestPerf) Duration() time.Duration {
	if rp == nil || rp.End.IsZero() {
		return 0
	}
	return rp.End.Sub(rp.Start)
}

func (rp *RequestPerf) MsFromStart(block *PerfBlock) float64 {
	return float64(block.Start.Sub(rp.Start).Nanoseconds()) / 1000 / 1000
}

func (rp *RequestPerf) MarshalZerologObject(e *zerolog.Event) {
	e.Str("route", rp.Route)
	e.Str("method", rp.Method)
	e.Str("path", rp.Path)
	e.Float64("ms", float64(rp.Duration().Nanoseconds())/1000/1000)

	blocks := zerolog.Arr()
	for i := range rp.Blocks {
		b := &rp.Blocks[i]
		blocks.Dict(zerolog.Dict().
			Str("category", b.Category).
			Str("description", b.Description).
			Float64("at_ms", rp.MsFromStart(b)).
			Float64("ms", b.DurationMs()))
	}
	e.Array("blocks", blocks)
}

type PerfBlock struct {
	Start       time.Time
	End         time.Time
	Category    string
	Description string
}

func (pb *PerfBlock) Duration() time.Duration {
	return pb.End.Sub(pb.Start)
}

func (pb *PerfBlock) DurationMs() float64 {
	return float64(pb.Duration().Nanoseconds()) / 1000 / 1000
}

type perfContextKey struct{}

func AttachPerf(ctx context.Context, p *RequestPerf) context.Context {
	return context.WithValue(ctx, perfContextKey{}, p)
}

// Returns the request's perf, or nil outside a request.
func ExtractPerf(ctx context.Context) *RequestPerf {
	p, _ := ctx.Value(perfContextKey{}).(*RequestPerf)
	return p
}
