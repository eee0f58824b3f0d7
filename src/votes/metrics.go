package votes

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var votesCast = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "campusqa_votes_total",
	Help: "Number of vote casts and removals, by outcome",
}, []string{"outcome"})
