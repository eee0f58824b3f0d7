package moderation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var classifierAPIDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "campusqa_moderation_api_duration_sec",
	Help: "Duration of moderation classifier API calls",
})

var classifierAPICount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "campusqa_moderation_api_count",
	Help: "Number of moderation classifier API calls, by HTTP status code",
}, []string{"status"})

var screenings = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "campusqa_moderation_screenings_total",
	Help: "Number of screened submissions, by result",
}, []string{"result"})
