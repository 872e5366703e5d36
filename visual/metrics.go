package visual

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var classifierAPIDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "steward_classifier_api_duration_sec",
	Help: "Duration of primary image classification API calls",
})

var classifierAPICount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "steward_classifier_api_count",
	Help: "Number of primary image classification API calls, by HTTP status code",
}, []string{"status"})

var visionAPIDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "steward_vision_api_duration_sec",
	Help: "Duration of vision-model review/transcription API calls",
})

var visionAPICount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "steward_vision_api_count",
	Help: "Number of vision-model review/transcription API calls, by HTTP status code",
}, []string{"status"})
