package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var eventProcessDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "steward_event_duration_sec",
	Help: "Total duration of moderation event processing",
}, []string{"type"})

var eventProcessCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "steward_event_processed",
	Help: "Number of moderation events processed",
}, []string{"type"})

var eventErrorCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "steward_event_errors",
	Help: "Number of moderation events which failed processing",
}, []string{"type"})

var stageFlagCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "steward_stage_flags",
	Help: "Number of verdicts flagged, by detection stage",
}, []string{"stage"})

var stageErrorCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "steward_stage_errors",
	Help: "Number of detection stage failures skipped by the cascade",
}, []string{"stage"})

var actionCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "steward_actions",
	Help: "Number of escalation outcomes, by action taken",
}, []string{"action"})
