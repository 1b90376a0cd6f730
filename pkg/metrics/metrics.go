package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	resumeAnalyzer = "resume_analyzer"

	analysesTotal             = "analyses_total"
	analysisDurationSeconds   = "analysis_duration_seconds"
	progressUpdateErrorsTotal = "progress_update_errors_total"
	scoreWriteFailuresTotal   = "score_write_failures_total"
	reportsTotal              = "reports_total"
	uploadsRejectedTotal      = "uploads_rejected_total"

	// Labels
	statusLabel = "status"
	kindLabel   = "kind"
	stateLabel  = "state"
	reasonLabel = "reason"
)

/**
* Metrics definition
**/
var analysesTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: resumeAnalyzer,
		Name:      analysesTotal,
		Help:      "number of analyses by terminal status",
	},
	[]string{statusLabel},
)

var analysisDurationMetric = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Subsystem: resumeAnalyzer,
		Name:      analysisDurationSeconds,
		Help:      "time from dispatch to terminal status",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300},
	},
	[]string{statusLabel},
)

var progressUpdateErrorsMetric = prometheus.NewCounter(
	prometheus.CounterOpts{
		Subsystem: resumeAnalyzer,
		Name:      progressUpdateErrorsTotal,
		Help:      "progress updates that could not be stored",
	},
)

var scoreWriteFailuresMetric = prometheus.NewCounter(
	prometheus.CounterOpts{
		Subsystem: resumeAnalyzer,
		Name:      scoreWriteFailuresTotal,
		Help:      "section scores that could not be stored after a completed analysis",
	},
)

var reportsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: resumeAnalyzer,
		Name:      reportsTotal,
		Help:      "number of reports sent by kind and state",
	},
	[]string{kindLabel, stateLabel},
)

var uploadsRejectedMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: resumeAnalyzer,
		Name:      uploadsRejectedTotal,
		Help:      "uploads refused before an analysis was created",
	},
	[]string{reasonLabel},
)

func IncreaseAnalysesTotalMetric(status string, elapsed time.Duration) {
	labels := prometheus.Labels{statusLabel: status}
	analysesTotalMetric.With(labels).Inc()
	analysisDurationMetric.With(labels).Observe(elapsed.Seconds())
}

func IncreaseProgressUpdateErrorsMetric() {
	progressUpdateErrorsMetric.Inc()
}

func IncreaseScoreWriteFailuresMetric() {
	scoreWriteFailuresMetric.Inc()
}

func IncreaseReportsTotalMetric(kind, state string) {
	reportsTotalMetric.With(prometheus.Labels{kindLabel: kind, stateLabel: state}).Inc()
}

func IncreaseUploadsRejectedMetric(reason string) {
	uploadsRejectedMetric.With(prometheus.Labels{reasonLabel: reason}).Inc()
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(analysesTotalMetric)
	prometheus.MustRegister(analysisDurationMetric)
	prometheus.MustRegister(progressUpdateErrorsMetric)
	prometheus.MustRegister(scoreWriteFailuresMetric)
	prometheus.MustRegister(reportsTotalMetric)
	prometheus.MustRegister(uploadsRejectedMetric)
}
