// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "voice_booking_capture"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Recording session metrics
	RecordingsStarted   prometheus.Counter
	RecordingsActive    prometheus.Gauge
	RecordingsCompleted prometheus.Counter
	RecordingsCancelled prometheus.Counter
	RecordingsFailed    *prometheus.CounterVec
	RecordingDuration   prometheus.Histogram

	// Heuristic pipeline metrics
	ConfidenceScore prometheus.Histogram
	RecheckFlagged  prometheus.Counter
	TranscriptWords prometheus.Histogram

	// Audio metrics
	AudioBytesReceived  prometheus.Counter
	AudioFramesReceived prometheus.Counter

	// Backend submission metrics
	SubmissionsTotal   *prometheus.CounterVec
	SubmissionLatency  prometheus.Histogram
	SubmissionFailures prometheus.Counter

	// Kafka publish metrics
	KafkaPublishTotal   *prometheus.CounterVec
	KafkaPublishErrors  *prometheus.CounterVec
	KafkaPublishLatency *prometheus.HistogramVec

	// STT metrics
	STTErrors   *prometheus.CounterVec
	STTRestarts prometheus.Counter
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		RecordingsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recordings_started_total",
			Help:      "Total number of recording sessions started",
		}),
		RecordingsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "recordings_active",
			Help:      "Number of recording sessions currently capturing or processing",
		}),
		RecordingsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recordings_completed_total",
			Help:      "Total number of recordings that produced a result",
		}),
		RecordingsCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recordings_cancelled_total",
			Help:      "Total number of recordings cancelled mid-flight",
		}),
		RecordingsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recordings_failed_total",
			Help:      "Total number of recordings that failed",
		}, []string{"reason"}),
		RecordingDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recording_duration_seconds",
			Help:      "Duration of completed recordings in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 45, 60},
		}),

		ConfidenceScore: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "confidence_score",
			Help:      "Heuristic confidence score of completed recordings",
			Buckets:   []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),
		RecheckFlagged: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recheck_flagged_total",
			Help:      "Total number of recordings flagged for a server recheck",
		}),
		TranscriptWords: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transcript_words",
			Help:      "Word count of final transcripts",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 20, 40, 80},
		}),

		AudioBytesReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_bytes_received_total",
			Help:      "Total audio bytes received",
		}),
		AudioFramesReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_frames_received_total",
			Help:      "Total audio frames received",
		}),

		SubmissionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Total number of backend voice submissions by outcome status",
		}, []string{"status"}),
		SubmissionLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "submission_latency_seconds",
			Help:      "Backend submission round-trip latency in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),
		SubmissionFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submission_failures_total",
			Help:      "Total number of submissions that failed before a backend verdict",
		}),

		KafkaPublishTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic", "event_type"}),
		KafkaPublishErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic", "event_type"}),
		KafkaPublishLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Kafka publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),

		STTErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stt_errors_total",
			Help:      "Total number of speech recognizer errors",
		}, []string{"provider", "error_type"}),
		STTRestarts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stt_restarts_total",
			Help:      "Total number of recognizer sessions restarted after a premature end",
		}),
	}
}

// RecordRecordingStart records a recording session starting.
func (m *Metrics) RecordRecordingStart() {
	m.RecordingsStarted.Inc()
	m.RecordingsActive.Inc()
}

// RecordRecordingCompleted records a recording that produced a result.
func (m *Metrics) RecordRecordingCompleted(durationSeconds float64, confidence, wordCount int, recheck bool) {
	m.RecordingsActive.Dec()
	m.RecordingsCompleted.Inc()
	m.RecordingDuration.Observe(durationSeconds)
	m.ConfidenceScore.Observe(float64(confidence))
	m.TranscriptWords.Observe(float64(wordCount))
	if recheck {
		m.RecheckFlagged.Inc()
	}
}

// RecordRecordingCancelled records a cancelled recording.
func (m *Metrics) RecordRecordingCancelled() {
	m.RecordingsActive.Dec()
	m.RecordingsCancelled.Inc()
}

// RecordRecordingFailed records a recording that failed.
func (m *Metrics) RecordRecordingFailed(reason string) {
	m.RecordingsActive.Dec()
	m.RecordingsFailed.WithLabelValues(reason).Inc()
}

// RecordAudioReceived records audio bytes and frames received.
func (m *Metrics) RecordAudioReceived(bytes int) {
	m.AudioBytesReceived.Add(float64(bytes))
	m.AudioFramesReceived.Inc()
}

// RecordSubmission records a backend submission outcome.
func (m *Metrics) RecordSubmission(status string, err error, latencySeconds float64) {
	m.SubmissionLatency.Observe(latencySeconds)
	if err != nil {
		m.SubmissionFailures.Inc()
		return
	}
	m.SubmissionsTotal.WithLabelValues(status).Inc()
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic, eventType string, err error, latencySeconds float64) {
	m.KafkaPublishTotal.WithLabelValues(topic, eventType).Inc()
	m.KafkaPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic, eventType).Inc()
	}
}

// RecordSTTError records a recognizer error.
func (m *Metrics) RecordSTTError(provider, errorType string) {
	m.STTErrors.WithLabelValues(provider, errorType).Inc()
}

// RecordSTTRestart records a recognizer session restart.
func (m *Metrics) RecordSTTRestart() {
	m.STTRestarts.Inc()
}
