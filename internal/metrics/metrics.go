// Package metrics exposes Prometheus counters for speech generation, the
// audio cache and playback.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	generations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eduspeak_speech_generations_total",
		Help: "Total number of remote speech generation requests",
	}, []string{"engine", "status"})

	generationLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "eduspeak_speech_generation_seconds",
		Help:    "Remote speech generation latency in seconds",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
	})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eduspeak_audio_cache_lookups_total",
		Help: "Audio cache lookups by result",
	}, []string{"result"})

	playbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eduspeak_playbacks_total",
		Help: "Playbacks by source kind and outcome",
	}, []string{"source", "status"})

	prefetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eduspeak_prefetched_items_total",
		Help: "Flashcard audio clips generated ahead of selection",
	})

	quizAnswers = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eduspeak_quiz_answers_total",
		Help: "Quiz answers by correctness",
	}, []string{"result"})
)

// RecordGeneration records one call to a speech generation backend.
func RecordGeneration(engine string, err error, elapsed time.Duration) {
	generations.WithLabelValues(engine, status(err)).Inc()
	generationLatency.Observe(elapsed.Seconds())
}

// RecordCacheLookup records a cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	cacheLookups.WithLabelValues("miss").Inc()
}

// RecordPlayback records the outcome of one Play call.
func RecordPlayback(source string, err error) {
	playbacks.WithLabelValues(source, status(err)).Inc()
}

// RecordPrefetch counts one prefetched clip.
func RecordPrefetch() {
	prefetched.Inc()
}

// RecordAnswer counts one quiz answer.
func RecordAnswer(correct bool) {
	if correct {
		quizAnswers.WithLabelValues("correct").Inc()
		return
	}
	quizAnswers.WithLabelValues("incorrect").Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
