package examgen

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the pipeline collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	questionsGenerated  *prometheus.CounterVec
	modelCalls          *prometheus.CounterVec
	evaluatorSkips      prometheus.Counter
	distractorFallbacks prometheus.Counter
	synthesisDuration   prometheus.Histogram
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		questionsGenerated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "examgen_questions_generated_total",
				Help: "Question records returned, by style",
			},
			[]string{"style"},
		),
		modelCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "examgen_model_calls_total",
				Help: "Model invocations by component and outcome",
			},
			[]string{"component", "outcome"},
		),
		evaluatorSkips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "examgen_evaluator_skips_total",
			Help: "Ranking requests served unranked because the evaluator was unavailable",
		}),
		distractorFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "examgen_distractor_fallbacks_total",
			Help: "Distractor lookups served from document words instead of embedding neighbours",
		}),
		synthesisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "examgen_synthesis_duration_seconds",
			Help:    "Time spent generating a single question",
			Buckets: prometheus.DefBuckets,
		}),
	}
	m.Registry.MustRegister(
		m.questionsGenerated,
		m.modelCalls,
		m.evaluatorSkips,
		m.distractorFallbacks,
		m.synthesisDuration,
	)
	return m
}

func (m *Metrics) QuestionsGenerated(style AnswerStyle, n int) {
	if m == nil {
		return
	}
	m.questionsGenerated.WithLabelValues(string(style)).Add(float64(n))
}

func (m *Metrics) ModelCall(component string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.modelCalls.WithLabelValues(component, outcome).Inc()
}

func (m *Metrics) EvaluatorSkipped() {
	if m == nil {
		return
	}
	m.evaluatorSkips.Inc()
}

func (m *Metrics) DistractorFallback() {
	if m == nil {
		return
	}
	m.distractorFallbacks.Inc()
}

func (m *Metrics) ObserveSynthesis(d time.Duration) {
	if m == nil {
		return
	}
	m.synthesisDuration.Observe(d.Seconds())
}

// WriteTextfile dumps the registry in the node_exporter textfile format
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
