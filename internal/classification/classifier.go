package classification

import (
	"context"
	"log/slog"

	"github.com/MGhunch/dot-file/pkg/metrics"
)

// Fallback decides inconclusive messages. Implementations always return a
// usable Result.
type Fallback interface {
	Classify(ctx context.Context, m Message, s Signals) Result
}

// Classifier runs caller override, then the rule table, then the fallback.
type Classifier struct {
	policy   Policy
	fallback Fallback
	logger   *slog.Logger
}

// New creates a Classifier. A nil fallback resolves inconclusive messages to Unavailable.
func New(policy Policy, fallback Fallback, logger *slog.Logger) *Classifier {
	return &Classifier{
		policy:   policy,
		fallback: fallback,
		logger:   logger.With("system", "classifier"),
	}
}

// Policy returns the extraction policy.
func (c *Classifier) Policy() Policy {
	return c.policy
}

// Classify always returns a Result along with the signals it was based on.
func (c *Classifier) Classify(ctx context.Context, m Message) (Result, Signals) {
	signals := Extract(m, c.policy)
	result := c.decide(ctx, m, signals)

	metrics.ClassificationsTotal.WithLabelValues(string(result.Source), string(result.Category)).Inc()
	c.logger.InfoContext(ctx, "classified",
		"job", m.JobNumber,
		"category", result.Category,
		"confidence", result.Confidence,
		"source", result.Source,
		"outgoing_signals", signals.OutgoingCount(),
	)
	return result, signals
}

func (c *Classifier) decide(ctx context.Context, m Message, s Signals) Result {
	if r, ok := Override(m.Route, m.FolderType); ok {
		return r
	}
	if r, ok := ClassifyByRules(s); ok {
		return r
	}
	if c.fallback == nil {
		return Unavailable()
	}
	return c.fallback.Classify(ctx, m, s)
}
