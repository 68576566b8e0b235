package classification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/MGhunch/dot-file/pkg/formatting"
)

// ErrClassification indicates the model returned output that is not a valid decision.
var ErrClassification = errors.New("invalid model classification")

// Unavailable is the result used whenever the model cannot produce a valid decision.
func Unavailable() Result {
	return Result{
		Category:   Other,
		Confidence: Low,
		Reasoning:  "classification unavailable",
		Source:     SourceModel,
	}
}

// Degraded reports whether r is the fallback used when the model failed.
func (r Result) Degraded() bool {
	return r == Unavailable()
}

// Inferer sends a prompt to a generative model and returns its raw reply.
type Inferer interface {
	Infer(ctx context.Context, prompt string) (string, error)
}

// AgentInferer is an Inferer backed by a go-agents chat agent.
type AgentInferer struct {
	agent agent.Agent
}

// NewAgentInferer creates the underlying agent from cfg.
func NewAgentInferer(cfg *gaconfig.AgentConfig) (*AgentInferer, error) {
	a, err := agent.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("create agent: %w", err)
	}
	return &AgentInferer{agent: a}, nil
}

func (a *AgentInferer) Infer(ctx context.Context, prompt string) (string, error) {
	resp, err := a.agent.Chat(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("chat call: %w", err)
	}
	return resp.Content(), nil
}

type modelResponse struct {
	Folder     string `json:"folder"`
	IsOutgoing bool   `json:"is_outgoing"`
	Confidence string `json:"confidence"`
	Reasoning  string `json:"reasoning"`
}

// Normalize turns raw model output into a Result. The folder must name one
// of the four categories unless is_outgoing is set; confidence is clamped.
func Normalize(raw string) (Result, error) {
	parsed, err := formatting.Parse[modelResponse](raw)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrClassification, err)
	}

	category := Round
	if !parsed.IsOutgoing {
		c, ok := ParseCategory(parsed.Folder)
		if !ok {
			return Result{}, fmt.Errorf("%w: unknown folder %q", ErrClassification, parsed.Folder)
		}
		category = c
	}

	return Result{
		Category:   category,
		Confidence: ParseConfidence(parsed.Confidence),
		Reasoning:  strings.TrimSpace(parsed.Reasoning),
		Source:     SourceModel,
	}, nil
}

// ModelClassifier consults the model for inconclusive messages. It never
// fails: timeouts, transport errors and invalid output yield Unavailable.
type ModelClassifier struct {
	inferer Inferer
	timeout time.Duration
	logger  *slog.Logger
}

// NewModelClassifier bounds every inference call by timeout.
func NewModelClassifier(inferer Inferer, timeout time.Duration, logger *slog.Logger) *ModelClassifier {
	return &ModelClassifier{
		inferer: inferer,
		timeout: timeout,
		logger:  logger.With("system", "classifier"),
	}
}

func (c *ModelClassifier) Classify(ctx context.Context, m Message, s Signals) Result {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.inferer.Infer(ctx, Prompt(m, s))
	if err != nil {
		c.logger.WarnContext(ctx, "model inference failed", "job", m.JobNumber, "error", err)
		return Unavailable()
	}

	result, err := Normalize(raw)
	if err != nil {
		c.logger.WarnContext(ctx, "model output rejected", "job", m.JobNumber, "error", err)
		return Unavailable()
	}
	return result
}
