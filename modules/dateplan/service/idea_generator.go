package service

import (
	"context"
	stdErrors "errors"
	"time"

	"dateplanner-api/core/logger"
	"dateplanner-api/core/metrics"
	"dateplanner-api/modules/dateplan/client"
	"dateplanner-api/modules/dateplan/entity"
)

// IdeaGenerator turns a prompt into exactly maxIdeas concepts. A response
// that breaks the schema or count yields an empty list; transport errors are
// returned.
type IdeaGenerator struct {
	llm     client.LLMProvider
	metrics *metrics.Metrics
	timeout time.Duration
}

func NewIdeaGenerator(llm client.LLMProvider, m *metrics.Metrics, timeout time.Duration) *IdeaGenerator {
	return &IdeaGenerator{llm: llm, metrics: m, timeout: timeout}
}

func (g *IdeaGenerator) GenerateIdeas(ctx context.Context, promptContext string, maxIdeas int) ([]entity.IdeaConcept, error) {
	if maxIdeas <= 0 {
		return []entity.IdeaConcept{}, nil
	}

	callCtx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	ideas, err := g.llm.GenerateIdeas(callCtx, promptContext, maxIdeas)
	g.metrics.ObserveProvider(g.llm.Name(), "generate_ideas", start, err)
	if stdErrors.Is(err, client.ErrMalformedResponse) {
		logger.Warn("IdeaGenerator:GenerateIdeas:Malformed", "error", err)
		return []entity.IdeaConcept{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(ideas) != maxIdeas {
		logger.Warn("IdeaGenerator:GenerateIdeas:CountMismatch", "want", maxIdeas, "got", len(ideas))
		return []entity.IdeaConcept{}, nil
	}
	return ideas, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
