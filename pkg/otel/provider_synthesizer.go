package otel

import (
	"context"
	"time"

	"github.com/adrianliechti/narrator/pkg/provider"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Synthesizer interface {
	Observable
	provider.Synthesizer
}

type observableSynthesizer struct {
	model    string
	provider string

	synthesizer provider.Synthesizer
}

func NewSynthesizer(provider, model string, p provider.Synthesizer) Synthesizer {
	return &observableSynthesizer{
		synthesizer: p,

		model:    model,
		provider: provider,
	}
}

func (p *observableSynthesizer) otelSetup() {
}

func (p *observableSynthesizer) Synthesize(ctx context.Context, content string, options *provider.SynthesizeOptions) (*provider.Synthesis, error) {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "synthesize "+p.model)
	defer span.End()

	span.SetAttributes(
		String("gen_ai.system", p.provider),
		String("gen_ai.request.model", p.model),
		Int("narrator.input.chars", len(content)),
	)

	start := time.Now()

	result, err := p.synthesizer.Synthesize(ctx, content, options)

	status := "ok"

	if err != nil {
		status = "error"
		recordError(span, err)
	}

	synthesisDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
		attribute.String("provider", p.provider),
		attribute.String("model", p.model),
		attribute.String("status", status),
	))

	if result != nil {
		span.SetAttributes(Int("narrator.output.bytes", len(result.Content)))
	}

	return result, err
}
