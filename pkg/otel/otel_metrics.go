package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	synthesisDuration metric.Float64Histogram
	segmentDuration   metric.Float64Histogram
	trackDuration     metric.Float64Histogram
)

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

func init() {
	synthesisDuration, _ = meter().Float64Histogram("narrator.synthesis.duration",
		metric.WithDescription("Duration of synthesis calls"),
		metric.WithUnit("s"),
	)

	segmentDuration, _ = meter().Float64Histogram("narrator.segment.audio_duration",
		metric.WithDescription("Length of synthesized segment audio"),
		metric.WithUnit("s"),
	)

	trackDuration, _ = meter().Float64Histogram("narrator.track.duration",
		metric.WithDescription("Length of exported tracks"),
		metric.WithUnit("s"),
	)
}

// RecordTrack records the audio length of every segment and of the exported track.
func RecordTrack(ctx context.Context, segments []time.Duration, total time.Duration) {
	for _, d := range segments {
		segmentDuration.Record(ctx, d.Seconds())
	}

	trackDuration.Record(ctx, total.Seconds(), metric.WithAttributes(attribute.Int("segments", len(segments))))
}
