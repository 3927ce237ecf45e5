package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics 报告流水线相关指标
type OTelMetrics struct {
	GenerationTotal     metric.Int64Counter
	GenerationDuration  metric.Float64Histogram
	ModelCallDuration   metric.Float64Histogram
	SecondaryStepFailed metric.Int64Counter
	ProgramResetTotal   metric.Int64Counter
}

var (
	// 全局指标实例，未初始化时所有 Record 方法都是 no-op
	metrics *OTelMetrics
	meter   = otel.Meter("sevenday")
)

// InitMetrics 初始化 OpenTelemetry 指标
func InitMetrics() error {
	m := &OTelMetrics{}
	var err error

	m.GenerationTotal, err = meter.Int64Counter(
		"report_generation_total",
		metric.WithDescription("Report pipeline runs by terminal outcome"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return err
	}

	m.GenerationDuration, err = meter.Float64Histogram(
		"report_generation_duration_seconds",
		metric.WithDescription("Wall time of a whole report pipeline run"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	m.ModelCallDuration, err = meter.Float64Histogram(
		"report_model_call_duration_seconds",
		metric.WithDescription("Time spent waiting for the generative model"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.5, 1, 2.5, 5, 10, 20, 30, 60, 120),
	)
	if err != nil {
		return err
	}

	m.SecondaryStepFailed, err = meter.Int64Counter(
		"report_secondary_step_failed_total",
		metric.WithDescription("Best-effort pipeline steps that failed after the report was stored"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return err
	}

	m.ProgramResetTotal, err = meter.Int64Counter(
		"program_reset_total",
		metric.WithDescription("Confirmed program resets after a missed day"),
		metric.WithUnit("{reset}"),
	)
	if err != nil {
		return err
	}

	metrics = m
	return nil
}

// GetMetrics 获取全局指标实例
func GetMetrics() *OTelMetrics {
	return metrics
}

// RecordGeneration outcome 为 success / insufficient_data / upstream_error 等
func (m *OTelMetrics) RecordGeneration(ctx context.Context, outcome string, seconds float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.GenerationTotal.Add(ctx, 1, attrs)
	m.GenerationDuration.Record(ctx, seconds, attrs)
}

func (m *OTelMetrics) RecordModelCall(ctx context.Context, ok bool, seconds float64) {
	if m == nil {
		return
	}
	m.ModelCallDuration.Record(ctx, seconds, metric.WithAttributes(attribute.Bool("ok", ok)))
}

func (m *OTelMetrics) RecordSecondaryFailure(ctx context.Context, step string) {
	if m == nil {
		return
	}
	m.SecondaryStepFailed.Add(ctx, 1, metric.WithAttributes(attribute.String("step", step)))
}

func (m *OTelMetrics) RecordReset(ctx context.Context) {
	if m == nil {
		return
	}
	m.ProgramResetTotal.Add(ctx, 1)
}
