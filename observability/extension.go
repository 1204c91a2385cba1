package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/gbacskai/docflow4-sub000/hook"
	"github.com/gbacskai/docflow4-sub000/record"
	"github.com/gbacskai/docflow4-sub000/workflow"
)

// meterName is the instrumentation scope name for docflow metrics.
const meterName = "github.com/gbacskai/docflow4-sub000"

// Compile-time interface checks.
var (
	_ hook.Extension        = (*MetricsExtension)(nil)
	_ hook.VersionCreated   = (*MetricsExtension)(nil)
	_ hook.DriftRepaired    = (*MetricsExtension)(nil)
	_ hook.CascadeCompleted = (*MetricsExtension)(nil)
	_ hook.RuleSkipped      = (*MetricsExtension)(nil)
)

// MetricsExtension records record and cascade lifecycle metrics.
// Register it on the hook registry to track version writes, drift
// repairs, cascade outcomes, and skipped rules.
//
// Instruments:
//   - docflow.record.created (Int64Counter): versions written, by collection
//   - docflow.record.drift_repaired (Int64Counter): drift repairs, by collection
//   - docflow.cascade.completed (Int64Counter): cascade runs, by status
//   - docflow.cascade.iterations (Int64Histogram): iterations per run
//   - docflow.rule.skipped (Int64Counter): rules skipped by the cascade
type MetricsExtension struct {
	recordCreated     metric.Int64Counter
	driftRepaired     metric.Int64Counter
	cascadeCompleted  metric.Int64Counter
	cascadeIterations metric.Int64Histogram
	ruleSkipped       metric.Int64Counter
}

// NewMetricsExtension creates a MetricsExtension using the global OTel
// MeterProvider. With no provider configured the instruments are noops
// and the extension is a pass-through.
func NewMetricsExtension() *MetricsExtension {
	return NewMetricsExtensionWithMeter(otel.Meter(meterName))
}

// NewMetricsExtensionWithMeter creates a MetricsExtension with the
// provided meter. This variant allows injecting a specific MeterProvider
// for testing.
func NewMetricsExtensionWithMeter(meter metric.Meter) *MetricsExtension {
	// Create instruments once at construction time. OTel instruments are
	// safe for concurrent use. On error, the API returns noop instruments
	// so the extension degrades gracefully.
	created, cErr := meter.Int64Counter(
		"docflow.record.created",
		metric.WithDescription("Total record versions written"),
		metric.WithUnit("{version}"),
	)
	_ = cErr // noop fallback guaranteed by OTel API contract

	repaired, rErr := meter.Int64Counter(
		"docflow.record.drift_repaired",
		metric.WithDescription("Total active-version drift repairs"),
		metric.WithUnit("{repair}"),
	)
	_ = rErr

	completed, mErr := meter.Int64Counter(
		"docflow.cascade.completed",
		metric.WithDescription("Total cascade runs"),
		metric.WithUnit("{run}"),
	)
	_ = mErr

	iterations, iErr := meter.Int64Histogram(
		"docflow.cascade.iterations",
		metric.WithDescription("Iterations per cascade run"),
		metric.WithUnit("{iteration}"),
	)
	_ = iErr

	skipped, sErr := meter.Int64Counter(
		"docflow.rule.skipped",
		metric.WithDescription("Total rules skipped by the cascade"),
		metric.WithUnit("{rule}"),
	)
	_ = sErr

	return &MetricsExtension{
		recordCreated:     created,
		driftRepaired:     repaired,
		cascadeCompleted:  completed,
		cascadeIterations: iterations,
		ruleSkipped:       skipped,
	}
}

// Name implements hook.Extension.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// ── Record lifecycle hooks ──────────────────────────

// OnVersionCreated implements hook.VersionCreated.
func (m *MetricsExtension) OnVersionCreated(ctx context.Context, collection string, _ *record.Item) error {
	m.recordCreated.Add(ctx, 1, metric.WithAttributes(
		attribute.String("collection", collection),
	))
	return nil
}

// OnDriftRepaired implements hook.DriftRepaired.
func (m *MetricsExtension) OnDriftRepaired(ctx context.Context, collection, _, _ string, _ int) error {
	m.driftRepaired.Add(ctx, 1, metric.WithAttributes(
		attribute.String("collection", collection),
	))
	return nil
}

// ── Cascade lifecycle hooks ─────────────────────────

// OnCascadeCompleted implements hook.CascadeCompleted.
func (m *MetricsExtension) OnCascadeCompleted(ctx context.Context, _ string, report *workflow.Report) error {
	status := "ok"
	if !report.Success {
		status = "error"
	}
	m.cascadeCompleted.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
	m.cascadeIterations.Record(ctx, int64(report.CascadeIterations))
	return nil
}

// OnRuleSkipped implements hook.RuleSkipped.
func (m *MetricsExtension) OnRuleSkipped(ctx context.Context, _, _ string, _ error) error {
	m.ruleSkipped.Add(ctx, 1)
	return nil
}
