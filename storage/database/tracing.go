package database

import (
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const spanKey = "otel:span"

// TracingPlugin 为每条 SQL 生成一个 client span
type TracingPlugin struct {
	tracer trace.Tracer
}

func NewTracingPlugin(serviceName string) *TracingPlugin {
	return &TracingPlugin{tracer: otel.Tracer(serviceName + ".gorm")}
}

func (p *TracingPlugin) Name() string {
	return "otel_tracing"
}

func (p *TracingPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	hooks := []struct {
		name   string
		before func(string, func(*gorm.DB)) error
		after  func(string, func(*gorm.DB)) error
	}{
		{"query", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"create", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
		{"row", cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register},
		{"raw", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register},
	}
	for _, h := range hooks {
		if err := h.before("otel:before_"+h.name, p.before(h.name)); err != nil {
			return err
		}
		if err := h.after("otel:after_"+h.name, p.after); err != nil {
			return err
		}
	}
	return nil
}

func (p *TracingPlugin) before(op string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx, span := p.tracer.Start(db.Statement.Context, "db."+op,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				semconv.DBSystemPostgreSQL,
				attribute.String("db.table", db.Statement.Table),
			),
		)
		db.Statement.Context = ctx
		db.InstanceSet(spanKey, span)
	}
}

func (p *TracingPlugin) after(db *gorm.DB) {
	v, ok := db.InstanceGet(spanKey)
	if !ok {
		return
	}
	span, ok := v.(trace.Span)
	if !ok {
		return
	}
	defer span.End()

	// 只记录语句模板，不记录参数
	stmt := db.Statement.SQL.String()
	if len(stmt) > 500 {
		stmt = stmt[:500] + "..."
	}
	span.SetAttributes(
		semconv.DBStatement(strings.TrimSpace(stmt)),
		attribute.Int64("db.rows_affected", db.Statement.RowsAffected),
	)

	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}
}
