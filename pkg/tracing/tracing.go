package tracing

import (
	"context"
	"fmt"
	"log"
	"time"

	"contrib.go.opencensus.io/exporter/jaeger"
	"contrib.go.opencensus.io/exporter/zipkin"
	"contrib.go.opencensus.io/integrations/ocsql"
	zipkinhttp "github.com/openzipkin/zipkin-go/reporter/http"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
	"go.opencensus.io/trace"

	"github.com/Gridfuse/gridfuse/config"
)

var (
	// CompileLatency records the time spent compiling one query, in milliseconds
	CompileLatency = stats.Float64("gridfuse/compile/latency", "Query compile latency", stats.UnitMilliseconds)
	// CompileLeaves records the number of filter leaves in a compiled query
	CompileLeaves = stats.Int64("gridfuse/compile/leaves", "Filter leaves per compiled query", stats.UnitDimensionless)

	KeyDialect, _ = tag.NewKey("dialect")
	KeyStatus, _  = tag.NewKey("status")
)

// CompileViews aggregate the compile measures by dialect and outcome
var CompileViews = []*view.View{
	{
		Name:        "gridfuse/compile/count",
		Description: "Compiled queries",
		Measure:     CompileLatency,
		TagKeys:     []tag.Key{KeyDialect, KeyStatus},
		Aggregation: view.Count(),
	},
	{
		Name:        "gridfuse/compile/latency",
		Description: "Compile latency distribution",
		Measure:     CompileLatency,
		TagKeys:     []tag.Key{KeyDialect},
		Aggregation: view.Distribution(0.1, 0.5, 1, 5, 10, 50, 100),
	},
	{
		Name:        "gridfuse/compile/leaves",
		Description: "Filter leaves per query",
		Measure:     CompileLeaves,
		TagKeys:     []tag.Key{KeyDialect},
		Aggregation: view.Distribution(1, 2, 5, 10, 25, 50),
	},
}

// InitTracing initializes OpenCensus tracing with the given configuration
// codecov:ignore:start
func InitTracing(tracingConfig *config.TracingConfig) error {
	if !tracingConfig.Enabled {
		return nil
	}

	trace.ApplyConfig(trace.Config{
		DefaultSampler: trace.ProbabilitySampler(tracingConfig.SamplingProbability),
	})

	if err := initTraceExporter(tracingConfig); err != nil {
		return err
	}

	if err := RegisterViews(); err != nil {
		return err
	}

	log.Printf("OpenCensus initialized with trace exporter: %s", tracingConfig.TraceExporter)
	return nil
}

func initTraceExporter(cfg *config.TracingConfig) error {
	switch cfg.TraceExporter {
	case "jaeger":
		return initJaegerExporter(cfg)
	case "zipkin":
		return initZipkinExporter(cfg)
	case "none", "":
		return nil
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}
}

func initJaegerExporter(cfg *config.TracingConfig) error {
	if cfg.JaegerEndpoint == "" {
		return fmt.Errorf("Jaeger endpoint is required for Jaeger exporter")
	}

	je, err := jaeger.NewExporter(jaeger.Options{
		CollectorEndpoint: cfg.JaegerEndpoint,
		ServiceName:       cfg.ServiceName,
		Process: jaeger.Process{
			ServiceName: cfg.ServiceName,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create Jaeger exporter: %w", err)
	}

	trace.RegisterExporter(je)
	return nil
}

func initZipkinExporter(cfg *config.TracingConfig) error {
	if cfg.ZipkinEndpoint == "" {
		return fmt.Errorf("Zipkin endpoint is required for Zipkin exporter")
	}

	reporter := zipkinhttp.NewReporter(cfg.ZipkinEndpoint)
	trace.RegisterExporter(zipkin.NewExporter(reporter, nil))
	return nil
}

// codecov:ignore:end

// RegisterViews registers the compile views and the ocsql database views
func RegisterViews() error {
	if err := view.Register(CompileViews...); err != nil {
		return fmt.Errorf("failed to register compile views: %w", err)
	}
	if err := view.Register(ocsql.DefaultViews...); err != nil {
		return fmt.Errorf("failed to register database views: %w", err)
	}
	return nil
}

// RecordCompile records one compile. Failures are tagged status=error.
func RecordCompile(ctx context.Context, dialect string, elapsed time.Duration, leaves int, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	_ = stats.RecordWithTags(ctx,
		[]tag.Mutator{tag.Upsert(KeyDialect, dialect), tag.Upsert(KeyStatus, status)},
		CompileLatency.M(float64(elapsed)/float64(time.Millisecond)),
		CompileLeaves.M(int64(leaves)),
	)
}

// WrapDriver registers an ocsql wrapped copy of a database/sql driver and
// returns its name
func WrapDriver(driverName string) (string, error) {
	return ocsql.Register(driverName, ocsql.WithQuery(true), ocsql.WithRowsNext(false))
}
