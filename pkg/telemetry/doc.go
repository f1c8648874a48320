// Package telemetry provides observability for refdata: structured logging
// (zerolog), tracing (OpenTelemetry), metrics (Prometheus) and lifecycle
// events.
//
// # Usage
//
// Initialize telemetry at startup:
//
//	cfg := telemetry.DefaultConfig()
//	cfg.ServiceVersion = version
//
//	tel, err := telemetry.NewTelemetry(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tel.Shutdown(context.Background())
//
//	ctx = tel.WithContext(ctx)
//
// # Structured Logging
//
// Logs go to stderr by default so command output on stdout stays clean:
//
//	logger := tel.Logger.NewComponentLogger("loader")
//	logger.WithRevision(snap.Revision()).Info("Snapshot published")
//
// Log levels: trace, debug, info, warn, error, fatal
//
// # Tracing
//
// Tracing is off by default. When enabled, spans are exported to stderr
// ("stdout" exporter), to an OTLP/gRPC collector ("otlp"), or dropped
// ("none"). The loader opens seeds.load, policy.evaluate and
// snapshot.publish spans under a refdata.reload operation.
//
// # Metrics
//
// Metrics live on a private registry and are served by StartMetricsServer:
//
//   - refdata_reloads_total{status}
//   - refdata_reload_duration_seconds{status}
//   - refdata_records{kind}
//   - refdata_snapshot_publishes_total
//   - refdata_snapshot_last_publish_timestamp_seconds
//   - refdata_policy_violations_total{policy,severity}
//   - refdata_lookups_total{kind,result}
//
// # Events
//
// The loader publishes snapshot.published, reload.rejected, reload.failed
// and policy.violation events. Consumers subscribe with an optional filter:
//
//	tel.Events.Subscribe(func(e telemetry.Event) {
//	    fmt.Println(e.Type, e.Revision)
//	}, telemetry.FilterByType(telemetry.EventTypeSnapshotPublished))
//
// # Operations
//
// StartOperation combines a span, a logger carrying trace ids and a timer:
//
//	op := telemetry.StartOperation(ctx, "refdata.reload")
//	defer func() { op.End(err) }()
package telemetry
