// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package telemetry wires OpenTelemetry tracing and metrics for autotile.
//
// Init installs the global TracerProvider and MeterProvider. Traces go to
// stdout or an OTLP gRPC collector; metrics go to stdout or a Prometheus
// registry served by MetricsHandler. NewMetrics registers the solver
// instruments on a meter.
//
//	shutdown, err := telemetry.Init(ctx, telemetry.Config{
//	    ServiceName:    "autotile",
//	    TraceExporter:  "none",
//	    MetricExporter: "prometheus",
//	})
//	defer shutdown(context.Background())
//	metrics, err := telemetry.NewMetrics(otel.Meter("autotile"))
package telemetry
