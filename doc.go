// Package rtflow provides a deterministic dataflow engine: a graph of
// operators connected by bounded channels, executed step by step and,
// optionally, under a CBS+EDF admission-control scheduler.
//
// The root Service is the control plane. It owns the session graph, the
// scheduler, the execution loop and the observability sinks:
//
//	srv := rtflow.New(rtflow.WithLogger(logger))
//	_, _ = srv.CreateGraph()
//	ch, _ := srv.AddChannel(64)
//	srv.AddOperatorTyped(1, graph.NoChannel, ch, 10, graph.StageIngest, nil, graph.Schema(1))
//	srv.EnableDeterministic(50*time.Microsecond, 200*time.Microsecond, 200*time.Microsecond)
//	report, _ := srv.StartGraph(ctx, 100)
//
// Graphs can also be declared in YAML and loaded from any afs location with
// LoadDefinition and Apply.
package rtflow
