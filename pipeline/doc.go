// Package pipeline provides the pipeline collaborator the declarative segment
// builder splices processors into.
//
// A Pipeline is an ordered chain of Processors ending in a terminal processor
// (conventionally the sink). Processors receive a per-event Context side channel
// and the Event itself, and return the event to pass on, or nil to drop it.
//
// A Service is the process-wide registry of pipelines, lookups and connections.
// The segment builder locates pipelines and registers lookups through it.
//
// Every processor spliced by the segment builder gets a metric.ProfilerCounter,
// stored on the pipeline under the processor id (and, for analyzers, under
// AnalyzerCounterKey(id) as well). Process and Analyze account time into those
// counters and ResetProfiler resets all of them.
//
// Chain mutation (PopLast, Append) is not synchronized: the chain is assembled
// before events flow and is read-only while Process runs.
package pipeline
