// Package streampump is a declarative event-processing framework: rules
// written as small YAML or JSON expression trees are compiled into processors
// and spliced into running pipelines.
//
// # Architecture
//
//	definition files ──► segment.Builder ──► declarative.Processor ──► pipeline.Pipeline ──► sink
//	                          │                     │
//	                          ▼                     ▼
//	                   lookup.DictionaryLookup   expression.Program
//
// Packages:
//   - pipeline: processor chains, the service registry and sinks
//   - declarative/expression: expression nodes, compiler, optimizer, type checking
//   - declarative/segment: definition discovery, class and keyword registries, splicing
//   - declarative: the expression-driven processor class
//   - lookup: keyed reference datasets
//   - componentregistry: built-in class registration
//   - config: layered JSON/YAML configuration
//   - metric: Prometheus platform metrics and profiler counters
//   - errors: classified errors (transient, invalid, fatal)
//
// # Quick Start
//
// A rule dropping every event whose status is not "ok":
//
//	pipeline_id: main
//	processor: |
//	  !EQ
//	  - !ITEM EVENT status
//	  - ok
//
// Run it over a JSON-lines file:
//
//	streampump --segment-path='./rules/**/*.yml' events.jsonl
package streampump
