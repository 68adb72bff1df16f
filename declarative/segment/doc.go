// Package segment builds pipeline segments from declarative definition files.
//
// A Builder discovers definition files with a glob pattern ("**" matches any
// number of directories), parses them as YAML (.yml, .yaml) or JSON (anything
// else), validates them and classifies each one:
//
//   - a lookup definition has a non-null "lookup" key or a class ending in "Lookup"
//   - every other definition is a processor definition
//
// Keywords shorten definitions. The default keyword "processor" selects the
// declarative processor class and makes its value the declaration body:
//
//	pipeline_id: main
//	processor: |
//	  !EQ
//	  - !ITEM EVENT status
//	  - ok
//
// ConstructSegment resolves every definition's (module, class) in a
// ClassRegistry and calls its factory. Lookups are constructed first, across
// all files, and registered on the pipeline.Service. Processors are then
// constructed, and only once all of them succeeded are they spliced into their
// pipelines, each immediately before the terminal processor. Spliced
// processors get profiler counters that Pipeline.ResetProfiler resets.
package segment
