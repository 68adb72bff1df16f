package segment

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"

	"github.com/c360/streampump/errors"
	"github.com/c360/streampump/metric"
	"github.com/c360/streampump/pipeline"
)

// DefaultPath is the discovery pattern used when none is configured.
const DefaultPath = "./etc/processors/*"

// Segment kinds recorded in metrics
const (
	kindLookup    = "lookup"
	kindProcessor = "processor"
)

// ConstructionError reports a definition that could not be assembled. It names
// the definition file and the class it selected.
type ConstructionError struct {
	File       string
	Module     string
	Class      string
	PipelineID string
	Err        error
}

func (e *ConstructionError) Error() string {
	class := e.Class
	if e.Module != "" {
		class = e.Module + "." + e.Class
	}
	if class == "" {
		class = "<no class>"
	}
	return fmt.Sprintf("construct %s from %s (pipeline '%s'): %v", class, e.File, e.PipelineID, e.Err)
}

func (e *ConstructionError) Unwrap() error {
	return e.Err
}

// ErrorClass classifies construction failures as invalid configuration.
func (e *ConstructionError) ErrorClass() errors.ErrorClass {
	return errors.ErrorInvalid
}

func constructionError(def *Definition, err error) error {
	return &ConstructionError{
		File:       def.File,
		Module:     def.Module,
		Class:      def.Class,
		PipelineID: def.PipelineID,
		Err:        err,
	}
}

// Builder discovers definition files and splices the lookups and processors
// they define into running pipelines.
//
// A Builder is not safe for concurrent use; callers serialize ConstructSegment
// per pipeline and run it before the pipeline consumes events. ConstructSegment
// runs once per Builder; rediscovering definitions needs a new Builder.
type Builder struct {
	path        string
	classes     *ClassRegistry
	keywords    *KeywordRegistry
	lookups     []*Definition
	processors  []*Definition
	constructed bool
	logger      *slog.Logger
}

// NewBuilder creates a builder and discovers the definitions matching path
// (DefaultPath when empty). keywords may be nil to use the process-wide
// keyword registry.
func NewBuilder(path string, classes *ClassRegistry, keywords *KeywordRegistry, logger *slog.Logger) (*Builder, error) {
	if classes == nil {
		return nil, errors.WrapFatal(fmt.Errorf("class registry cannot be nil"), "Builder", "NewBuilder",
			"class registry validation")
	}
	if path == "" {
		path = DefaultPath
	}
	if keywords == nil {
		keywords = DefaultKeywords()
	}
	if logger == nil {
		logger = slog.Default()
	}

	b := &Builder{
		path:     path,
		classes:  classes,
		keywords: keywords,
		logger:   logger.With("component", "segment-builder"),
	}
	if err := b.Discover(); err != nil {
		return nil, err
	}
	return b, nil
}

// Discover (re)reads every regular file matching the builder's pattern, with
// recursive "**" support, and classifies the definitions.
func (b *Builder) Discover() error {
	files, err := doublestar.FilepathGlob(b.path)
	if err != nil {
		return errors.WrapInvalid(err, "Builder", "Discover", fmt.Sprintf("glob '%s'", b.path))
	}

	var lookups, processors []*Definition
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			return errors.WrapTransient(err, "Builder", "Discover", fmt.Sprintf("stat %s", file))
		}
		if !info.Mode().IsRegular() {
			continue
		}

		def, err := LoadDefinition(file)
		if err != nil {
			return &ConstructionError{File: file, Err: err}
		}
		if def.IsLookup() {
			lookups = append(lookups, def)
		} else {
			processors = append(processors, def)
		}
	}

	b.lookups, b.processors = lookups, processors
	b.logger.Info("Definitions discovered",
		"path", b.path, "lookups", len(lookups), "processors", len(processors))
	return nil
}

// Lookups returns the discovered lookup definitions.
func (b *Builder) Lookups() []*Definition {
	return append([]*Definition(nil), b.lookups...)
}

// Processors returns the discovered processor definitions.
func (b *Builder) Processors() []*Definition {
	return append([]*Definition(nil), b.processors...)
}

// staged is a constructed processor waiting to be spliced.
type staged struct {
	pipeline  *pipeline.Pipeline
	processor pipeline.Processor
	counters  map[string]*metric.ProfilerCounter
}

// ConstructSegment constructs every discovered definition. All lookups, across
// all files, are constructed and registered before any processor. Processors
// are then all constructed before any pipeline is modified, so a failing
// definition leaves every pipeline untouched. Each processor is spliced
// immediately before its pipeline's terminal processor.
func (b *Builder) ConstructSegment(app App) error {
	if app.Service == nil {
		return errors.WrapFatal(fmt.Errorf("service cannot be nil"), "Builder", "ConstructSegment",
			"service validation")
	}
	if b.constructed {
		return errors.WrapFatal(fmt.Errorf("segment from %s already constructed", b.path), "Builder",
			"ConstructSegment", "construction guard")
	}
	b.constructed = true

	if app.MetricsRegistry != nil {
		app.MetricsRegistry.CoreMetrics().RecordDefinitionsLoaded(len(b.lookups) + len(b.processors))
	}

	for _, def := range b.lookups {
		if err := b.constructLookup(app, def); err != nil {
			return err
		}
	}

	stages := make([]staged, 0, len(b.processors))
	for _, def := range b.processors {
		stage, ok, err := b.constructProcessor(app, def)
		if err != nil {
			return err
		}
		if ok {
			stages = append(stages, stage)
		}
	}

	for _, stage := range stages {
		if err := b.splice(app, stage); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) constructLookup(app App, def *Definition) error {
	b.keywords.Normalize(def)

	if _, err := app.Service.Locate(def.PipelineID); err != nil {
		return constructionError(def, err)
	}
	registration, err := b.classes.Resolve(def.Module, def.Class)
	if err != nil {
		return constructionError(def, err)
	}
	if registration.Lookup == nil {
		return constructionError(def, fmt.Errorf("%w: class is not a lookup", errors.ErrInvalidDefinition))
	}

	lookup, err := registration.Lookup(app, def)
	if err != nil {
		return constructionError(def, err)
	}
	if err := app.Service.AddLookup(lookup); err != nil {
		return constructionError(def, err)
	}

	if app.MetricsRegistry != nil {
		app.MetricsRegistry.CoreMetrics().RecordSegmentConstructed(def.PipelineID, kindLookup)
	}
	b.logger.Info("Lookup constructed", "lookup", lookup.ID(), "pipeline", def.PipelineID, "file", def.File)
	return nil
}

func (b *Builder) constructProcessor(app App, def *Definition) (staged, bool, error) {
	b.keywords.Normalize(def)
	if def.ID == "" {
		def.ID = defaultID(def.Class)
	}

	p, err := app.Service.Locate(def.PipelineID)
	if err != nil {
		return staged{}, false, constructionError(def, err)
	}
	if p.Terminal() == nil {
		return staged{}, false, constructionError(def, errors.ErrNoTerminal)
	}
	registration, err := b.classes.Resolve(def.Module, def.Class)
	if err != nil {
		return staged{}, false, constructionError(def, err)
	}
	if registration.Processor == nil {
		return staged{}, false, constructionError(def,
			fmt.Errorf("%w: class is not a processor", errors.ErrInvalidDefinition))
	}

	processor, err := registration.Processor(app, p, def)
	if err != nil {
		return staged{}, false, constructionError(def, err)
	}
	if processor == nil {
		b.logger.Debug("Definition constructed nothing to splice", "file", def.File)
		return staged{}, false, nil
	}

	counters, err := buildProfiling(p, processor)
	if err != nil {
		return staged{}, false, constructionError(def, err)
	}
	return staged{pipeline: p, processor: processor, counters: counters}, true, nil
}

// buildProfiling creates the profiler counters of a processor: one set tagged
// by processor and, for analyzers, a second set tagged by analyzer.
func buildProfiling(p *pipeline.Pipeline, processor pipeline.Processor) (map[string]*metric.ProfilerCounter, error) {
	registry := p.MetricsService()
	if registry == nil {
		return nil, nil
	}

	counters := make(map[string]*metric.ProfilerCounter, 2)
	counter, err := registry.CreateProfilerCounter(metric.ProfilerTagProcessor, processor.ID(), p.ID())
	if err != nil {
		return nil, err
	}
	counters[processor.ID()] = counter

	if _, ok := processor.(pipeline.Analyzer); ok {
		counter, err := registry.CreateProfilerCounter(metric.ProfilerTagAnalyzer, processor.ID(), p.ID())
		if err != nil {
			return nil, err
		}
		counters[pipeline.AnalyzerCounterKey(processor.ID())] = counter
	}
	return counters, nil
}

// splice inserts the staged processor immediately before the terminal
// processor, keeping the terminal's identity.
func (b *Builder) splice(app App, stage staged) error {
	p := stage.pipeline
	terminal, err := p.PopLast()
	if err != nil {
		return errors.Wrap(err, "Builder", "splice", fmt.Sprintf("splice into pipeline '%s'", p.ID()))
	}
	p.Append(stage.processor)
	p.Append(terminal)

	for key, counter := range stage.counters {
		p.SetProfilerCounter(key, counter)
	}

	if app.MetricsRegistry != nil {
		app.MetricsRegistry.CoreMetrics().RecordSegmentConstructed(p.ID(), kindProcessor)
	}
	b.logger.Info("Processor spliced",
		"processor", stage.processor.ID(), "pipeline", p.ID(), "before", terminal.ID())
	return nil
}

func defaultID(class string) string {
	if class == "" {
		class = "processor"
	}
	return strings.ToLower(class) + "-" + uuid.NewString()[:8]
}
