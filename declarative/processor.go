package declarative

import (
	"fmt"
	"log/slog"

	"github.com/c360/streampump/declarative/expression"
	"github.com/c360/streampump/declarative/segment"
	"github.com/c360/streampump/errors"
	"github.com/c360/streampump/pipeline"
)

// Processor evaluates a compiled declaration against every event.
//
// The result decides what happens to the event:
//   - a mapping replaces the event
//   - true passes the event on unchanged
//   - false or nil drops the event
//   - any other value is stored under the output key, when one is configured
type Processor struct {
	id      string
	program *expression.Program
	output  string
	logger  *slog.Logger
}

// NewProcessor creates a processor around an already compiled program.
func NewProcessor(id string, program *expression.Program, output string, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		id:      id,
		program: program,
		output:  output,
		logger:  logger.With("component", "declarative-processor", "processor", id),
	}
}

// Construct builds a processor from a definition's declaration body. It is the
// factory of the DeclarativeProcessor class.
// Locations inside the declaration are rooted at the keyword that selected it.
func Construct(app segment.App, p *pipeline.Pipeline, def *segment.Definition) (pipeline.Processor, error) {
	path := def.Keyword
	if path == "" {
		path = segment.DefaultKeyword
	}
	program, err := expression.Compile(app.GetExpressions(), def.File, def.Declaration, path)
	if err != nil {
		return nil, errors.Wrap(err, "DeclarativeProcessor", "Construct",
			fmt.Sprintf("compile declaration of %s", def.File))
	}

	logger := app.GetLogger().With("pipeline", p.ID())
	proc := NewProcessor(def.ID, program, def.StringValue("output"), logger)
	proc.logger.Debug("Declaration compiled", "file", def.File, "outlet", program.OutletType().String())
	return proc, nil
}

// Register adds the DeclarativeProcessor class to registry.
func Register(registry *segment.ClassRegistry) error {
	return registry.Register(&segment.Registration{
		Module:      segment.DeclarativeModule,
		Class:       segment.DeclarativeClass,
		Description: "Evaluates a declarative expression against every event",
		Processor:   Construct,
	})
}

// ID returns the processor id
func (p *Processor) ID() string {
	return p.id
}

// Program returns the compiled program.
func (p *Processor) Program() *expression.Program {
	return p.program
}

// Process evaluates the declaration for one event. A declaration error aborts
// only this event.
func (p *Processor) Process(ctx pipeline.Context, event pipeline.Event) (pipeline.Event, error) {
	result, err := p.program.Eval(ctx, event, nil, nil)
	if err != nil {
		return nil, err
	}

	switch v := result.(type) {
	case map[string]any:
		return v, nil
	case bool:
		if !v {
			return nil, nil
		}
		return event, nil
	case nil:
		return nil, nil
	default:
		if p.output != "" {
			event[p.output] = v
		}
		return event, nil
	}
}
