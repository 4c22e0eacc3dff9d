package pipeline

// Processor is one stage. It reads what earlier stages left in the
// context and adds its own results.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		if ctx.Context.Err() != nil {
			ctx.Errors = append(ctx.Errors, ctx.Context.Err())
			break
		}
		ctx = processor.Process(ctx)
		// Continue on errors: a module that failed to load must not keep
		// the others from being verified.
	}
	return ctx
}
