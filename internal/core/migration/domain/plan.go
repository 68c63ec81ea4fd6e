package domain

// ExecutionBatch is the ordered group of requests produced from one intent.
type ExecutionBatch struct {
	Intent           string
	Requests         []RemoteRequest
	ValidationErrors []*ValidationError
	RuntimeErrors    []*RuntimeError
}

// Plan is the compiled form of one script direction.
type Plan struct {
	Batches []*ExecutionBatch
}

// ValidationErrors collects the validation errors of every batch.
func (p *Plan) ValidationErrors() ValidationErrors {
	var errs ValidationErrors
	for _, b := range p.Batches {
		errs = append(errs, b.ValidationErrors...)
	}
	return errs
}

// RuntimeErrors collects the runtime errors of every batch.
func (p *Plan) RuntimeErrors() RuntimeErrors {
	var errs RuntimeErrors
	for _, b := range p.Batches {
		errs = append(errs, b.RuntimeErrors...)
	}
	return errs
}

// RequestCount returns the number of requests across all batches.
func (p *Plan) RequestCount() int {
	n := 0
	for _, b := range p.Batches {
		n += len(b.Requests)
	}
	return n
}

// CreatedFile is one script written by the bootstrap generator.
type CreatedFile struct {
	ContentTypeID string
	FileName      string
}
