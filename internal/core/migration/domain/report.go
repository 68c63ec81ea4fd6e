package domain

// Reporter receives progress output from the core packages.
type Reporter interface {
	Info(msg string)
	Success(msg string)
	Warning(msg string)
	Error(msg string)

	// Plan renders a compiled plan before it is executed.
	Plan(title string, plan *Plan)

	// Request reports request i (1-based) of n within a batch.
	Request(i, n int, req RemoteRequest)
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) Info(string)                     {}
func (NopReporter) Success(string)                  {}
func (NopReporter) Warning(string)                  {}
func (NopReporter) Error(string)                    {}
func (NopReporter) Plan(string, *Plan)              {}
func (NopReporter) Request(int, int, RemoteRequest) {}

var _ Reporter = NopReporter{}
