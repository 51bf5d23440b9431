package benchmark

// Reporter receives progress from a Runner. Errors are logged by the Runner
// and never affect the results it returns.
type Reporter interface {
	SuiteStart(suite string, cfg RunConfig) error
	BenchStart(name string) error
	BenchEnd(result Result) error
	SuiteEnd(suite *Suite) error
}

type nopReporter struct{}

func (nopReporter) SuiteStart(string, RunConfig) error { return nil }
func (nopReporter) BenchStart(string) error            { return nil }
func (nopReporter) BenchEnd(Result) error              { return nil }
func (nopReporter) SuiteEnd(*Suite) error              { return nil }
