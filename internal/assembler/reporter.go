package assembler

// Reporter receives the progress, log and error streams of an assembly.
// Calls are made from the assembling goroutine, in order.
type Reporter interface {
	OnProgress(percent int)
	OnLog(msg string)
	OnError(msg string)
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) OnProgress(int) {}
func (NopReporter) OnLog(string)   {}
func (NopReporter) OnError(string) {}

// ReporterFuncs adapts plain functions; nil fields are skipped.
type ReporterFuncs struct {
	Progress func(percent int)
	Log      func(msg string)
	Error    func(msg string)
}

func (f ReporterFuncs) OnProgress(percent int) {
	if f.Progress != nil {
		f.Progress(percent)
	}
}

func (f ReporterFuncs) OnLog(msg string) {
	if f.Log != nil {
		f.Log(msg)
	}
}

func (f ReporterFuncs) OnError(msg string) {
	if f.Error != nil {
		f.Error(msg)
	}
}

// multiReporter fans out to several reporters.
type multiReporter []Reporter

func (m multiReporter) OnProgress(percent int) {
	for _, r := range m {
		r.OnProgress(percent)
	}
}

func (m multiReporter) OnLog(msg string) {
	for _, r := range m {
		r.OnLog(msg)
	}
}

func (m multiReporter) OnError(msg string) {
	for _, r := range m {
		r.OnError(msg)
	}
}

// Tee reports to all of rs, skipping nils.
func Tee(rs ...Reporter) Reporter {
	out := make(multiReporter, 0, len(rs))
	for _, r := range rs {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}
