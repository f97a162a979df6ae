package updater

// Reporter observes pipeline progress. Calls arrive on the goroutine running
// the batch, in order.
type Reporter interface {
	// Transition is called each time a run enters a new state.
	Transition(run Run)
	// Finish is called once per tool with its final result.
	Finish(res Result)
}

type nopReporter struct{}

func (nopReporter) Transition(Run) {}
func (nopReporter) Finish(Result)  {}

// ReporterFuncs adapts plain functions to a Reporter. Nil fields are skipped.
type ReporterFuncs struct {
	OnTransition func(Run)
	OnFinish     func(Result)
}

func (r ReporterFuncs) Transition(run Run) {
	if r.OnTransition != nil {
		r.OnTransition(run)
	}
}

func (r ReporterFuncs) Finish(res Result) {
	if r.OnFinish != nil {
		r.OnFinish(res)
	}
}
