package updater

import (
	"context"
	"errors"
)

// Result is the reported outcome of one tool in a batch.
type Result struct {
	Tool        string  `json:"tool"`
	Outcome     Outcome `json:"outcome"`
	FromVersion string  `json:"from_version,omitempty"`
	Version     string  `json:"version,omitempty"`
	URL         string  `json:"url,omitempty"`
	InstallDir  string  `json:"install_dir,omitempty"`
	FailedAt    string  `json:"failed_at,omitempty"`
	Error       string  `json:"error,omitempty"`
	Err         error   `json:"-"`
}

// Summary is the result of a whole batch.
type Summary struct {
	RunID   string   `json:"run_id"`
	Results []Result `json:"results"`
}

// Count returns how many results have outcome o.
func (s Summary) Count(o Outcome) int {
	n := 0
	for _, r := range s.Results {
		if r.Outcome == o {
			n++
		}
	}
	return n
}

// RunBatch updates each named tool in order, or every catalog entry when names
// is empty. A failing tool never stops the batch. The staging directory is
// emptied once all tools are done.
func (p *Pipeline) RunBatch(ctx context.Context, names []string) Summary {
	if len(names) == 0 {
		names = p.catalog.Names()
	}
	p.log.Info("starting batch", "tools", len(names))

	summary := Summary{RunID: p.id, Results: make([]Result, 0, len(names))}
	for _, name := range names {
		run, err := p.Update(ctx, name)
		res := resultFor(run, err)
		summary.Results = append(summary.Results, res)
		p.reporter.Finish(res)
	}

	if err := clearDir(p.staging); err != nil {
		p.log.Warn("clear staging", "dir", p.staging, "err", err)
	}
	p.log.Info("batch finished",
		"updated", summary.Count(OutcomeUpdated),
		"up_to_date", summary.Count(OutcomeUpToDate),
		"failed", summary.Count(OutcomeFailed),
	)
	return summary
}

func resultFor(run Run, err error) Result {
	res := Result{
		Tool:        run.Tool,
		Outcome:     Classify(err),
		FromVersion: run.FromVersion,
		Version:     run.Version,
		URL:         run.URL,
		InstallDir:  run.InstallDir,
		Err:         err,
	}
	if err == nil {
		return res
	}
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		res.FailedAt = stageErr.State.String()
		res.Error = stageErr.Err.Error()
	} else {
		res.Error = err.Error()
	}
	if res.Outcome == OutcomeUpToDate {
		res.Version = run.FromVersion
	}
	return res
}
