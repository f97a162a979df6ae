package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"toolupdater/internal/updater"
)

// Column headers of the update table.
const (
	ColTool   = "TOOL"
	ColStatus = "STATUS"
	ColLocal  = "LOCAL"
	ColLatest = "LATEST"
	ColDetail = "DETAIL"
)

// UpdateColumns is the layout used by the update progress table.
func UpdateColumns() []Column {
	return []Column{
		{Header: ColTool, Width: 16},
		{Header: ColStatus, Width: 16},
		{Header: ColLocal, Width: 12},
		{Header: ColLatest, Width: 12},
		{Header: ColDetail, Width: 48},
	}
}

// NewUpdateModel returns a progress model with one pending row per tool.
func NewUpdateModel(title string, tools []string) ProgressModel {
	m := NewProgressModel(title, UpdateColumns())
	for _, name := range tools {
		m.AddRow(name, []string{name, "pending", "-", "-", ""})
	}
	return m
}

// PipelineReporter forwards pipeline progress to a running progress model.
type PipelineReporter struct {
	send func(tea.Msg)
}

// NewPipelineReporter wraps send, normally the callback given by RunWithWork.
func NewPipelineReporter(send func(tea.Msg)) *PipelineReporter {
	return &PipelineReporter{send: send}
}

// Transition implements updater.Reporter.
func (r *PipelineReporter) Transition(run updater.Run) {
	if run.State == updater.StateFailed || run.State == updater.StateDone {
		// Finish carries the final row.
		return
	}
	fields := map[string]string{
		ColStatus: run.State.String(),
		ColLocal:  NonEmptyOrDash(run.FromVersion),
	}
	if run.Version != "" {
		fields[ColLatest] = run.Version
	}
	if run.URL != "" {
		fields[ColDetail] = run.URL
	}
	r.send(RowUpdateMsg{Key: run.Tool, Fields: fields})
}

// Finish implements updater.Reporter.
func (r *PipelineReporter) Finish(res updater.Result) {
	r.send(RowUpdateMsg{Key: res.Tool, Fields: ResultFields(res)})
}

// ResultFields renders a finished result as row fields.
func ResultFields(res updater.Result) map[string]string {
	detail := res.InstallDir
	if res.Outcome == updater.OutcomeFailed {
		detail = res.FailedAt + ": " + res.Error
	}
	return map[string]string{
		ColTool:   res.Tool,
		ColStatus: string(res.Outcome),
		ColLocal:  NonEmptyOrDash(res.FromVersion),
		ColLatest: NonEmptyOrDash(res.Version),
		ColDetail: detail,
	}
}
