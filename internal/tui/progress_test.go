package tui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"toolupdater/internal/updater"
)

func TestRowUpdateMsg(t *testing.T) {
	m := NewUpdateModel("Updating tools", []string{"7zip", "ffmpeg"})

	updated, _ := m.Update(RowUpdateMsg{
		Key:    "7zip",
		Fields: map[string]string{ColStatus: "downloading", ColLatest: "24.08"},
	})
	m = updated.(ProgressModel)

	if m.rows[0].cells[1] != "downloading" {
		t.Errorf("expected STATUS=downloading, got %q", m.rows[0].cells[1])
	}
	if m.rows[0].cells[3] != "24.08" {
		t.Errorf("expected LATEST=24.08, got %q", m.rows[0].cells[3])
	}
	if m.rows[1].cells[1] != "pending" {
		t.Errorf("expected row 2 STATUS=pending, got %q", m.rows[1].cells[1])
	}
}

func TestRowUpdateMsgUnknownKey(t *testing.T) {
	m := NewUpdateModel("", []string{"7zip"})

	updated, _ := m.Update(RowUpdateMsg{
		Key:    "ghost",
		Fields: map[string]string{ColStatus: "updated"},
	})
	m = updated.(ProgressModel)

	if m.rows[0].cells[1] != "pending" {
		t.Errorf("expected STATUS unchanged, got %q", m.rows[0].cells[1])
	}
}

func TestWorkDoneMsg(t *testing.T) {
	m := NewUpdateModel("", nil)

	updated, cmd := m.Update(WorkDoneMsg{})
	m = updated.(ProgressModel)

	if !m.done {
		t.Error("expected model to be done after WorkDoneMsg")
	}
	if cmd == nil {
		t.Error("expected tea.Quit command")
	}
}

func TestErrorMsg(t *testing.T) {
	m := NewUpdateModel("", nil)

	updated, cmd := m.Update(ErrorMsg{Err: errors.New("catalog vanished")})
	m = updated.(ProgressModel)

	if !m.done || m.Err() == nil {
		t.Fatal("expected model to stop with an error")
	}
	if cmd == nil {
		t.Error("expected tea.Quit command")
	}
	if !strings.Contains(m.View(), "catalog vanished") {
		t.Error("expected error in view")
	}
}

func TestCtrlCInterrupts(t *testing.T) {
	m := NewUpdateModel("", []string{"7zip"})

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = updated.(ProgressModel)

	if !errors.Is(m.Err(), ErrInterrupted) {
		t.Errorf("expected ErrInterrupted, got %v", m.Err())
	}
	if cmd == nil {
		t.Error("expected tea.Quit command")
	}
}

func TestFramesStopAfterDone(t *testing.T) {
	m := NewUpdateModel("", []string{"7zip"})

	updated, cmd := m.Update(frameMsg{})
	m = updated.(ProgressModel)
	if m.frame != 1 || cmd == nil {
		t.Fatalf("expected tick to advance and reschedule, frame=%d", m.frame)
	}

	updated, _ = m.Update(WorkDoneMsg{})
	m = updated.(ProgressModel)
	if _, cmd := m.Update(frameMsg{}); cmd != nil {
		t.Error("expected no tick command after done")
	}
}

func TestViewFooter(t *testing.T) {
	m := NewUpdateModel("Updating tools", []string{"7zip", "ffmpeg", "upx"})
	updated, _ := m.Update(RowUpdateMsg{Key: "7zip", Fields: map[string]string{ColStatus: "updated"}})
	m = updated.(ProgressModel)
	updated, _ = m.Update(RowUpdateMsg{Key: "ffmpeg", Fields: map[string]string{ColStatus: "extracting"}})
	m = updated.(ProgressModel)

	view := m.View()
	for _, want := range []string{"Updating tools", ColTool, ColStatus, ColDetail, "ffmpeg", "extracting", "Updating 1/3 tools"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}

	updated, _ = m.Update(WorkDoneMsg{})
	m = updated.(ProgressModel)
	if strings.Contains(m.View(), "Updating 1/3") {
		t.Error("expected footer to disappear when done")
	}
}

func TestPipelineReporter(t *testing.T) {
	var msgs []RowUpdateMsg
	r := NewPipelineReporter(func(msg tea.Msg) { msgs = append(msgs, msg.(RowUpdateMsg)) })

	r.Transition(updater.Run{Tool: "7zip", FromVersion: "24.07", State: updater.StateResolving})
	r.Transition(updater.Run{Tool: "7zip", FromVersion: "24.07", Version: "24.08", URL: "https://example.test/7z.7z", State: updater.StateDownloading})
	r.Transition(updater.Run{Tool: "7zip", State: updater.StateFailed})
	r.Finish(updater.Result{Tool: "7zip", Outcome: updater.OutcomeFailed, FromVersion: "24.07", FailedAt: "extracting", Error: "bad archive"})

	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	if msgs[0].Fields[ColStatus] != "resolving" || msgs[0].Fields[ColLocal] != "24.07" {
		t.Errorf("unexpected first update %+v", msgs[0].Fields)
	}
	if msgs[1].Fields[ColLatest] != "24.08" || msgs[1].Fields[ColDetail] != "https://example.test/7z.7z" {
		t.Errorf("unexpected second update %+v", msgs[1].Fields)
	}
	if msgs[2].Fields[ColStatus] != "failed" || msgs[2].Fields[ColDetail] != "extracting: bad archive" {
		t.Errorf("unexpected final update %+v", msgs[2].Fields)
	}
}

func TestDetectMode(t *testing.T) {
	var buf bytes.Buffer
	if got := DetectMode(&buf, false, true); got != ModeJSON {
		t.Errorf("json flag: got %s", got)
	}
	if got := DetectMode(&buf, true, false); got != ModePlain {
		t.Errorf("no-progress flag: got %s", got)
	}
	if got := DetectMode(&buf, false, false); got != ModePlain {
		t.Errorf("non-terminal writer: got %s", got)
	}
}

func TestNonEmptyOrDash(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "-"},
		{"  ", "-"},
		{"0", "0"},
		{" 1.2 ", "1.2"},
	}
	for _, tt := range tests {
		if got := NonEmptyOrDash(tt.input); got != tt.want {
			t.Errorf("NonEmptyOrDash(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"https://example.test/long", 10, "https://e…"},
		{"C:\\Werkzeuge\\Größe", 17, "C:\\Werkzeuge\\Grö…"},
		{"abcd", 1, "a"},
		{"hello", 0, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.input, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.width, got, tt.want)
		}
	}
}

func TestDetailColumnFitsTerminal(t *testing.T) {
	m := NewUpdateModel("", []string{"7zip"})
	detail := "https://example.test/releases/download/24.08/7z2408-x64.7z"
	updated, _ := m.Update(RowUpdateMsg{Key: "7zip", Fields: map[string]string{ColDetail: detail}})
	m = updated.(ProgressModel)

	if !strings.Contains(m.View(), detail[:40]) {
		t.Fatal("expected detail prefix before the terminal width is known")
	}

	updated, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = updated.(ProgressModel)
	view := m.View()
	if !strings.Contains(view, truncate(detail, 16)) || strings.Contains(view, detail[:20]) {
		t.Fatalf("expected detail cut to the terminal width:\n%s", view)
	}
	widths := m.widths()
	if got := widths[len(widths)-1]; got != 80-(16+16+12+12)-4*len(columnGap) {
		t.Fatalf("detail width = %d", got)
	}
}
