package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tanq16/playlistdl/internal/session"
)

func TestSessionViewSuccessFlow(t *testing.T) {
	var buf bytes.Buffer
	m := NewManager(&buf, false)
	v := NewSessionView(m)
	v.SetLabel("https://open.spotify.com/track/abc")

	for _, in := range []session.Instruction{
		{SessionID: "s1", Kind: session.ShowProgress},
		{SessionID: "s1", Kind: session.SetProgress, Progress: 0},
		{SessionID: "s1", Kind: session.AppendLog, Text: "Downloading track 1"},
		{SessionID: "s1", Kind: session.SetProgress, Progress: 10},
		{SessionID: "s1", Kind: session.SetProgress, Progress: 100},
		{SessionID: "s1", Kind: session.ShowDownload, Text: "abc/My%20Song.mp3"},
		{SessionID: "s1", Kind: session.HideProgress},
	} {
		v.Render(in)
	}

	id, ok := v.EntryID("s1")
	if !ok {
		t.Fatal("expected an entry for the session")
	}
	e, _ := m.Get(id)
	if e.Status != StatusSuccess || e.Percent != 100 || e.ShowBar {
		t.Errorf("unexpected entry %+v", e)
	}
	if !strings.Contains(e.Message, "My Song.mp3") {
		t.Errorf("expected decoded artifact name, got %q", e.Message)
	}
	if !strings.Contains(buf.String(), "Downloading track 1") {
		t.Errorf("expected log line in output, got %q", buf.String())
	}
}

func TestSessionViewError(t *testing.T) {
	m := NewManager(&bytes.Buffer{}, false)
	v := NewSessionView(m)
	v.Render(session.Instruction{SessionID: "s1", Kind: session.ShowProgress})
	v.Render(session.Instruction{SessionID: "s1", Kind: session.ShowError, Text: "Error: boom"})
	v.Render(session.Instruction{SessionID: "s1", Kind: session.HideProgress})

	id, _ := v.EntryID("s1")
	e, _ := m.Get(id)
	if e.Status != StatusError || e.Message != "Error: boom" {
		t.Errorf("unexpected entry %+v", e)
	}
	if m.Failures() != 1 {
		t.Errorf("expected 1 failure, got %d", m.Failures())
	}
}

func TestSessionViewHideWithoutArtifactCompletes(t *testing.T) {
	m := NewManager(&bytes.Buffer{}, false)
	v := NewSessionView(m)
	v.Render(session.Instruction{SessionID: "s1", Kind: session.ShowProgress})
	v.Render(session.Instruction{SessionID: "s1", Kind: session.AppendLog, Text: "Download completed", Success: true})
	v.Render(session.Instruction{SessionID: "s1", Kind: session.HideProgress})

	id, _ := v.EntryID("s1")
	e, _ := m.Get(id)
	if e.Status != StatusSuccess {
		t.Errorf("expected success, got %+v", e)
	}
}

func TestSessionViewSeparateSessions(t *testing.T) {
	m := NewManager(&bytes.Buffer{}, false)
	v := NewSessionView(m)
	v.Render(session.Instruction{SessionID: "a", Kind: session.ShowProgress})
	v.Render(session.Instruction{SessionID: "b", Kind: session.ShowProgress})
	v.Render(session.Instruction{Kind: session.ShowError, Text: session.EmptyLinkMessage})
	a, _ := v.EntryID("a")
	b, _ := v.EntryID("b")
	if a == b {
		t.Error("expected distinct entries per session")
	}
	if m.Failures() != 1 {
		t.Errorf("expected the sessionless error to be reported, got %d", m.Failures())
	}
}
