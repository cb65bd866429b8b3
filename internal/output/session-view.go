package output

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/tanq16/playlistdl/internal/backend"
	"github.com/tanq16/playlistdl/internal/session"
)

// SessionView renders controller instructions as Manager entries, one entry per
// download session.
type SessionView struct {
	m *Manager

	mu      sync.Mutex
	label   string
	entries map[string]int
}

func NewSessionView(m *Manager) *SessionView {
	return &SessionView{m: m, entries: make(map[string]int)}
}

// SetLabel names the entry created for the next session.
func (v *SessionView) SetLabel(label string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.label = label
}

// EntryID returns the Manager entry bound to a session.
func (v *SessionView) EntryID(sessionID string) (int, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	id, ok := v.entries[sessionID]
	return id, ok
}

func (v *SessionView) entry(sessionID string) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	// instructions without a session (input validation) always get a fresh entry
	if sessionID != "" {
		if id, ok := v.entries[sessionID]; ok {
			return id
		}
	}
	id := v.m.Register(v.label)
	if sessionID != "" {
		v.entries[sessionID] = id
	}
	return id
}

func (v *SessionView) Render(in session.Instruction) {
	id := v.entry(in.SessionID)
	log.Debug().Str("op", "output/session-view").Str("session", in.SessionID).Msgf("%s %q", in.Kind, in.Text)
	switch in.Kind {
	case session.ShowProgress:
		v.m.SetMessage(id, "Downloading")
		v.m.ShowBar(id, true)
	case session.SetProgress:
		v.m.SetPercent(id, in.Progress)
	case session.AppendLog:
		v.m.AddStreamLine(id, in.Text)
		if in.Success {
			v.m.SetMessage(id, in.Text)
		}
	case session.ShowError:
		v.m.ReportError(id, errors.New(in.Text))
	case session.ShowDownload:
		v.m.SetPercent(id, 100)
		v.m.Complete(id, fmt.Sprintf("Ready %s %s", StyleSymbols["arrow"], backend.ArtifactName(in.Text)))
	case session.HideProgress:
		v.m.ShowBar(id, false)
		if e, ok := v.m.Get(id); ok && !e.Complete {
			v.m.Complete(id, "Download completed, files kept on the server")
		}
	}
}
