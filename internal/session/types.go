package session

import (
	"context"
	"errors"
)

var (
	ErrEmptyLink = errors.New("empty link")
	ErrNoSession = errors.New("no download session started")
)

const (
	EmptyLinkMessage      = "Please enter a Spotify link."
	TransportErrorMessage = "Error occurred while downloading."
)

// Stream is an open server-push connection. Close must be safe to call more than
// once and must unblock a pending Recv.
type Stream interface {
	Recv() (string, error)
	Close() error
}

// DialFunc opens the event stream for a link.
type DialFunc func(ctx context.Context, link string) (Stream, error)

type InstructionKind int

const (
	ShowProgress InstructionKind = iota
	SetProgress
	AppendLog
	ShowError
	ShowDownload
	HideProgress
)

func (k InstructionKind) String() string {
	switch k {
	case ShowProgress:
		return "show-progress"
	case SetProgress:
		return "set-progress"
	case AppendLog:
		return "append-log"
	case ShowError:
		return "show-error"
	case ShowDownload:
		return "show-download"
	case HideProgress:
		return "hide-progress"
	}
	return "unknown"
}

// Instruction is a single render step emitted by the Controller.
type Instruction struct {
	SessionID string
	Kind      InstructionKind
	Progress  int
	Text      string
	// Success marks informational completion log lines.
	Success bool
}

// Renderer consumes instructions in emission order. Render is called with the
// controller lock held and must not call back into the Controller.
type Renderer interface {
	Render(Instruction)
}

type RendererFunc func(Instruction)

func (f RendererFunc) Render(in Instruction) { f(in) }

type OutcomeStatus int

const (
	Pending OutcomeStatus = iota
	Succeeded
	Failed
)

func (s OutcomeStatus) String() string {
	switch s {
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return "pending"
}

// Outcome of a session. Path is set on success with an artifact; a success with an
// empty Path means the backend kept the files on the server.
type Outcome struct {
	Status  OutcomeStatus
	Path    string
	Message string
}

// Progress is the state read by the rendering layer.
type Progress struct {
	Percent int
	Visible bool
}

type Phase int

const (
	Idle Phase = iota
	Active
	Terminated
)

func (p Phase) String() string {
	switch p {
	case Active:
		return "active"
	case Terminated:
		return "terminated"
	}
	return "idle"
}

// State is a point-in-time copy of the current session.
type State struct {
	ID         string
	Link       string
	Phase      Phase
	Progress   Progress
	Terminated bool
	Outcome    Outcome
	SuccessLog bool
}
