package output

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/tanq16/playlistdl/internal/utils"
)

const (
	StatusPending = "pending"
	StatusActive  = "active"
	StatusSuccess = "success"
	StatusError   = "error"
)

// Entry is the display state of one tracked download.
type Entry struct {
	ID          int
	Label       string
	Status      string
	Message     string
	StreamLines []string
	Percent     int
	ShowBar     bool
	Complete    bool
	StartTime   time.Time
	LastUpdated time.Time
	Err         error
}

type ErrorReport struct {
	Label string
	Err   error
	Time  time.Time
}

// Manager owns terminal output for a run. In interactive mode a ticker redraws
// every entry in place; otherwise lines are written as they arrive.
type Manager struct {
	out         io.Writer
	interactive bool

	mutex      sync.RWMutex
	entries    map[int]*Entry
	nextID     int
	numLines   int
	maxStreams int
	errors     []ErrorReport

	displayTick time.Duration
	doneCh      chan struct{}
	displayWg   sync.WaitGroup
	started     bool
}

func NewManager(out io.Writer, interactive bool) *Manager {
	return &Manager{
		out:         out,
		interactive: interactive,
		entries:     make(map[int]*Entry),
		maxStreams:  8,
		displayTick: 200 * time.Millisecond,
		doneCh:      make(chan struct{}),
	}
}

func (m *Manager) Register(label string) int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.nextID++
	now := time.Now()
	m.entries[m.nextID] = &Entry{
		ID:          m.nextID,
		Label:       label,
		Status:      StatusPending,
		StartTime:   now,
		LastUpdated: now,
	}
	return m.nextID
}

// Get returns a copy of the entry.
func (m *Manager) Get(id int) (Entry, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	e, ok := m.entries[id]
	if !ok {
		return Entry{}, false
	}
	cp := *e
	cp.StreamLines = append([]string(nil), e.StreamLines...)
	return cp, true
}

func (m *Manager) update(id int, fn func(*Entry)) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if e, ok := m.entries[id]; ok {
		e.LastUpdated = time.Now()
		fn(e)
	}
}

func (m *Manager) SetMessage(id int, message string) {
	m.update(id, func(e *Entry) {
		e.Message = message
		if e.Status == StatusPending {
			e.Status = StatusActive
		}
	})
}

// SetPercent moves the entry's bar. Values are clamped to [0,100].
func (m *Manager) SetPercent(id int, percent int) {
	m.update(id, func(e *Entry) {
		e.Percent = max(0, min(percent, 100))
	})
}

func (m *Manager) ShowBar(id int, visible bool) {
	m.update(id, func(e *Entry) {
		e.ShowBar = visible
		if visible && e.Status == StatusPending {
			e.Status = StatusActive
		}
	})
}

func (m *Manager) AddStreamLine(id int, line string) {
	var label string
	m.update(id, func(e *Entry) {
		label = e.Label
		if e.Status == StatusPending {
			e.Status = StatusActive
		}
		width, _ := terminalSize(m.out)
		e.StreamLines = append(e.StreamLines, wrapText(line, width, 6)...)
		if len(e.StreamLines) > m.maxStreams {
			e.StreamLines = e.StreamLines[len(e.StreamLines)-m.maxStreams:]
		}
	})
	if !m.interactive {
		prefix := ""
		if label != "" {
			prefix = debugStyle.Render("["+label+"]") + " "
		}
		m.writeLine("  " + prefix + streamStyle.Render(line))
	}
}

// AddByteProgress replaces the stream lines with a byte progress bar.
func (m *Manager) AddByteProgress(id int, done, total int64, text string) {
	m.update(id, func(e *Entry) {
		elapsed := time.Since(e.StartTime).Seconds()
		bar := PrintProgressBar(done, total, 30)
		e.StreamLines = []string{fmt.Sprintf("%s%s %s %s", bar, debugStyle.Render(text),
			StyleSymbols["bullet"], debugStyle.Render(utils.FormatSpeed(done, elapsed)))}
	})
}

func (m *Manager) Complete(id int, message string) {
	var line string
	m.update(id, func(e *Entry) {
		e.StreamLines = nil
		e.ShowBar = false
		if message == "" {
			message = fmt.Sprintf("Completed %s", e.Label)
		}
		e.Message = message
		e.Complete = true
		e.Status = StatusSuccess
		line = m.finalLine(e)
	})
	if !m.interactive && line != "" {
		m.writeLine(line)
	}
}

func (m *Manager) ReportError(id int, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	var line string
	m.update(id, func(e *Entry) {
		e.ShowBar = false
		e.Complete = true
		e.Status = StatusError
		e.Err = err
		e.Message = err.Error()
		m.errors = append(m.errors, ErrorReport{Label: e.Label, Err: err, Time: time.Now()})
		line = m.finalLine(e)
	})
	if !m.interactive && line != "" {
		m.writeLine(line)
	}
}

// Failures is the number of entries that ended in error.
func (m *Manager) Failures() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.errors)
}

func (m *Manager) writeLine(line string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	fmt.Fprintln(m.out, line)
}

func statusIndicator(status string) string {
	switch status {
	case StatusSuccess:
		return successStyle.Render(StyleSymbols["pass"])
	case StatusError:
		return errorStyle.Render(StyleSymbols["fail"])
	case StatusPending:
		return pendingStyle.Render(StyleSymbols["pending"])
	default:
		return infoStyle.Render(StyleSymbols["bullet"])
	}
}

func styleMessage(status, msg string) string {
	switch status {
	case StatusSuccess:
		return successStyle.Render(msg)
	case StatusError:
		return errorStyle.Render(msg)
	default:
		return pendingStyle.Render(msg)
	}
}

// finalLine is the one line summary of a finished entry. Callers hold m.mutex.
func (m *Manager) finalLine(e *Entry) string {
	elapsed := e.LastUpdated.Sub(e.StartTime).Round(time.Second)
	return fmt.Sprintf("  %s %s %s", statusIndicator(e.Status), debugStyle.Render(elapsed.String()), styleMessage(e.Status, e.Message))
}

func (m *Manager) sorted() []*Entry {
	all := make([]*Entry, 0, len(m.entries))
	for _, e := range m.entries {
		all = append(all, e)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

func (m *Manager) render(e *Entry) []string {
	if e.Complete {
		lines := []string{m.finalLine(e)}
		for _, line := range e.StreamLines {
			lines = append(lines, "      "+line)
		}
		return lines
	}
	msg := e.Message
	if msg == "" {
		msg = e.Label
	}
	elapsed := time.Since(e.StartTime).Round(time.Second)
	lines := []string{fmt.Sprintf("  %s %s %s", statusIndicator(e.Status), debugStyle.Render(elapsed.String()), styleMessage(e.Status, msg))}
	if e.ShowBar {
		lines = append(lines, "      "+PrintProgressBar(int64(e.Percent), 100, 30))
	}
	for _, line := range e.StreamLines {
		lines = append(lines, "      "+streamStyle.Render(line))
	}
	return lines
}

func (m *Manager) updateDisplay() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	_, height := terminalSize(m.out)
	available := height - 3

	var lines []string
	for _, e := range m.sorted() {
		lines = append(lines, m.render(e)...)
	}
	if len(lines) > available {
		lines = lines[len(lines)-available:]
	}
	if m.numLines > 0 {
		fmt.Fprintf(m.out, "\033[%dA\033[J", m.numLines)
	}
	for _, line := range lines {
		fmt.Fprintln(m.out, line)
	}
	m.numLines = len(lines)
}

// StartDisplay begins redrawing. It is a no-op when the manager is not
// interactive.
func (m *Manager) StartDisplay() {
	if !m.interactive || m.started {
		return
	}
	m.started = true
	m.displayWg.Add(1)
	go func() {
		defer m.displayWg.Done()
		ticker := time.NewTicker(m.displayTick)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.updateDisplay()
			case <-m.doneCh:
				m.updateDisplay()
				return
			}
		}
	}()
}

func (m *Manager) StopDisplay() {
	if !m.started {
		return
	}
	m.started = false
	close(m.doneCh)
	m.displayWg.Wait()
}

func (m *Manager) ShowSummary() {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	var success int
	for _, e := range m.entries {
		if e.Status == StatusSuccess {
			success++
		}
	}
	fmt.Fprintln(m.out)
	fmt.Fprintln(m.out, "  "+success2Style.Render(fmt.Sprintf("Completed %d of %d", success, len(m.entries))))
	if len(m.errors) == 0 {
		fmt.Fprintln(m.out)
		return
	}
	fmt.Fprintln(m.out, "  "+errorStyle.Render(fmt.Sprintf("Failed %d of %d", len(m.errors), len(m.entries))))
	fmt.Fprintln(m.out)
	fmt.Fprintln(m.out, "  "+errorStyle.Bold(true).Render("Errors:"))
	for i, report := range m.errors {
		fmt.Fprintf(m.out, "    %s %s %s\n",
			errorStyle.Render(fmt.Sprintf("%d.", i+1)),
			debugStyle.Render(fmt.Sprintf("[%s]", report.Time.Format("15:04:05"))),
			errorStyle.Render(report.Label))
		fmt.Fprintf(m.out, "      %s\n", errorStyle.Render(report.Err.Error()))
	}
	fmt.Fprintln(m.out)
}
