// ABOUTME: Bubble Tea model for the loopdeck terminal interface.
// ABOUTME: Renders the library list, waveform, transport status and handles keys.

package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/loopdeck/loopdeck-go/internal/engine"
	"github.com/loopdeck/loopdeck-go/internal/library"
	"github.com/loopdeck/loopdeck-go/pkg/audio"
)

// Controller is the slice of the application the interface drives.
type Controller interface {
	Recordings() ([]library.Recording, error)
	Toggle(recordingID string, loop bool) error
	Stop()
	Status() engine.Status
	SetVolume(v float64)
	Volume() float64
	Waveform(ctx context.Context, recordingID string) ([]float64, error)
	LoopPoints(recordingID string) (*audio.LoopPoints, error)
	SaveLoopPoints(recordingID string, pts audio.LoopPoints) error
	RecentIDs() []string
}

const (
	refreshInterval = 100 * time.Millisecond
	waveformTimeout = 30 * time.Second
	listNameWidth   = 40
	volumeBarWidth  = 10
)

// refreshMsg drives the periodic status poll.
type refreshMsg time.Time

// recordingsMsg delivers the result of a library scan.
type recordingsMsg struct {
	recordings []library.Recording
	err        error
}

// envelopeMsg delivers a waveform envelope for one recording. The ID is
// carried along so an envelope arriving after the cursor moved on is still
// filed under the right recording.
type envelopeMsg struct {
	recordingID string
	envelope    []float64
	err         error
}

// Model is the Bubble Tea model for the loopdeck interface.
type Model struct {
	ctrl Controller

	recordings []library.Recording
	cursor     int

	status engine.Status
	volume float64
	recent map[string]bool

	envelopes map[string][]float64
	requested map[string]bool
	edits     map[string]audio.LoopPoints

	errText string
	width   int
	height  int
}

// NewModel creates a model driving the given controller.
func NewModel(ctrl Controller) Model {
	return Model{
		ctrl:      ctrl,
		volume:    1.0,
		recent:    make(map[string]bool),
		envelopes: make(map[string][]float64),
		requested: make(map[string]bool),
		edits:     make(map[string]audio.LoopPoints),
	}
}

// Init starts the first scan and the status poll.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.scanCmd(), refreshCmd())
}

func refreshCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

func (m Model) scanCmd() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		recs, err := ctrl.Recordings()
		return recordingsMsg{recordings: recs, err: err}
	}
}

func (m Model) waveformCmd(recordingID string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), waveformTimeout)
		defer cancel()
		env, err := ctrl.Waveform(ctx, recordingID)
		return envelopeMsg{recordingID: recordingID, envelope: env, err: err}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case refreshMsg:
		m.status = m.ctrl.Status()
		m.volume = m.ctrl.Volume()
		m.recent = make(map[string]bool)
		for _, id := range m.ctrl.RecentIDs() {
			m.recent[id] = true
		}
		return m, refreshCmd()

	case recordingsMsg:
		if msg.err != nil {
			m.errText = fmt.Sprintf("scan library: %v", msg.err)
			return m, nil
		}
		m.recordings = msg.recordings
		if m.cursor >= len(m.recordings) {
			m.cursor = len(m.recordings) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		return m, m.fetchSelected()

	case envelopeMsg:
		delete(m.requested, msg.recordingID)
		if msg.err != nil {
			m.errText = fmt.Sprintf("waveform %s: %v", msg.recordingID, msg.err)
			return m, nil
		}
		m.envelopes[msg.recordingID] = msg.envelope
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, m.fetchSelected()

	case "down", "j":
		if m.cursor < len(m.recordings)-1 {
			m.cursor++
		}
		return m, m.fetchSelected()

	case " ", "enter":
		m = m.toggleSelected(false)
		return m, nil

	case "l":
		m = m.toggleSelected(true)
		return m, nil

	case "x":
		m.ctrl.Stop()
		return m, nil

	case "i":
		m = m.setLoopEdit(true)
		return m, nil

	case "o":
		m = m.setLoopEdit(false)
		return m, nil

	case "w":
		m = m.saveLoopEdit()
		return m, nil

	case "+", "=":
		m.ctrl.SetVolume(m.volume + 0.05)
		m.volume = m.ctrl.Volume()
		return m, nil

	case "-":
		m.ctrl.SetVolume(m.volume - 0.05)
		m.volume = m.ctrl.Volume()
		return m, nil

	case "r":
		return m, m.scanCmd()
	}

	return m, nil
}

func (m Model) toggleSelected(loop bool) Model {
	id := m.selectedID()
	if id == "" {
		return m
	}
	m.errText = ""
	if err := m.ctrl.Toggle(id, loop); err != nil {
		m.errText = fmt.Sprintf("play %s: %v", id, err)
	}
	return m
}

// setLoopEdit records the current playhead as the loop start or end of the
// selected recording. It only makes sense while that recording is playing,
// since the playhead is what gets captured.
func (m Model) setLoopEdit(start bool) Model {
	id := m.selectedID()
	if id == "" || m.status.State != engine.StatePlaying || m.status.RecordingID != id {
		m.errText = "play the recording to set loop points"
		return m
	}

	pts, ok := m.edits[id]
	if !ok {
		if saved, err := m.ctrl.LoopPoints(id); err == nil && saved != nil {
			pts = *saved
		} else {
			pts = audio.LoopPoints{End: m.status.Duration.Seconds()}
		}
	}

	pos := m.status.Position.Seconds()
	if start {
		pts.Start = pos
	} else {
		pts.End = pos
	}
	m.edits[id] = pts
	m.errText = ""
	return m
}

func (m Model) saveLoopEdit() Model {
	id := m.selectedID()
	if id == "" {
		return m
	}
	pts, ok := m.edits[id]
	if !ok {
		m.errText = "no loop edit to save; mark points with i and o first"
		return m
	}
	if err := m.ctrl.SaveLoopPoints(id, pts); err != nil {
		m.errText = fmt.Sprintf("save loop points: %v", err)
		return m
	}
	delete(m.edits, id)
	m.errText = ""
	return m
}

// fetchSelected kicks off a waveform fetch for the selected recording unless
// one is cached or already in flight.
func (m Model) fetchSelected() tea.Cmd {
	id := m.selectedID()
	if id == "" {
		return nil
	}
	if _, ok := m.envelopes[id]; ok {
		return nil
	}
	if m.requested[id] {
		return nil
	}
	m.requested[id] = true
	return m.waveformCmd(id)
}

func (m Model) selectedID() string {
	if len(m.recordings) == 0 || m.cursor < 0 || m.cursor >= len(m.recordings) {
		return ""
	}
	return m.recordings[m.cursor].ID
}

// View renders the interface.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString("\n  loopdeck\n")
	b.WriteString(m.renderList())
	b.WriteString(m.renderWaveform())
	b.WriteString(m.renderStatus())
	if m.errText != "" {
		b.WriteString(fmt.Sprintf("\n  ! %s\n", m.errText))
	}
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderList() string {
	if len(m.recordings) == 0 {
		return "\n  (no recordings found; drop audio files into the library)\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	for i, rec := range m.recordings {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		marker := " "
		switch {
		case m.status.State == engine.StatePlaying && m.status.RecordingID == rec.ID:
			marker = "▶"
			if m.status.Loop {
				marker = "↻"
			}
		case m.recent[rec.ID]:
			marker = "•"
		}

		b.WriteString(fmt.Sprintf("  %s%s %-*s %s\n",
			cursor, marker, listNameWidth, truncate(rec.Name, listNameWidth), rec.Format))
	}
	return b.String()
}

func (m Model) renderWaveform() string {
	id := m.selectedID()
	if id == "" {
		return ""
	}
	env, ok := m.envelopes[id]
	if !ok {
		if m.requested[id] {
			return "\n  waveform: computing...\n"
		}
		return ""
	}

	width := m.width - 4
	if width > len(env) {
		width = len(env)
	}
	bar := waveformBar(env, width)
	if bar == "" {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n  " + bar + "\n")
	if m.status.State == engine.StatePlaying && m.status.RecordingID == id {
		b.WriteString("  " + positionMarker(m.status.Position, m.status.Duration, width) + "\n")
	}
	return b.String()
}

func (m Model) renderStatus() string {
	var b strings.Builder
	b.WriteString("\n")

	switch m.status.State {
	case engine.StatePlaying:
		line := fmt.Sprintf("  %s  %s / %s", m.status.RecordingID,
			formatDuration(m.status.Position), formatDuration(m.status.Duration))
		if m.status.Loop {
			line += fmt.Sprintf("  loop %.1fs–%.1fs", m.status.LoopPoints.Start, m.status.LoopPoints.End)
		}
		b.WriteString(line + "\n")
	default:
		b.WriteString("  stopped\n")
	}

	b.WriteString(fmt.Sprintf("  volume %s %3.0f%%\n", renderBar(m.volume, volumeBarWidth), m.volume*100))

	if id := m.selectedID(); id != "" {
		if pts, ok := m.edits[id]; ok {
			b.WriteString(fmt.Sprintf("  loop edit %.1fs–%.1fs (w to save)\n", pts.Start, pts.End))
		}
	}
	return b.String()
}

func (m Model) renderHelp() string {
	return "\n  space play/stop · l loop · x stop · i/o mark loop · w save · +/- volume · r rescan · q quit\n"
}

var waveformGlyphs = []rune("▁▂▃▄▅▆▇█")

// waveformBar renders a normalized envelope as a row of block glyphs,
// resampled to the given width.
func waveformBar(envelope []float64, width int) string {
	if width <= 0 || len(envelope) == 0 {
		return ""
	}

	out := make([]rune, width)
	for i := range out {
		v := envelope[i*len(envelope)/width]
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		out[i] = waveformGlyphs[int(v*float64(len(waveformGlyphs)-1)+0.5)]
	}
	return string(out)
}

// positionMarker returns a caret positioned under the waveform column that
// corresponds to the playhead.
func positionMarker(pos, dur time.Duration, width int) string {
	if width <= 0 || dur <= 0 {
		return ""
	}
	idx := int(float64(width) * pos.Seconds() / dur.Seconds())
	if idx >= width {
		idx = width - 1
	}
	if idx < 0 {
		idx = 0
	}
	return strings.Repeat(" ", idx) + "^"
}

// renderBar renders value in [0,1] as a fixed-width block bar.
func renderBar(value float64, width int) string {
	if value < 0 {
		value = 0
	}
	if value > 1 {
		value = 1
	}
	filled := int(value*float64(width) + 0.5)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(100 * time.Millisecond)
	mins := int(d.Minutes())
	secs := d.Seconds() - float64(mins*60)
	return fmt.Sprintf("%02d:%04.1f", mins, secs)
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	if length <= 3 {
		return s[:length]
	}
	return s[:length-3] + "..."
}
