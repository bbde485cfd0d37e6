// Package tui implements the interactive taskt widget and board.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/antopolskiy/taskt/internal/board"
	"github.com/antopolskiy/taskt/internal/session"
	"github.com/antopolskiy/taskt/internal/timer"
)

// view represents the current screen state.
type view int

const (
	viewMain view = iota
	viewCreate
	viewConfirmDelete
	viewHelp
)

// mode selects between the compact widget and the expanded board.
type mode int

const (
	modeCompact mode = iota
	modeExpanded
)

// Key constants.
const (
	keyEsc   = "esc"
	keyDown  = "down"
	keyUp    = "up"
	keyLeft  = "left"
	keyRight = "right"
	keyEnter = "enter"
	keySpace = " "
)

// Board is the top-level bubbletea model.
type Board struct {
	ctx  context.Context
	sess *session.Session

	// Elapsed polling runs as a tick chain while the timer runs. pollSeq
	// tags each chain so ticks from a stopped one are dropped.
	polling      bool
	pollSeq      int
	pollInterval time.Duration

	mode   mode
	view   view
	width  int
	height int
	err    error

	base      board.Board // committed board
	columns   []column    // what is shown: base, or the preview while dragging
	activeCol int
	activeRow int

	drag *drag

	input         textinput.Model
	deleteID      string
	deleteContent string
}

// column is one rendered column.
type column struct {
	id    string
	title string
	tasks []board.Task
}

// Option configures a Board.
type Option func(*Board)

// Expanded starts in the board view instead of the compact widget.
func Expanded() Option {
	return func(b *Board) { b.mode = modeExpanded }
}

// WithPollInterval overrides timer.PollInterval.
func WithPollInterval(d time.Duration) Option {
	return func(b *Board) { b.pollInterval = d }
}

// NewBoard creates a Board model backed by sess.
func NewBoard(ctx context.Context, sess *session.Session, opts ...Option) *Board {
	ti := textinput.New()
	ti.Placeholder = "What are you working on?"
	ti.CharLimit = 200

	b := &Board{ctx: ctx, sess: sess, input: ti, pollInterval: timer.PollInterval}
	for _, o := range opts {
		o(b)
	}
	b.loadColumns()
	b.focusActiveTask()
	return b
}

// Init implements tea.Model.
func (b *Board) Init() tea.Cmd {
	return b.syncPoll()
}

// Update implements tea.Model.
func (b *Board) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m, cmd := b.handleKey(msg)
		return m, tea.Batch(cmd, b.syncPoll())
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
		return b, nil
	case ElapsedMsg:
		b.sess.ApplyElapsed(msg.Elapsed)
		return b, nil
	case pollMsg:
		return b, b.handlePoll(msg)
	case ReloadMsg:
		b.reload()
		return b, b.syncPoll()
	case errMsg:
		b.err = msg.err
		return b, nil
	}
	if b.view == viewCreate {
		var cmd tea.Cmd
		b.input, cmd = b.input.Update(msg)
		return b, cmd
	}
	return b, nil
}

// View implements tea.Model.
func (b *Board) View() string {
	if b.width == 0 {
		return "Loading..."
	}

	switch b.view {
	case viewCreate:
		return b.viewCreateDialog()
	case viewConfirmDelete:
		return b.viewDeleteConfirm()
	case viewHelp:
		return b.viewHelp()
	}
	if b.mode == modeCompact {
		return b.viewWidget()
	}
	return b.viewBoard()
}

func (b *Board) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, key.NewBinding(key.WithKeys("ctrl+c"))) {
		return b, tea.Quit
	}

	switch b.view {
	case viewCreate:
		return b.handleCreateKey(msg)
	case viewConfirmDelete:
		return b.handleDeleteKey(msg)
	case viewHelp:
		b.view = viewMain
		return b, nil
	}
	if b.drag != nil {
		return b.handleDragKey(msg)
	}
	if b.mode == modeCompact {
		return b.handleWidgetKey(msg)
	}
	return b.handleBoardKey(msg)
}

// handleSharedKey handles keys available in both modes. It reports whether
// the key was consumed.
func (b *Board) handleSharedKey(k string) (tea.Cmd, bool) {
	switch k {
	case "q", keyEsc:
		return tea.Quit, true
	case "?":
		b.view = viewHelp
	case "e":
		b.toggleMode()
	case "H":
		return tea.Suspend, true
	case "p":
		b.togglePlayPause()
	case "n":
		b.startCreate()
		return textinput.Blink, true
	default:
		return nil, false
	}
	return nil, true
}

func (b *Board) handleWidgetKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cmd, _ := b.handleSharedKey(msg.String())
	return b, cmd
}

func (b *Board) handleBoardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()
	if cmd, ok := b.handleSharedKey(k); ok {
		return b, cmd
	}
	switch k {
	case "h", keyLeft, "l", keyRight, "j", keyDown, "k", keyUp:
		b.handleNavigation(k)
	case keyEnter:
		b.selectCurrent()
	case keySpace:
		b.startDrag()
	case "d":
		b.handleDeleteStart()
	case "r":
		b.reload()
	}
	return b, nil
}

func (b *Board) handleNavigation(k string) {
	switch k {
	case "h", keyLeft:
		if b.activeCol > 0 {
			b.activeCol--
			b.clampRow()
		}
	case "l", keyRight:
		if b.activeCol < len(b.columns)-1 {
			b.activeCol++
			b.clampRow()
		}
	case "j", keyDown:
		col := b.currentColumn()
		if col != nil && b.activeRow < len(col.tasks)-1 {
			b.activeRow++
		}
	case "k", keyUp:
		if b.activeRow > 0 {
			b.activeRow--
		}
	}
}

func (b *Board) handleCreateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyEsc:
		b.input.Blur()
		b.view = viewMain
		return b, nil
	case keyEnter:
		content := strings.TrimSpace(b.input.Value())
		b.input.Blur()
		b.view = viewMain
		if content == "" {
			return b, nil
		}
		t, err := b.sess.CreateTask(b.ctx, content)
		b.setErr(err)
		b.loadColumns()
		if err == nil {
			b.focusTask(t.ID)
		}
		return b, nil
	}
	var cmd tea.Cmd
	b.input, cmd = b.input.Update(msg)
	return b, cmd
}

func (b *Board) handleDeleteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		b.setErr(b.sess.DeleteTask(b.ctx, b.deleteID))
		b.view = viewMain
		b.loadColumns()
	case "n", "N", keyEsc, "q":
		b.view = viewMain
	}
	return b, nil
}

func (b *Board) toggleMode() {
	if b.mode == modeCompact {
		b.mode = modeExpanded
		b.focusActiveTask()
		return
	}
	b.mode = modeCompact
}

func (b *Board) startCreate() {
	b.input.Reset()
	b.input.Focus()
	b.view = viewCreate
}

func (b *Board) handleDeleteStart() {
	if t, ok := b.selectedTask(); ok {
		b.deleteID = t.ID
		b.deleteContent = t.Content
		b.view = viewConfirmDelete
	}
}

func (b *Board) selectCurrent() {
	t, ok := b.selectedTask()
	if !ok {
		return
	}
	b.setErr(b.sess.Select(b.ctx, t.ID))
	b.loadColumns()
}

func (b *Board) togglePlayPause() {
	b.setErr(b.sess.TogglePlayPause(b.ctx))
	b.loadColumns()
}

func (b *Board) reload() {
	if err := b.sess.Reload(b.ctx); err != nil {
		b.err = err
		return
	}
	if b.drag != nil {
		if _, ok := b.sess.Board().Task(b.drag.taskID); !ok {
			b.drag = nil
		}
	}
	b.loadColumns()
}

func (b *Board) setErr(err error) {
	b.err = err
}

// syncPoll starts a tick chain when the timer runs and none is active, and
// marks polling stopped otherwise.
func (b *Board) syncPoll() tea.Cmd {
	if b.sess.Phase() != timer.Running {
		b.polling = false
		return nil
	}
	if b.polling {
		return nil
	}
	b.polling = true
	b.pollSeq++
	return b.pollTick(b.pollSeq)
}

func (b *Board) pollTick(seq int) tea.Cmd {
	ctx, sess := b.ctx, b.sess
	return tea.Tick(b.pollInterval, func(time.Time) tea.Msg {
		e, ok, err := sess.QueryElapsed(ctx)
		return pollMsg{seq: seq, elapsed: e, ok: ok && err == nil}
	})
}

func (b *Board) handlePoll(msg pollMsg) tea.Cmd {
	if !b.polling || msg.seq != b.pollSeq {
		return nil
	}
	if msg.ok {
		b.sess.ApplyElapsed(msg.elapsed)
	}
	if b.sess.Phase() != timer.Running {
		b.polling = false
		return nil
	}
	return b.pollTick(msg.seq)
}

// Polling reports whether an elapsed-time tick chain is active.
func (b *Board) Polling() bool {
	return b.polling
}

// loadColumns rebuilds the rendered columns from the session board, or
// from the drag preview while a gesture is in progress.
func (b *Board) loadColumns() {
	b.base = b.sess.Board()
	shown := b.base
	if b.drag != nil && b.drag.overID != "" {
		shown = b.sess.Preview(b.drag.taskID, b.drag.overID)
	}
	b.columns = buildColumns(shown)
	b.clampRow()
}

func buildColumns(bd board.Board) []column {
	cols := make([]column, 0, len(bd.ColumnOrder))
	for _, id := range bd.ColumnOrder {
		c := bd.Columns[id]
		cols = append(cols, column{id: id, title: c.Title, tasks: bd.ColumnTasks(id)})
	}
	return cols
}

func (b *Board) currentColumn() *column {
	if b.activeCol >= 0 && b.activeCol < len(b.columns) {
		return &b.columns[b.activeCol]
	}
	return nil
}

func (b *Board) selectedTask() (board.Task, bool) {
	col := b.currentColumn()
	if col == nil || b.activeRow < 0 || b.activeRow >= len(col.tasks) {
		return board.Task{}, false
	}
	return col.tasks[b.activeRow], true
}

func (b *Board) clampRow() {
	col := b.currentColumn()
	if col == nil || len(col.tasks) == 0 {
		b.activeRow = 0
		return
	}
	if b.activeRow >= len(col.tasks) {
		b.activeRow = len(col.tasks) - 1
	}
}

// focusTask moves the cursor onto id.
func (b *Board) focusTask(id string) bool {
	for ci, c := range b.columns {
		for ri, t := range c.tasks {
			if t.ID == id {
				b.activeCol, b.activeRow = ci, ri
				return true
			}
		}
	}
	return false
}

func (b *Board) focusActiveTask() {
	if id := b.sess.ActiveTaskID(); id != "" {
		b.focusTask(id)
	}
}

// --- Messages ---

// ReloadMsg is sent by the file watcher to trigger a board refresh.
type ReloadMsg struct{}

// ElapsedMsg carries an elapsed-time result obtained outside the board.
type ElapsedMsg struct {
	Elapsed timer.Elapsed
}

type pollMsg struct {
	seq     int
	elapsed timer.Elapsed
	ok      bool
}

type errMsg struct{ err error }

// ErrMsg wraps err for delivery through Program.Send.
func ErrMsg(err error) tea.Msg {
	if err == nil {
		return nil
	}
	return errMsg{err: err}
}

var errNothingToDrag = errors.New("no task under the cursor")
