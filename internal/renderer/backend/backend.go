// Package backend provides terminal backend abstraction for the renderer.
package backend

import (
	"sync"

	"github.com/dshills/tuisplit/internal/renderer/core"
)

// EventType identifies the type of terminal event.
type EventType int

const (
	EventNone EventType = iota
	EventKey
	EventResize
	EventInterrupt
	// EventClosed is returned by PollEvent once the backend has shut down.
	EventClosed
)

// Event represents a terminal event.
type Event struct {
	Type EventType

	// Key event fields
	Key  Key
	Rune rune
	Mod  ModMask

	// Resize event fields
	Width, Height int
}

// Key represents a keyboard key.
type Key int

// Key constants for special keys.
const (
	KeyNone Key = iota
	KeyRune     // Regular character (use Rune field)
	KeyEscape
	KeyEnter
	KeyTab
	KeyBacktab
	KeyBackspace
	KeyDelete
	KeyInsert
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyCtrlSpace
	KeyCtrlA
	KeyCtrlB
	KeyCtrlC
	KeyCtrlD
	KeyCtrlE
	KeyCtrlF
	KeyCtrlG
	KeyCtrlH
	KeyCtrlI
	KeyCtrlJ
	KeyCtrlK
	KeyCtrlL
	KeyCtrlM
	KeyCtrlN
	KeyCtrlO
	KeyCtrlP
	KeyCtrlQ
	KeyCtrlR
	KeyCtrlS
	KeyCtrlT
	KeyCtrlU
	KeyCtrlV
	KeyCtrlW
	KeyCtrlX
	KeyCtrlY
	KeyCtrlZ
)

// ModMask represents modifier key state.
type ModMask int

const (
	ModNone  ModMask = 0
	ModShift ModMask = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// Has returns true if the mask contains the given modifier.
func (m ModMask) Has(mod ModMask) bool {
	return m&mod != 0
}

// Backend defines the interface for terminal/display backends.
// Implementations handle actual drawing to the terminal or other display surfaces.
//
// PollEvent may be called from one goroutine while another draws.
type Backend interface {
	// Init initializes the backend for use.
	// Must be called before any other methods.
	Init() error

	// Shutdown releases backend resources and restores terminal state.
	// A blocked PollEvent returns EventClosed.
	Shutdown()

	// Size returns the current terminal dimensions.
	Size() (width, height int)

	// SetCell sets a single cell at the given position.
	// Positions outside the terminal are silently ignored.
	SetCell(x, y int, cell core.Cell)

	// GetCell returns the cell at the given position.
	// Returns an empty cell for positions outside the terminal.
	GetCell(x, y int) core.Cell

	// Fill fills a rectangular region with the given cell.
	Fill(rect core.ScreenRect, cell core.Cell)

	// Clear clears the entire screen with the default style.
	Clear()

	// Show synchronizes the internal buffer with the actual display.
	// Call this after making changes to flush them to the screen.
	Show()

	// ShowCursor positions and displays the cursor.
	ShowCursor(x, y int)

	// HideCursor hides the cursor.
	HideCursor()

	// PollEvent waits for and returns the next terminal event.
	// This is a blocking call.
	PollEvent() Event

	// PostEvent posts a synthetic event to the event queue.
	PostEvent(event Event)
}

// NullBackend is an in-memory backend for tests. It records every cell
// drawn and replays injected events. It is safe for concurrent use.
type NullBackend struct {
	mu     sync.Mutex
	width  int
	height int
	grid   []core.Cell

	curX, curY int
	curOn      bool
	frames     int

	events   chan Event
	closed   chan struct{}
	shutdown sync.Once
}

// NewNullBackend creates a width x height backend. Init allocates the grid.
func NewNullBackend(width, height int) *NullBackend {
	return &NullBackend{
		width:  max(width, 0),
		height: max(height, 0),
		events: make(chan Event, 100),
		closed: make(chan struct{}),
	}
}

func (b *NullBackend) Init() error {
	b.mu.Lock()
	b.grid = blankGrid(b.width * b.height)
	b.mu.Unlock()
	return nil
}

func (b *NullBackend) Shutdown() {
	b.shutdown.Do(func() { close(b.closed) })
}

func (b *NullBackend) Size() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width, b.height
}

// offset returns the grid index of (x, y), or -1 outside the grid.
func (b *NullBackend) offset(x, y int) int {
	if x < 0 || y < 0 || x >= b.width || y >= b.height || len(b.grid) == 0 {
		return -1
	}
	return y*b.width + x
}

func (b *NullBackend) SetCell(x, y int, cell core.Cell) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.offset(x, y); i >= 0 {
		b.grid[i] = cell
	}
}

func (b *NullBackend) GetCell(x, y int) core.Cell {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.offset(x, y); i >= 0 {
		return b.grid[i]
	}
	return core.EmptyCell()
}

func (b *NullBackend) Fill(rect core.ScreenRect, cell core.Cell) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.grid) == 0 {
		return
	}
	clip := rect.Intersection(core.RectFromSize(0, 0, b.height, b.width))
	for y := clip.Top; y < clip.Bottom; y++ {
		row := b.grid[y*b.width:]
		for x := clip.Left; x < clip.Right; x++ {
			row[x] = cell
		}
	}
}

func (b *NullBackend) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	copy(b.grid, blankGrid(len(b.grid)))
}

func (b *NullBackend) Show() {
	b.mu.Lock()
	b.frames++
	b.mu.Unlock()
}

func (b *NullBackend) ShowCursor(x, y int) {
	b.mu.Lock()
	b.curX, b.curY, b.curOn = x, y, true
	b.mu.Unlock()
}

func (b *NullBackend) HideCursor() {
	b.mu.Lock()
	b.curOn = false
	b.mu.Unlock()
}

func (b *NullBackend) PollEvent() Event {
	select {
	case ev := <-b.events:
		return ev
	case <-b.closed:
		return Event{Type: EventClosed}
	}
}

// PostEvent queues event, dropping it when the queue is full.
func (b *NullBackend) PostEvent(event Event) {
	select {
	case b.events <- event:
	default:
	}
}

// CursorPosition returns the last cursor placement.
func (b *NullBackend) CursorPosition() (x, y int, visible bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.curX, b.curY, b.curOn
}

// ShowCount returns how many frames were shown.
func (b *NullBackend) ShowCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.frames
}

// RowText returns row y as a string, skipping continuation cells.
func (b *NullBackend) RowText(y int) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.offset(0, y) < 0 {
		return ""
	}
	return core.StringFromCells(b.grid[y*b.width : (y+1)*b.width])
}

// Resize changes the size, blanks the grid and queues an EventResize.
func (b *NullBackend) Resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	b.mu.Lock()
	b.width, b.height = width, height
	b.grid = blankGrid(width * height)
	b.mu.Unlock()

	b.PostEvent(Event{Type: EventResize, Width: width, Height: height})
}

// InjectKey queues a key event.
func (b *NullBackend) InjectKey(key Key, r rune, mod ModMask) {
	b.PostEvent(Event{Type: EventKey, Key: key, Rune: r, Mod: mod})
}

func blankGrid(n int) []core.Cell {
	grid := make([]core.Cell, n)
	for i := range grid {
		grid[i] = core.EmptyCell()
	}
	return grid
}
