// Package terminal runs programs on pseudo-terminals and emulates the
// screen they draw.
//
// The package is organized around these core types:
//
//   - Process: a child attached to a PTY master, read without blocking
//   - Parser: ANSI escape sequence state machine (CSI, SGR, OSC)
//   - Screen: cell grid with cursor, scroll region and attributes
//   - History: fixed-capacity ring of rows scrolled off the screen
//   - Emulator: Screen, Parser and History behind Feed and Snapshot
//
// # Usage
//
//	proc, err := terminal.Spawn(terminal.SpawnOptions{
//	    Command: "ps aux",
//	    Rows:    24,
//	    Cols:    80,
//	})
//	if err != nil {
//	    return err
//	}
//	defer proc.Terminate()
//
//	emu := terminal.NewEmulator(24, 80, terminal.DefaultScrollback)
//	for {
//	    out, err := proc.ReadNonblocking()
//	    emu.Feed(out)
//	    if err == io.EOF {
//	        break
//	    }
//	}
//	grid := emu.Snapshot(0)
//
// # ANSI Support
//
// The parser handles cursor movement, erase, insert and delete, scroll
// regions, SGR colors (16, 256 and RGB) and the ?7 and ?25 private modes.
// Other well-formed sequences are consumed without effect. A malformed
// sequence returns the parser to ground state and is counted as an anomaly.
//
// # Thread Safety
//
// Nothing in this package is safe for concurrent use. Each Process and
// Emulator belongs to the goroutine that drives it.
package terminal
