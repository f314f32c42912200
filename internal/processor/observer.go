package processor

import (
	"fmt"
	"io"
	"strings"
)

// Observer receives progress and log events from a batch run. Calls are made
// synchronously on the runner's goroutine, in order.
type Observer interface {
	OnProgress(percent int)
	OnLog(line string)
}

type EventKind int

const (
	EventProgress EventKind = iota
	EventLog
)

type Event struct {
	Kind    EventKind
	Percent int
	Line    string
}

// ChannelObserver forwards events to a channel so a UI can consume them on
// its own goroutine. Sends block when the channel is full.
type ChannelObserver chan<- Event

func (c ChannelObserver) OnProgress(percent int) {
	c <- Event{Kind: EventProgress, Percent: percent}
}

func (c ChannelObserver) OnLog(line string) {
	c <- Event{Kind: EventLog, Line: line}
}

// WriterObserver prints log lines and progress changes as plain text.
type WriterObserver struct {
	W            io.Writer
	ShowProgress bool
}

func (w WriterObserver) OnProgress(percent int) {
	if w.ShowProgress {
		fmt.Fprintf(w.W, "[%3d%%]\n", percent)
	}
}

func (w WriterObserver) OnLog(line string) {
	fmt.Fprintln(w.W, strings.TrimRight(line, "\n"))
}

type nopObserver struct{}

func (nopObserver) OnProgress(int) {}
func (nopObserver) OnLog(string)   {}
