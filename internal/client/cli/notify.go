package cli

import (
	"fmt"
	"io"
	"sync"
)

// ConsoleNotifier prints notifications as single marked lines. It is safe
// for concurrent use: the 401 handler may fire from dashboard goroutines.
type ConsoleNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsoleNotifier(w io.Writer) *ConsoleNotifier {
	return &ConsoleNotifier{w: w}
}

func (n *ConsoleNotifier) print(mark, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, "%s %s\n", mark, msg)
}

func (n *ConsoleNotifier) Success(msg string) { n.print("✔", msg) }
func (n *ConsoleNotifier) Info(msg string)    { n.print("ℹ", msg) }
func (n *ConsoleNotifier) Error(msg string)   { n.print("✖", msg) }
