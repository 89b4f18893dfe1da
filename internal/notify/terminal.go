package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// TerminalNotifier prints notifications to the terminal, with an optional
// bell for fills and rejections.
type TerminalNotifier struct {
	mu          sync.RWMutex
	out         io.Writer
	enabled     bool
	bellEnabled bool
}

// NewTerminalNotifier creates a terminal notification channel writing to
// stderr so it never mixes with command output.
func NewTerminalNotifier(bell bool) *TerminalNotifier {
	return &TerminalNotifier{
		out:         os.Stderr,
		enabled:     true,
		bellEnabled: bell,
	}
}

// SetOutput redirects notification output, mainly for tests.
func (tn *TerminalNotifier) SetOutput(w io.Writer) {
	tn.mu.Lock()
	defer tn.mu.Unlock()
	tn.out = w
}

// SetEnabled enables or disables the notifier.
func (tn *TerminalNotifier) SetEnabled(enabled bool) {
	tn.mu.Lock()
	defer tn.mu.Unlock()
	tn.enabled = enabled
}

// SetBellEnabled enables or disables the terminal bell.
func (tn *TerminalNotifier) SetBellEnabled(enabled bool) {
	tn.mu.Lock()
	defer tn.mu.Unlock()
	tn.bellEnabled = enabled
}

// Name returns the name of the channel.
func (tn *TerminalNotifier) Name() string {
	return "terminal"
}

// IsEnabled returns whether the channel is enabled.
func (tn *TerminalNotifier) IsEnabled() bool {
	tn.mu.RLock()
	defer tn.mu.RUnlock()
	return tn.enabled
}

// Send prints the notification as a single timestamped line.
func (tn *TerminalNotifier) Send(ctx context.Context, n Notification) error {
	tn.mu.RLock()
	out := tn.out
	bell := tn.bellEnabled
	tn.mu.RUnlock()

	ts := n.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	prefix := ""
	if bell && (n.Type == NotificationFill || n.Type == NotificationRejection) {
		prefix = "\a"
	}

	_, err := fmt.Fprintf(out, "%s[%s] %s: %s\n",
		prefix, ts.Format("15:04:05"), n.Title, n.Message)
	return err
}
