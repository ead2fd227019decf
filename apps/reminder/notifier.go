package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/reminder"
)

// consoleNotifier shows reminders on a terminal.
type consoleNotifier struct {
	out        io.Writer
	permission reminder.Permission
	now        func() time.Time
}

var _ reminder.Notifier = (*consoleNotifier)(nil) // interface compliance check

func newConsoleNotifier(out io.Writer, permission string) *consoleNotifier {
	return &consoleNotifier{
		out:        out,
		permission: parsePermission(permission),
		now:        time.Now,
	}
}

// parsePermission maps a config value to a Permission; anything unknown was never asked.
func parsePermission(s string) reminder.Permission {
	switch p := reminder.Permission(strings.ToLower(strings.TrimSpace(s))); p {
	case reminder.PermissionGranted, reminder.PermissionDenied:
		return p
	default:
		return reminder.PermissionUnasked
	}
}

func (n *consoleNotifier) Supported() bool {
	return n.out != nil
}

func (n *consoleNotifier) Permission() reminder.Permission {
	return n.permission
}

func (n *consoleNotifier) Show(title, body string) error {
	_, err := fmt.Fprintf(n.out, "[%s] %s\n%s\n", n.now().Format("15:04"), title, body)
	return err
}
