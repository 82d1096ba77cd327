package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/quizdesk/quizdesk-web/internal/model"
)

// consoleNotifier prints toasts and progress lines to a terminal.
type consoleNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

func newConsoleNotifier(out io.Writer) *consoleNotifier {
	return &consoleNotifier{out: out}
}

// Publish implements notify.Notifier. Every user is the terminal user.
func (n *consoleNotifier) Publish(_ context.Context, _ string, ev model.Event) error {
	line := formatEvent(ev)
	if line == "" {
		return nil
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	_, err := fmt.Fprintln(n.out, line)
	return err
}

func formatEvent(ev model.Event) string {
	switch ev.Type {
	case model.EventToast:
		if ev.Toast == nil {
			return ""
		}
		mark := color.GreenString("✔")
		title := color.New(color.Bold).Sprint(ev.Toast.Title)
		if ev.Toast.Kind == model.ToastError {
			mark = color.RedString("✘")
			title = color.New(color.Bold, color.FgRed).Sprint(ev.Toast.Title)
		}
		if ev.Toast.Description == "" {
			return mark + " " + title
		}
		return mark + " " + title + " " + ev.Toast.Description

	case model.EventUploadProgress:
		if ev.Progress == nil || ev.Progress.Settled == 0 {
			return ""
		}
		return color.HiBlackString("%s %3.0f%% (%d/%d)",
			progressBar(ev.Progress.Progress, 20), ev.Progress.Progress, ev.Progress.Settled, ev.Progress.Total)

	case model.EventBatchCompleted:
		return color.CyanString("Upload finished.")
	}
	return ""
}

func progressBar(percent float64, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := int(percent / 100 * float64(width))
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}
