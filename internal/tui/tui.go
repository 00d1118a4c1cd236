// Package tui is the interactive inventory browser: one table per tab, a
// review pane for the pending diff and publish/pull on demand.
package tui

import (
	"context"
	"sync"

	"inkwell-cli/internal/gateway"
	"inkwell-cli/internal/history"
	"inkwell-cli/internal/review"

	tea "github.com/charmbracelet/bubbletea"
)

type Options struct {
	Gateway   gateway.Gateway
	Publisher review.Publisher
	Journal   history.Recorder
}

func Run(ctx context.Context, opts Options) error {
	applyColorProfilePreference()
	applyThemePreference()

	m, err := newAppModel(ctx, opts)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// noticeBox keeps the latest session notice for the status bar.
type noticeBox struct {
	mu   sync.Mutex
	last gateway.Notice
	seq  int
}

func (b *noticeBox) Notify(n gateway.Notice) {
	b.mu.Lock()
	b.last = n
	b.seq++
	b.mu.Unlock()
}

func (b *noticeBox) latest() (gateway.Notice, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last, b.seq
}
