package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/quill/app/generate"
)

type ProbeProviderTask struct {
	Task
	Kind     string
	provider generate.Provider
	board    *generate.StatusBoard
}

func NewProbeProviderTask(kind string, provider generate.Provider, board *generate.StatusBoard) *ProbeProviderTask {
	task := NewTask(TaskTypeProbeProvider, kind)
	task.MaxRetries = 1

	return &ProbeProviderTask{
		Task:     task,
		Kind:     kind,
		provider: provider,
		board:    board,
	}
}

func (t *ProbeProviderTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	err := t.provider.Ping(ctx)
	status := t.board.Record(t.Kind, t.provider, err)

	// A missing key is a configuration state, retrying will not change it
	if err != nil && !errors.Is(err, generate.ErrNotConfigured) {
		return fmt.Errorf("provider %s probe failed: %w", t.provider.Name(), err)
	}

	slog.Debug("Task completed",
		"type", "ProbeProvider",
		"provider", t.provider.Name(),
		"available", status.Available,
		"duration", t.GetDuration())

	return nil
}
