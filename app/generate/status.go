package generate

import (
	"errors"
	"sort"
	"sync"
	"time"
)

type Status struct {
	Provider  string    `json:"provider"`
	Kind      string    `json:"kind"`
	Available bool      `json:"available"`
	Message   string    `json:"message,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// StatusBoard keeps the latest probe result per provider.
type StatusBoard struct {
	mutex    sync.RWMutex
	statuses map[string]Status
}

func NewStatusBoard() *StatusBoard {
	return &StatusBoard{statuses: make(map[string]Status)}
}

func (b *StatusBoard) Record(kind string, provider Provider, err error) Status {
	status := Status{
		Provider:  provider.Name(),
		Kind:      kind,
		Available: err == nil,
		CheckedAt: time.Now().UTC(),
	}

	if err != nil {
		var providerErr *ProviderError
		if errors.As(err, &providerErr) {
			status.Message = providerErr.Message
		} else {
			status.Message = err.Error()
		}
	}

	b.mutex.Lock()
	b.statuses[kind] = status
	b.mutex.Unlock()

	return status
}

// Snapshot returns statuses ordered by kind.
func (b *StatusBoard) Snapshot() []Status {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	statuses := make([]Status, 0, len(b.statuses))
	for _, status := range b.statuses {
		statuses = append(statuses, status)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Kind < statuses[j].Kind })

	return statuses
}
