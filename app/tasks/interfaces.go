package tasks

import (
	"github.com/lysyi3m/quill/app/generate"
)

// TaskSchedulerInterface is what the application root needs to run background work.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

// ProviderSource lists the configured generation providers.
type ProviderSource interface {
	Kinds() []string
	Provider(kind string) (generate.Provider, bool)
}
