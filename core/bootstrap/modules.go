package bootstrap

import "context"

// Service is a long-running component started next to the Telegram runtime,
// such as the metrics endpoint. Run blocks until ctx is cancelled.
type Service interface {
	Name() string
	Run(ctx context.Context) error
}

// ServiceFunc adapts a named function to the Service interface.
type ServiceFunc struct {
	ID string
	Fn func(ctx context.Context) error
}

// Name returns the service identifier used in logs.
func (s ServiceFunc) Name() string {
	return s.ID
}

// Run executes the underlying function.
func (s ServiceFunc) Run(ctx context.Context) error {
	return s.Fn(ctx)
}
