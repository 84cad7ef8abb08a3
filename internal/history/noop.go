package history

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) Record(_ Event) error { return nil }

func (n *NoopRecorder) Recent(_ int, _ string) ([]Event, error) { return nil, nil }

func (n *NoopRecorder) Count() (int, error) { return 0, nil }

func (n *NoopRecorder) Close() error { return nil }
