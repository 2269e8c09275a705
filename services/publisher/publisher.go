package publisher

// Publisher represents a service for publishing freshly scraped deals to
// downstream consumers
type Publisher interface {
	// Publish publishes one deal payload under its source name
	Publish(source string, message []byte) error

	// Close closes the publisher connection
	Close() error
}

// Noop is the publisher used when no downstream is configured
type Noop struct{}

// Publish discards the message
func (Noop) Publish(string, []byte) error { return nil }

// Close is a no-op
func (Noop) Close() error { return nil }
