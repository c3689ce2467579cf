// Package publish emits run-completed events so downstream consumers can
// react to fresh scrape results.
package publish

import "context"

// Publisher sends a payload to a named topic and returns the message ID.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}
