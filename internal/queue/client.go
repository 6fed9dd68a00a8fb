package queue

import "context"

// Client hands analysis jobs to a queue backend. The API enqueues one
// message per tender and the worker process drains them.
type Client interface {
	Send(ctx context.Context, msg Message) error
}
