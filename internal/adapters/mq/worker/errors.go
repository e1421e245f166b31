package worker

import "errors"

// ErrQueueRejected is returned when a job cannot be enqueued.
var ErrQueueRejected = errors.New("fetch queue rejected job")
