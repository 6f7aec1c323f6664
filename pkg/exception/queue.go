package exception

import "errors"

var (
	ErrQueueUnavailable = errors.New("queue: backend unavailable")
	ErrTaskMalformed    = errors.New("queue: malformed task payload")
	ErrTaskVersion      = errors.New("queue: unsupported task version")
	ErrTaskMissingID    = errors.New("queue: task has no processing id")
)
