package handoff

import (
	"errors"
	"fmt"
)

// Role names the side of the queue a worker runs on.
type Role string

const (
	RoleProducer Role = "producer"
	RoleConsumer Role = "consumer"
)

// WorkerMetaError exposes which worker an error came from.
type WorkerMetaError interface {
	error
	Unwrap() error
	Worker() (Role, int)
}

type workerError struct {
	err  error
	role Role
	id   int
}

func newWorkerError(err error, role Role, id int) error {
	if err == nil {
		return nil
	}
	return &workerError{err: err, role: role, id: id}
}

func (e *workerError) Error() string {
	return fmt.Sprintf("%s %d: %s", e.role, e.id, e.err.Error())
}

func (e *workerError) Unwrap() error { return e.err }

func (e *workerError) Worker() (Role, int) { return e.role, e.id }

func (e *workerError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			_, _ = fmt.Fprintf(s, "worker(role=%s,id=%d): %+v", e.role, e.id, e.err)
			return
		}
		fallthrough
	case 's':
		_, _ = fmt.Fprint(s, e.Error())
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", e.Error())
	}
}

// ExtractWorker returns the role and id of the worker err came from, if known.
func ExtractWorker(err error) (Role, int, bool) {
	var wme WorkerMetaError
	if errors.As(err, &wme) {
		role, id := wme.Worker()
		return role, id, true
	}
	return "", 0, false
}
