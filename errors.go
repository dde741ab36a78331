package handoff

import "errors"

const Namespace = "handoff"

var (
	ErrInvalidConfig      = errors.New(Namespace + ": invalid configuration")
	ErrNoMoreWork         = errors.New(Namespace + ": queue is drained and production is complete")
	ErrProductionComplete = errors.New(Namespace + ": production is already complete")
	ErrWorkerReused       = errors.New(Namespace + ": worker has already run")
	ErrConservation       = errors.New(Namespace + ": produced and consumed counts diverge")
)
