package errors

import "fmt"

var (
	ErrWorkerPanic      = fmt.Errorf("worker panic")
	ErrCapacityExceeded = fmt.Errorf("registry capacity exceeded")
	ErrNameAlreadySet   = fmt.Errorf("display name already set")
	ErrEntryRemoved     = fmt.Errorf("registry entry removed")
)
