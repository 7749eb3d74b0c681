package progress

import "fmt"

// PersistenceError reports a failed read, write or (de)serialization of a stored value.
// The operation that returned it has already fallen back to a safe value.
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("progress %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
