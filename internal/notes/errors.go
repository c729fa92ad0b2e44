package notes

import (
	"errors"
	"fmt"

	"github.com/kuitang/note-it/internal/errs"
)

// ErrOutOfRange matches every *OutOfRangeError via errors.Is.
var ErrOutOfRange = errors.New("note index out of range")

// OutOfRangeError reports an index that does not address an existing note,
// or for inserts, lies past the end of the list.
type OutOfRangeError struct {
	Op    string
	Index int
}

func (e *OutOfRangeError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("note index %d out of range", e.Index)
	}
	return fmt.Sprintf("%s: note index %d out of range", e.Op, e.Index)
}

func (e *OutOfRangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

// ErrorCode lets transports map the error through errs.CodeOf.
func (e *OutOfRangeError) ErrorCode() errs.Code {
	return errs.OutOfRange
}

// OutOfRangeIndex extracts the offending index from err.
func OutOfRangeIndex(err error) (int, bool) {
	var oor *OutOfRangeError
	if errors.As(err, &oor) {
		return oor.Index, true
	}
	return 0, false
}
