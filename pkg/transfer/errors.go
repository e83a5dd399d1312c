package transfer

import "fmt"

// SizeError indicates an invalid size announcement. Size is -1 when the
// announcement is too short to hold a size.
type SizeError struct {
	Size int64
	Max  int
}

func (e *SizeError) Error() string {
	if e.Size < 0 {
		return "size announcement too short"
	}
	return fmt.Sprintf("announced size %d exceeds limit %d", e.Size, e.Max)
}

// FrameError indicates a data frame carrying fewer bytes than expected.
type FrameError struct {
	Frame    int
	Expected int
	Actual   int
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %d: expected %d bytes, got %d", e.Frame, e.Expected, e.Actual)
}
