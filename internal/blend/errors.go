package blend

import "errors"

// Extraction failures. Each stage of the pipeline reports its own sentinel so
// callers can tell an unset path from a crashed binary from a missing payload.
var (
	// ErrNoProjectPath is returned when the reader has no project path; no
	// process is launched.
	ErrNoProjectPath = errors.New("no project path set")

	// ErrBinaryNotFound is returned when the Blender binary cannot be resolved.
	ErrBinaryNotFound = errors.New("blender binary not found")

	// ErrTimeout is returned when the child process exceeds the reader timeout.
	ErrTimeout = errors.New("blender timed out")

	// ErrRunFailed is returned when the child process fails and produced no
	// payload.
	ErrRunFailed = errors.New("blender run failed")

	// ErrMarkersNotFound is returned when the captured output lacks the
	// begin/end marker pair.
	ErrMarkersNotFound = errors.New("stats markers not found in blender output")

	// ErrInvalidPayload is returned when the text between the markers is not
	// valid JSON.
	ErrInvalidPayload = errors.New("stats payload is not valid JSON")
)
