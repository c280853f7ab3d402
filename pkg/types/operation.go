package types

// OperationType defines the type of file system operation
type OperationType string

const (
	// OperationCreateDir creates a directory
	OperationCreateDir OperationType = "create_dir"

	// OperationCopyFile copies a file
	OperationCopyFile OperationType = "copy_file"

	// OperationWriteFile writes content to a file
	OperationWriteFile OperationType = "write_file"

	// OperationDeleteFile deletes a file
	OperationDeleteFile OperationType = "delete_file"

	// OperationDeleteTree deletes a directory tree
	OperationDeleteTree OperationType = "delete_tree"
)

// OperationStatus defines the state of an operation
type OperationStatus string

const (
	// StatusReady means the operation is ready to be executed
	StatusReady OperationStatus = "ready"
	// StatusSkipped means the operation was skipped (e.g., unchanged file)
	StatusSkipped OperationStatus = "skipped"
	// StatusError means the operation resulted in an error
	StatusError OperationStatus = "error"
)

// Operation represents a low-level file system operation planned by the
// mirror planner and executed by pkg/ops.
type Operation struct {
	// Type is the type of operation
	Type OperationType

	// Source is the source path (for copies)
	Source string

	// Target is the target path
	Target string

	// Content is the content to write (for write operations)
	Content string

	// Mode is the file permissions (optional)
	Mode *uint32

	// Description is a human-readable description
	Description string

	// Status is the current state of the operation
	Status OperationStatus
}
