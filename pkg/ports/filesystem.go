package ports

// FileSystem abstracts the file operations the scanner and artifact
// writers need, so tests can run against an in-memory implementation.
type FileSystem interface {
	// ReadFile reads the entire contents of a file.
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to a file, creating parent directories
	// as needed.
	WriteFile(path string, data []byte) error

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string) error

	// Exists reports whether a file or directory exists.
	Exists(path string) (bool, error)
}
