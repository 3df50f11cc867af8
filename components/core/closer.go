package core

// Closer implementation should free all allocated resources.
type Closer interface {
	// Close the resource.
	Close() error
}

// FuncCloser adapts a plain function to the Closer interface.
type FuncCloser func() error

// Close calls f.
func (f FuncCloser) Close() error {
	return f()
}
