package syssched

import "github.com/open-control-systems/netwatch/components/core"

// ErrorHandler handles errors.
type ErrorHandler interface {
	// HandleError handles error.
	HandleError(err error)
}

// LogErrorHandler logs errors of the periodic task.
type LogErrorHandler struct {
	component string
}

// NewLogErrorHandler is an initialization of LogErrorHandler.
//
// Parameters:
//   - component - log prefix, e.g. "telegram-bot".
func NewLogErrorHandler(component string) *LogErrorHandler {
	return &LogErrorHandler{component: component}
}

// HandleError logs the error.
func (h *LogErrorHandler) HandleError(err error) {
	core.LogErr.Printf("%s: task failed: %v\n", h.component, err)
}
