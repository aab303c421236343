// Package logging builds the process logger.
package logging

import (
	"io"
	"log"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
)

// New returns a logr.Logger writing to w through the standard library
// logger. Verbosity is global to stdr: V(n) lines are printed when
// n <= verbosity.
func New(w io.Writer, verbosity int) logr.Logger {
	stdr.SetVerbosity(verbosity)
	return stdr.New(log.New(w, "", log.LstdFlags))
}
