package util

import (
	"fmt"
	"io"

	"github.com/eidolon/wordwrap"
)

const lineWidth = 80

var wrap = wordwrap.Wrapper(lineWidth, false)

// Say writes a user facing message, wrapped to the terminal width.
func Say(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, wrap(fmt.Sprintf(format, args...)))
}
