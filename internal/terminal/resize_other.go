//go:build !unix

package terminal

import "os"

// NotifyResize returns a nil channel: there is no resize signal here.
func NotifyResize() (c <-chan os.Signal, stop func()) {
	return nil, func() {}
}
