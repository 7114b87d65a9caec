/*
Package registrar tracks signal handler registrations by owner name so that
everything an owner registered can be removed at once.
*/
package registrar

import (
	"github.com/lunairc/luna/dispatch"
)

// Interface is the operations performable by a registrar.
type Interface interface {
	Register(signal string, handler dispatch.Handler) uint64
	Unregister(id uint64) bool
}
