package log

import (
	"slices"
	"sync"
)

// A Context adds fields to every emitted entry, for instance the program
// counter of the running CPU.
type Context interface {
	AddLogContext(z *EntryZ)
}

var (
	ctxmu    sync.RWMutex
	contexts []Context
)

func AddContext(c Context) {
	ctxmu.Lock()
	contexts = append(contexts, c)
	ctxmu.Unlock()
}

func RemoveContext(c Context) {
	ctxmu.Lock()
	contexts = slices.DeleteFunc(contexts, func(o Context) bool { return o == c })
	ctxmu.Unlock()
}

func addContexts(z *EntryZ) {
	ctxmu.RLock()
	for _, c := range contexts {
		c.AddLogContext(z)
	}
	ctxmu.RUnlock()
}
