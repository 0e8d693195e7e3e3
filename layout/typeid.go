package layout

import (
	"sync"
	"sync/atomic"
)

// TypeID is a process-unique identifier for a layout. IDs are
// meaningless across processes; they exist so that runtime components
// (downcasting, memoization) can compare types nominally without
// walking layout graphs.
type TypeID uint64

var typeIDCounter atomic.Uint64

func nextTypeID() TypeID {
	return TypeID(typeIDCounter.Add(1))
}

type typeIDCell struct {
	once sync.Once
	id   TypeID
}

func (c *typeIDCell) get() TypeID {
	c.once.Do(func() {
		c.id = nextTypeID()
	})
	return c.id
}
