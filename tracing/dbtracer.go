package tracing

import (
	"sync"

	"github.com/sarchlab/mediumcache/datarecording"
	"github.com/sarchlab/mediumcache/hooking"
	"github.com/sarchlab/mediumcache/idgen"
)

// EventTable is the table that DBTracer records into.
const EventTable = "cache_events"

// Event is one row of the event table.
type Event struct {
	ID    string
	Cache string
	Kind  string
	Key   string
	Time  float64
}

// DBTracer records cache events into a DataRecorder. Recording starts after
// StartTracing is called.
type DBTracer struct {
	lock       sync.Mutex
	timeTeller TimeTeller
	backend    datarecording.DataRecorder
	idGen      idgen.Generator
	isTracing  bool
	count      int
}

// NewDBTracer creates a DBTracer and the event table in the backend.
func NewDBTracer(
	timeTeller TimeTeller,
	backend datarecording.DataRecorder,
	idGen idgen.Generator,
) *DBTracer {
	backend.CreateTable(EventTable, Event{})

	return &DBTracer{
		timeTeller: timeTeller,
		backend:    backend,
		idGen:      idGen,
	}
}

// StartTracing starts recording events.
func (t *DBTracer) StartTracing() {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.isTracing = true
}

// StopTracing stops recording events and flushes the ones recorded so far.
func (t *DBTracer) StopTracing() {
	t.lock.Lock()
	t.isTracing = false
	t.lock.Unlock()

	t.backend.Flush()
}

// IsTracing returns true if events are being recorded.
func (t *DBTracer) IsTracing() bool {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.isTracing
}

// Count returns the number of events recorded.
func (t *DBTracer) Count() int {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.count
}

// Func records the event.
func (t *DBTracer) Func(ctx hooking.HookCtx) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if !t.isTracing {
		return
	}

	t.backend.InsertData(EventTable, Event{
		ID:    t.idGen.Generate(),
		Cache: domainName(ctx),
		Kind:  ctx.Pos.Name,
		Key:   keyString(ctx),
		Time:  t.timeTeller.CurrentTime(),
	})
	t.count++
}
