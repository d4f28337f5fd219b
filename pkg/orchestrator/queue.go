package orchestrator

import (
	"sync"

	"github.com/keyrx/keyrx/pkg/devicestate"
)

// timerIndex is the one piece of dispatch state touched from outside
// the dispatch goroutine: a platform adapter's timer-fired callback
// runs on its own goroutine (sim.Advance, or the real time.AfterFunc
// in linuxevdev) and needs to translate a TimerHandle back to the
// device it belongs to before posting a command.
type timerIndex struct {
	mu sync.Mutex
	m  map[uint64]devicestate.Key
}

func newTimerIndex() *timerIndex {
	return &timerIndex{m: make(map[uint64]devicestate.Key)}
}

func (t *timerIndex) set(handle uint64, key devicestate.Key) {
	t.mu.Lock()
	t.m[handle] = key
	t.mu.Unlock()
}

func (t *timerIndex) delete(handle uint64) {
	t.mu.Lock()
	delete(t.m, handle)
	t.mu.Unlock()
}

func (t *timerIndex) get(handle uint64) (devicestate.Key, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	key, ok := t.m[handle]
	return key, ok
}
