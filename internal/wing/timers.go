package wing

import (
	"time"

	"github.com/edtools/wingbot/pkg/util"
)

type expiryEntry struct {
	name  string
	timer *time.Timer
}

func (e *expiryEntry) Name() string {
	return e.name
}

// Scheduler arms one-shot expiry actions. Armed timers are never
// cancelled, the action itself must tolerate its target being gone.
type Scheduler struct {
	entries *util.Holder[*expiryEntry]
}

func NewScheduler() *Scheduler {
	return &Scheduler{entries: util.NewHolder[*expiryEntry]()}
}

func (s *Scheduler) Schedule(name string, at time.Time, f func()) {
	d := time.Until(at)

	if d < 0 {
		d = 0
	}

	e := &expiryEntry{name: name}

	e.timer = time.AfterFunc(d, func() {
		s.entries.Remove(name)
		f()
	})

	s.entries.Add(e)
}

// Pending is the number of armed, not yet fired timers.
func (s *Scheduler) Pending() int {
	return s.entries.Len()
}
