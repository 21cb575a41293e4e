package emailsvc

import (
	"sync"
	"sync/atomic"
)

// delivery tracks the messages in flight and how many of them reached the provider.
type delivery struct {
	wg        sync.WaitGroup
	delivered int64
}

func (d *delivery) start() { d.wg.Add(1) }

func (d *delivery) done(delivered bool) {
	if delivered {
		atomic.AddInt64(&d.delivered, 1)
	}
	d.wg.Done()
}

// wait blocks until nothing is in flight and returns the deliveries since the previous wait.
func (d *delivery) wait() int {
	d.wg.Wait()
	return int(atomic.SwapInt64(&d.delivered, 0))
}
