package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool runs batches of independent work items on a fixed set of
// goroutines. Each worker owns a queue and steals from the others when its
// own queue is empty, which balances uneven workgroup costs.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	workers    int
	workQueues []chan func()
	done       chan struct{}
	wg         sync.WaitGroup
	running    atomic.Bool
}

// NewWorkerPool starts a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	queueSize := max(workers*4, 8)

	p := &WorkerPool{
		workers:    workers,
		workQueues: make([]chan func(), workers),
		done:       make(chan struct{}),
	}
	for i := range workers {
		p.workQueues[i] = make(chan func(), queueSize)
	}

	p.running.Store(true)
	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	own := p.workQueues[id]
	for {
		select {
		case <-p.done:
			p.drain(own)
			return
		case work := <-own:
			work()
		default:
			if stolen := p.steal(id); stolen != nil {
				stolen()
				continue
			}
			select {
			case <-p.done:
				p.drain(own)
				return
			case work := <-own:
				work()
			}
		}
	}
}

func (p *WorkerPool) drain(queue chan func()) {
	for {
		select {
		case work := <-queue:
			work()
		default:
			return
		}
	}
}

func (p *WorkerPool) steal(id int) func() {
	for i := range p.workers {
		if i == id {
			continue
		}
		select {
		case work := <-p.workQueues[i]:
			return work
		default:
		}
	}
	return nil
}

// ExecuteAll distributes work round-robin and blocks until every item has
// run. After Close the items run on the calling goroutine.
func (p *WorkerPool) ExecuteAll(work []func()) {
	if len(work) == 0 {
		return
	}
	if !p.running.Load() {
		for _, fn := range work {
			fn()
		}
		return
	}

	var pending sync.WaitGroup
	pending.Add(len(work))
	for i, fn := range work {
		wrapped := func() {
			defer pending.Done()
			fn()
		}
		select {
		case p.workQueues[i%p.workers] <- wrapped:
		case <-p.done:
			wrapped()
		}
	}
	pending.Wait()
}

// Close stops the workers after the queued work has drained.
// Close is safe to call multiple times.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning reports whether the pool still accepts work.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}
