package game

import (
	"runtime"
	"sync"
)

// parallelThreshold is the minimum agent count to use parallel processing.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 64

// workChunk represents a range of agents for a worker to process.
type workChunk struct {
	start, end int
}

// parallelState holds resources for the parallel sense/steer phase.
//
// Workers only read snapshots and the pre-tick field and only write
// intents for their own index range, so the phase is race-free without
// locks. The snapshot/intent split is what guarantees no agent ever sees
// another agent's same-tick result.
type parallelState struct {
	snapshots []agentSnapshot
	intents   []intent

	numWorkers int

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running

	game *Game
}

func newParallelState(agentCount int) *parallelState {
	return &parallelState{
		numWorkers: runtime.GOMAXPROCS(0),
		snapshots:  make([]agentSnapshot, agentCount),
		intents:    make([]intent, agentCount),
	}
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers(g *Game) {
	if p.running {
		return
	}

	p.game = g
	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *parallelState) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopChan:
			return
		case chunk := <-p.workChan:
			p.processChunk(chunk)
			p.doneChan <- struct{}{}
		}
	}
}

// processChunk computes intents for a range of agents.
func (p *parallelState) processChunk(chunk workChunk) {
	g := p.game
	for i := chunk.start; i < chunk.end; i++ {
		p.intents[i] = chooseHeading(&p.snapshots[i], g.world, &g.params, g.rngs[i])
	}
}

// run distributes the sense/steer phase across the worker pool, or runs
// it inline for small colonies.
func (p *parallelState) run(g *Game) {
	p.game = g
	n := len(p.snapshots)
	if n < parallelThreshold {
		p.processChunk(workChunk{start: 0, end: n})
		return
	}

	p.startWorkers(g)

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers
	chunks := 0
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		p.workChan <- workChunk{start: start, end: end}
		chunks++
	}
	for i := 0; i < chunks; i++ {
		<-p.doneChan
	}
}
