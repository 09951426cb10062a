package synth

// Comm is the collective-communication context for one worker in the SPMD
// group. It replaces an ambient communicator: rank, size and the three
// collectives are injected into the engine, so a single-process run uses
// SoloComm and tests can drive multi-worker runs with an in-process group.
// A collective completes at the root only once every rank's contribution
// has been delivered; successive collectives on one Comm stay in order.
type Comm interface {
	// Rank is this worker's index, 0..Size()-1. Rank 0 is the coordinator.
	Rank() int
	// Size is the number of workers in the group.
	Size() int
	// BroadcastInts distributes data from the root rank to all workers.
	// Non-root workers pass nil and receive the root's slice.
	BroadcastInts(root int, data []int) []int
	// GatherInts collects each worker's slice at the root, indexed by rank.
	// Non-root workers receive nil. Slices may differ in length; the result
	// at the root is keyed by rank, not by arrival order.
	GatherInts(root int, data []int) [][]int
	// GatherFloat64s is GatherInts for pixel buffers.
	GatherFloat64s(root int, data []float64) [][]float64
}

// SoloComm is the single-worker context. Every collective degrades to a
// no-op returning the local data.
type SoloComm struct{}

func (SoloComm) Rank() int { return 0 }
func (SoloComm) Size() int { return 1 }

func (SoloComm) BroadcastInts(root int, data []int) []int { return data }

func (SoloComm) GatherInts(root int, data []int) [][]int { return [][]int{data} }

func (SoloComm) GatherFloat64s(root int, data []float64) [][]float64 {
	return [][]float64{data}
}

// localGroup is the shared state of an in-process worker group. Each rank
// owns a pair of channels; per-channel FIFO ordering keeps successive
// collectives from interleaving without extra sequencing.
type localGroup struct {
	size   int
	toRank []chan []int // root -> rank broadcast delivery
	intIn  []chan []int // rank -> root int gather delivery
	f64In  []chan []float64
}

// LocalComm is one worker's handle on an in-process SPMD group built by
// NewLocalGroup. It implements Comm over channels; a worker that never
// reaches a collective blocks the group; there is no timeout.
type LocalComm struct {
	g    *localGroup
	rank int
}

// NewLocalGroup creates an n-worker in-process group and returns one Comm
// per rank. Run each worker on its own goroutine with its own Comm.
func NewLocalGroup(n int) []*LocalComm {
	g := &localGroup{
		size:   n,
		toRank: make([]chan []int, n),
		intIn:  make([]chan []int, n),
		f64In:  make([]chan []float64, n),
	}
	for i := 0; i < n; i++ {
		g.toRank[i] = make(chan []int, 1)
		g.intIn[i] = make(chan []int, 1)
		g.f64In[i] = make(chan []float64, 1)
	}
	comms := make([]*LocalComm, n)
	for i := 0; i < n; i++ {
		comms[i] = &LocalComm{g: g, rank: i}
	}
	return comms
}

func (c *LocalComm) Rank() int { return c.rank }
func (c *LocalComm) Size() int { return c.g.size }

func (c *LocalComm) BroadcastInts(root int, data []int) []int {
	if c.rank == root {
		for r := 0; r < c.g.size; r++ {
			if r == root {
				continue
			}
			c.g.toRank[r] <- append([]int(nil), data...)
		}
		return data
	}
	return <-c.g.toRank[c.rank]
}

func (c *LocalComm) GatherInts(root int, data []int) [][]int {
	if c.rank != root {
		c.g.intIn[c.rank] <- append([]int(nil), data...)
		return nil
	}
	out := make([][]int, c.g.size)
	for r := 0; r < c.g.size; r++ {
		if r == root {
			out[r] = data
			continue
		}
		out[r] = <-c.g.intIn[r]
	}
	return out
}

func (c *LocalComm) GatherFloat64s(root int, data []float64) [][]float64 {
	if c.rank != root {
		c.g.f64In[c.rank] <- append([]float64(nil), data...)
		return nil
	}
	out := make([][]float64, c.g.size)
	for r := 0; r < c.g.size; r++ {
		if r == root {
			out[r] = data
			continue
		}
		out[r] = <-c.g.f64In[r]
	}
	return out
}

// assignedRows returns the grid-row indices handled by rank under the
// round-robin partition: rank, rank+size, rank+2*size, ...
func assignedRows(rank, size, totalRows int) []int {
	var rows []int
	for i := rank; i < totalRows; i += size {
		rows = append(rows, i)
	}
	return rows
}
