// Package core provides the cycle estimate of a run. It drives the
// functional emulator one instruction at a time and charges each
// instruction its fetch cost from the instruction cache plus its execution
// latency. There is no pipeline overlap: the estimate is the latency-weighted
// instruction mix plus fetch stalls.
package core

import (
	"github.com/sarchlab/ppcsim/emu"
	"github.com/sarchlab/ppcsim/timing/cache"
	"github.com/sarchlab/ppcsim/timing/latency"
)

// Stats holds performance statistics for the core.
type Stats struct {
	// Cycles is the total number of cycles charged.
	Cycles uint64
	// Instructions is the number of instructions executed.
	Instructions uint64
	// FetchStalls is the number of cycles spent on fetches beyond the hit
	// latency.
	FetchStalls uint64
	// ICacheHits and ICacheMisses count instruction fetches.
	ICacheHits   uint64
	ICacheMisses uint64
	// Loads and Stores count retired data memory accesses.
	Loads  uint64
	Stores uint64
}

// CPI returns the cycles per instruction.
func (s Stats) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// ICacheHitRate returns the fraction of fetches that hit.
func (s Stats) ICacheHitRate() float64 {
	total := s.ICacheHits + s.ICacheMisses
	if total == 0 {
		return 0
	}
	return float64(s.ICacheHits) / float64(total)
}

// Core adds a cycle count to an emulator run.
type Core struct {
	emulator     *emu.Emulator
	latencyTable *latency.Table
	icache       *cache.Cache

	cycles      uint64
	fetchStalls uint64
	loads       uint64
	stores      uint64
}

// CoreOption is a functional option for configuring the Core.
type CoreOption func(*Core)

// WithLatencyTable sets the execution latency table.
func WithLatencyTable(table *latency.Table) CoreOption {
	return func(c *Core) {
		c.latencyTable = table
	}
}

// WithICache sets the instruction cache.
func WithICache(icache *cache.Cache) CoreOption {
	return func(c *Core) {
		c.icache = icache
	}
}

// NewCore creates a Core driving emulator. Without options it uses the
// default latency table and L1I configuration.
func NewCore(emulator *emu.Emulator, opts ...CoreOption) *Core {
	c := &Core{
		emulator: emulator,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.latencyTable == nil {
		c.latencyTable = latency.NewTable()
	}
	if c.icache == nil {
		c.icache = cache.New(cache.DefaultL1IConfig())
	}

	return c
}

// NewCoreFromConfig creates a Core whose latencies and cache geometry come
// from config.
func NewCoreFromConfig(emulator *emu.Emulator, config *latency.TimingConfig) *Core {
	return NewCore(emulator,
		WithLatencyTable(latency.NewTableWithConfig(config)),
		WithICache(cache.New(cache.ConfigFromTiming(config))),
	)
}

// Emulator returns the functional emulator behind the core.
func (c *Core) Emulator() *emu.Emulator {
	return c.emulator
}

// Step executes one instruction and charges its cycles. A fetch that
// faults or ends the program costs nothing. A store drops the icache line
// it writes, so rewritten code is fetched again.
func (c *Core) Step() emu.StepResult {
	if c.emulator.Halted() {
		return c.emulator.Step()
	}

	pc := c.emulator.RegFile().PC
	word, err := c.emulator.FetchWord(0)
	if err != nil {
		return c.emulator.Step()
	}

	inst := c.emulator.Decoder().Decode(word)
	addr := c.emulator.EffectiveAddress(inst)
	before := c.emulator.InstructionCount()

	result := c.emulator.Step()

	if c.emulator.InstructionCount() == before {
		return result
	}

	fetch := c.icache.Access(uint64(pc))
	c.cycles += fetch.Latency
	if !fetch.Hit {
		c.fetchStalls += fetch.Latency - c.icache.Config().HitLatency
	}

	c.cycles += c.latencyTable.GetLatency(&inst)

	switch {
	case c.latencyTable.IsLoadOp(&inst):
		c.loads++
	case c.latencyTable.IsStoreOp(&inst):
		c.stores++
		c.icache.Invalidate(uint64(addr))
	}

	return result
}

// Run executes instructions until the emulator halts.
func (c *Core) Run() emu.StepResult {
	for {
		result := c.Step()
		if result.Halted {
			return result
		}
	}
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() Stats {
	cacheStats := c.icache.Stats()
	return Stats{
		Cycles:       c.cycles,
		Instructions: c.emulator.InstructionCount(),
		FetchStalls:  c.fetchStalls,
		ICacheHits:   cacheStats.Hits,
		ICacheMisses: cacheStats.Misses,
		Loads:        c.loads,
		Stores:       c.stores,
	}
}
