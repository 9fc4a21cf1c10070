// Package latency provides the per-instruction cost model used by the cycle
// estimate. Values are configured through TimingConfig.
package latency

import (
	"github.com/sarchlab/ppcsim/insts"
)

// Table provides instruction latency lookups.
type Table struct {
	config *TimingConfig
}

// NewTable creates a new latency table with the default timing values.
func NewTable() *Table {
	return &Table{
		config: DefaultTimingConfig(),
	}
}

// NewTableWithConfig creates a new latency table with a copy of config.
// Later changes to config do not affect the table.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{
		config: config.Clone(),
	}
}

// GetLatency returns the execution latency in cycles for the given
// instruction. Operations without a class cost one cycle.
func (t *Table) GetLatency(inst *insts.Instruction) uint64 {
	if inst == nil {
		return 1
	}

	switch inst.Op {
	case insts.OpLIS, insts.OpADDI, insts.OpORI:
		return t.config.ALULatency

	case insts.OpLWZ:
		return t.config.LoadLatency

	case insts.OpSTW:
		return t.config.StoreLatency

	case insts.OpMTSPR, insts.OpMFSPR:
		return t.config.SPRLatency

	case insts.OpSC:
		return t.config.SyscallLatency

	default:
		return 1
	}
}

// IsLoadOp returns true if the instruction is a load operation.
func (t *Table) IsLoadOp(inst *insts.Instruction) bool {
	if inst == nil {
		return false
	}
	return inst.Op == insts.OpLWZ
}

// IsStoreOp returns true if the instruction is a store operation.
func (t *Table) IsStoreOp(inst *insts.Instruction) bool {
	if inst == nil {
		return false
	}
	return inst.Op == insts.OpSTW
}

// Config returns the current timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}
