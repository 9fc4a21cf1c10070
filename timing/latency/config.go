package latency

import (
	"encoding/json"
	"fmt"
	"os"
)

// TimingConfig holds latency values for the instruction classes and the
// geometry of the instruction-fetch cache.
type TimingConfig struct {
	// ALULatency is the execution latency of lis, addi/li and ori.
	// Default: 1 cycle.
	ALULatency uint64 `json:"alu_latency"`

	// LoadLatency is the latency of lwz assuming a data hit.
	// Default: 4 cycles.
	LoadLatency uint64 `json:"load_latency"`

	// StoreLatency is the latency of stw. Default: 1 cycle.
	StoreLatency uint64 `json:"store_latency"`

	// SPRLatency is the latency of mtspr and mfspr. Default: 2 cycles.
	SPRLatency uint64 `json:"spr_latency"`

	// SyscallLatency is the latency of sc, not counting host work.
	// Default: 1 cycle.
	SyscallLatency uint64 `json:"syscall_latency"`

	// ICacheSize is the instruction cache capacity in bytes.
	// Default: 32 KiB.
	ICacheSize uint64 `json:"icache_size"`

	// ICacheAssociativity is the number of ways per set. Default: 8.
	ICacheAssociativity int `json:"icache_associativity"`

	// ICacheBlockSize is the line size in bytes. Default: 32.
	ICacheBlockSize int `json:"icache_block_size"`

	// ICacheHitLatency is the fetch latency on a hit. Default: 1 cycle.
	ICacheHitLatency uint64 `json:"icache_hit_latency"`

	// ICacheMissLatency is the fetch latency on a miss. Default: 20 cycles.
	ICacheMissLatency uint64 `json:"icache_miss_latency"`
}

// DefaultTimingConfig returns a TimingConfig with the default values.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		ALULatency:          1,
		LoadLatency:         4,
		StoreLatency:        1,
		SPRLatency:          2,
		SyscallLatency:      1,
		ICacheSize:          32 * 1024,
		ICacheAssociativity: 8,
		ICacheBlockSize:     32,
		ICacheHitLatency:    1,
		ICacheMissLatency:   20,
	}
}

// LoadConfig loads a TimingConfig from a JSON file.
func LoadConfig(path string) (*TimingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timing config file: %w", err)
	}

	config := DefaultTimingConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse timing config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a TimingConfig to a JSON file.
func (c *TimingConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize timing config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write timing config file: %w", err)
	}

	return nil
}

// Validate checks that all latencies are > 0 and that the cache geometry
// divides evenly into sets.
func (c *TimingConfig) Validate() error {
	if c.ALULatency == 0 {
		return fmt.Errorf("alu_latency must be > 0")
	}
	if c.LoadLatency == 0 {
		return fmt.Errorf("load_latency must be > 0")
	}
	if c.StoreLatency == 0 {
		return fmt.Errorf("store_latency must be > 0")
	}
	if c.SPRLatency == 0 {
		return fmt.Errorf("spr_latency must be > 0")
	}
	if c.SyscallLatency == 0 {
		return fmt.Errorf("syscall_latency must be > 0")
	}
	if c.ICacheHitLatency == 0 {
		return fmt.Errorf("icache_hit_latency must be > 0")
	}
	if c.ICacheMissLatency < c.ICacheHitLatency {
		return fmt.Errorf("icache_miss_latency must be >= icache_hit_latency")
	}
	if c.ICacheAssociativity <= 0 || c.ICacheBlockSize <= 0 {
		return fmt.Errorf("icache_associativity and icache_block_size must be > 0")
	}
	if c.ICacheBlockSize&(c.ICacheBlockSize-1) != 0 {
		return fmt.Errorf("icache_block_size %d must be a power of two", c.ICacheBlockSize)
	}
	way := uint64(c.ICacheAssociativity * c.ICacheBlockSize)
	if c.ICacheSize == 0 || c.ICacheSize%way != 0 {
		return fmt.Errorf("icache_size %d must be a non-zero multiple of %d", c.ICacheSize, way)
	}
	return nil
}

// Clone returns a deep copy of the TimingConfig.
func (c *TimingConfig) Clone() *TimingConfig {
	clone := *c
	return &clone
}
