package cache_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/ppcsim/timing/cache"
	"github.com/sarchlab/ppcsim/timing/latency"
)

var _ = Describe("Cache", func() {
	var c *cache.Cache

	BeforeEach(func() {
		// Small cache for testing: 4KB, 4-way, 64B lines, 16 sets
		config := cache.Config{
			Size:          4 * 1024,
			Associativity: 4,
			BlockSize:     64,
			HitLatency:    1,
			MissLatency:   10,
		}
		c = cache.New(config)
	})

	Describe("Access", func() {
		It("should miss on cold cache", func() {
			result := c.Access(0x1000)

			Expect(result.Hit).To(BeFalse())
			Expect(result.Latency).To(Equal(uint64(10)))
			Expect(result.Evicted).To(BeFalse())

			stats := c.Stats()
			Expect(stats.Accesses).To(Equal(uint64(1)))
			Expect(stats.Misses).To(Equal(uint64(1)))
			Expect(stats.Hits).To(BeZero())
		})

		It("should hit on a resident line", func() {
			c.Access(0x1000)

			result := c.Access(0x1000)

			Expect(result.Hit).To(BeTrue())
			Expect(result.Latency).To(Equal(uint64(1)))
			Expect(c.Stats().Hits).To(Equal(uint64(1)))
		})

		It("should hit on different addresses in same cache line", func() {
			c.Access(0x1000)

			Expect(c.Access(0x1004).Hit).To(BeTrue())
			Expect(c.Access(0x103C).Hit).To(BeTrue())
			Expect(c.Access(0x1040).Hit).To(BeFalse())
		})
	})

	Describe("Eviction", func() {
		It("should evict the least recently used line of a full set", func() {
			// Stride of 16 sets * 64B maps every address to set 0.
			for i := uint64(0); i < 4; i++ {
				Expect(c.Access(i * 0x400).Evicted).To(BeFalse())
			}

			// Touch line 0 so line 0x400 becomes the LRU.
			Expect(c.Access(0).Hit).To(BeTrue())

			result := c.Access(4 * 0x400)

			Expect(result.Hit).To(BeFalse())
			Expect(result.Evicted).To(BeTrue())
			Expect(result.EvictedAddr).To(Equal(uint64(0x400)))
			Expect(c.Contains(0)).To(BeTrue())
			Expect(c.Contains(0x400)).To(BeFalse())
			Expect(c.Stats().Evictions).To(Equal(uint64(1)))
		})

		It("should not evict across sets", func() {
			for i := uint64(0); i < 16; i++ {
				Expect(c.Access(i * 64).Evicted).To(BeFalse())
			}
			for i := uint64(0); i < 16; i++ {
				Expect(c.Access(i * 64).Hit).To(BeTrue())
			}
		})
	})

	Describe("Invalidate", func() {
		It("should force the next access to miss", func() {
			c.Access(0x2000)
			c.Invalidate(0x2010)

			Expect(c.Contains(0x2000)).To(BeFalse())
			Expect(c.Access(0x2000).Hit).To(BeFalse())
		})
	})

	Describe("Reset", func() {
		It("should drop all lines and statistics", func() {
			c.Access(0x2000)
			c.Access(0x2000)

			c.Reset()

			Expect(c.Stats()).To(Equal(cache.Statistics{}))
			Expect(c.Access(0x2000).Hit).To(BeFalse())
		})
	})

	Describe("Statistics", func() {
		It("should compute the hit rate", func() {
			Expect(c.Stats().HitRate()).To(BeZero())

			c.Access(0)
			c.Access(0)
			c.Access(4)
			c.Access(0x40)

			Expect(c.Stats().HitRate()).To(BeNumerically("~", 0.5))
		})
	})

	Describe("Default configurations", func() {
		It("should create L1I config", func() {
			config := cache.DefaultL1IConfig()

			Expect(config.Size).To(Equal(32 * 1024))
			Expect(config.Associativity).To(Equal(8))
			Expect(config.BlockSize).To(Equal(32))
			Expect(config.HitLatency).To(Equal(uint64(1)))
			Expect(config.MissLatency).To(Equal(uint64(20)))
			Expect(config.NumSets()).To(Equal(128))
		})

		It("should follow the timing configuration", func() {
			timing := latency.DefaultTimingConfig()
			timing.ICacheSize = 1024
			timing.ICacheAssociativity = 2
			timing.ICacheBlockSize = 16
			timing.ICacheMissLatency = 50

			config := cache.ConfigFromTiming(timing)

			Expect(config.NumSets()).To(Equal(32))
			Expect(config.MissLatency).To(Equal(uint64(50)))
		})
	})
})
