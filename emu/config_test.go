package emu_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/ppcsim/emu"
)

var _ = Describe("Config", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("should describe the default machine", func() {
		config := emu.DefaultConfig()

		Expect(config.MemorySize).To(Equal(uint32(0x40000)))
		Expect(config.EntryPoint).To(Equal(uint32(0xB0)))
		Expect(config.StackPointer).To(Equal(uint32(0x500)))
		Expect(config.ImageSize).To(Equal(uint32(0x200)))
		Expect(config.MaxInstructions).To(BeZero())
		Expect(config.Validate()).To(Succeed())
	})

	It("should round-trip through a file", func() {
		path := filepath.Join(dir, "machine.json")
		config := emu.DefaultConfig()
		config.EntryPoint = 0x100
		config.MaxInstructions = 1000

		Expect(config.SaveConfig(path)).To(Succeed())
		loaded, err := emu.LoadConfig(path)

		Expect(err).NotTo(HaveOccurred())
		Expect(loaded).To(Equal(config))
	})

	It("should keep defaults for fields missing from the file", func() {
		path := filepath.Join(dir, "partial.json")
		Expect(os.WriteFile(path, []byte(`{"entry_point": 256}`), 0644)).To(Succeed())

		config, err := emu.LoadConfig(path)

		Expect(err).NotTo(HaveOccurred())
		Expect(config.EntryPoint).To(Equal(uint32(0x100)))
		Expect(config.MemorySize).To(Equal(uint32(0x40000)))
		Expect(config.StackPointer).To(Equal(uint32(0x500)))
	})

	It("should report unreadable and malformed files", func() {
		_, err := emu.LoadConfig(filepath.Join(dir, "missing.json"))
		Expect(err).To(MatchError(os.ErrNotExist))

		path := filepath.Join(dir, "bad.json")
		Expect(os.WriteFile(path, []byte("{"), 0644)).To(Succeed())
		_, err = emu.LoadConfig(path)
		Expect(err).To(MatchError(ContainSubstring("failed to parse")))
	})

	DescribeTable("Validate",
		func(mutate func(*emu.Config), message string) {
			config := emu.DefaultConfig()
			mutate(config)

			Expect(config.Validate()).To(MatchError(ContainSubstring(message)))
		},
		Entry("zero memory", func(c *emu.Config) { c.MemorySize = 0 }, "memory_size"),
		Entry("unaligned entry", func(c *emu.Config) { c.EntryPoint = 0xB2 }, "multiple of 4"),
		Entry("entry past memory", func(c *emu.Config) { c.EntryPoint = 0x40000 }, "below memory_size"),
		Entry("oversized image", func(c *emu.Config) { c.ImageSize = 0x40001 }, "image_size"),
	)

	It("should configure an emulator", func() {
		config := emu.DefaultConfig()
		config.MemorySize = 0x2000
		config.EntryPoint = 0x40
		config.StackPointer = 0x1000

		opts := append(config.Options(), emu.WithSyscallBridge(newRecordingBridge()))
		e := emu.NewEmulator(opts...)

		Expect(e.Memory().Capacity()).To(Equal(uint32(0x2000)))
		Expect(e.RegFile().PC).To(Equal(uint32(0x40)))
		Expect(e.RegFile().R[emu.RegSP]).To(Equal(uint32(0x1000)))
	})
})
