package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/sarchlab/ppcsim/emu"
	"github.com/sarchlab/ppcsim/insts"
)

var _ = Describe("LogrusTracer", func() {
	It("should log one entry per instruction with pc and word", func() {
		logger, hook := test.NewNullLogger()

		e := emu.NewEmulator(
			emu.WithSyscallBridge(newRecordingBridge()),
			emu.WithLogger(quietLogger()),
			emu.WithTracer(emu.NewLogrusTracer(logger)),
		)
		Expect(e.LoadImage(insts.Program(
			insts.EncodeLIS(5, 0x1234),
			insts.EncodeLWZ(2, 6, 8),
		), 0xB0)).To(Succeed())

		e.Run()

		Expect(hook.Entries).To(HaveLen(2))
		first := hook.Entries[0]
		Expect(first.Level).To(Equal(logrus.InfoLevel))
		Expect(first.Message).To(Equal("lis r5, 0x1234"))
		Expect(first.Data).To(HaveKeyWithValue("pc", "0x000000b0"))
		Expect(first.Data).To(HaveKeyWithValue("word", "0x3ca01234"))

		Expect(hook.LastEntry().Message).To(Equal("lwz r2, 8(r6)"))
		Expect(hook.LastEntry().Data).To(HaveKeyWithValue("pc", "0x000000b4"))
	})

	It("should not trace words that never reach a handler", func() {
		logger, hook := test.NewNullLogger()

		e := emu.NewEmulator(
			emu.WithSyscallBridge(newRecordingBridge()),
			emu.WithLogger(quietLogger()),
			emu.WithTracer(emu.NewLogrusTracer(logger)),
		)
		Expect(e.LoadImage(insts.Program(0x4B000010), 0xB0)).To(Succeed())

		e.Run()

		Expect(hook.Entries).To(BeEmpty())
	})
})

var _ = Describe("Halt logging", func() {
	It("should log the halt reason at debug level", func() {
		logger, hook := test.NewNullLogger()
		logger.SetLevel(logrus.DebugLevel)

		e := emu.NewEmulator(
			emu.WithSyscallBridge(newRecordingBridge()),
			emu.WithLogger(logger),
		)
		Expect(e.LoadImage(insts.Program(0x4B000010), 0xB0)).To(Succeed())

		e.Run()

		Expect(hook.LastEntry()).NotTo(BeNil())
		Expect(hook.LastEntry().Message).To(Equal("emulator halted"))
		Expect(hook.LastEntry().Data).To(HaveKeyWithValue("reason", emu.HaltUnimplementedOpcode.String()))
		Expect(hook.LastEntry().Data).To(HaveKey(logrus.ErrorKey))
	})
})
