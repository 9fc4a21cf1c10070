package emu

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Tracer receives one line per executed instruction, before the handler
// runs. Execution never depends on whether a tracer is attached.
type Tracer interface {
	Trace(pc uint32, word uint32, text string)
}

// TraceFunc adapts a function to the Tracer interface.
type TraceFunc func(pc uint32, word uint32, text string)

// Trace calls f.
func (f TraceFunc) Trace(pc uint32, word uint32, text string) {
	f(pc, word, text)
}

// LogrusTracer writes traces as Info entries with pc and word fields.
type LogrusTracer struct {
	logger logrus.FieldLogger
}

// NewLogrusTracer creates a tracer writing to logger.
func NewLogrusTracer(logger logrus.FieldLogger) *LogrusTracer {
	return &LogrusTracer{logger: logger}
}

// Trace implements Tracer.
func (t *LogrusTracer) Trace(pc uint32, word uint32, text string) {
	t.logger.WithFields(logrus.Fields{
		"pc":   fmt.Sprintf("0x%08x", pc),
		"word": fmt.Sprintf("0x%08x", word),
	}).Info(text)
}
