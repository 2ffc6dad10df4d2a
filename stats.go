package rcon

import "sync/atomic"

// Stats is a snapshot of counters for a single session. The live
// counters are updated atomically; the snapshot is a plain copy.
//
// For Prometheus integration, expose Commands, Auths and
// PartialResponses as counters and BytesRead/BytesWritten as counters
// with a direction label.
type Stats struct {
	Commands         uint64 // commands sent
	Auths            uint64 // authentication attempts
	PartialResponses uint64 // reassemblies cut short by a read timeout
	Errors           uint64 // transport failures surfaced to the caller
	BytesRead        uint64
	BytesWritten     uint64
}

type statsCollector struct {
	commands         atomic.Uint64
	auths            atomic.Uint64
	partialResponses atomic.Uint64
	errors           atomic.Uint64
	bytesRead        atomic.Uint64
	bytesWritten     atomic.Uint64
}

func (c *statsCollector) recordCommand()      { c.commands.Add(1) }
func (c *statsCollector) recordAuth()         { c.auths.Add(1) }
func (c *statsCollector) recordPartial()      { c.partialResponses.Add(1) }
func (c *statsCollector) recordError()        { c.errors.Add(1) }
func (c *statsCollector) recordRead(n int)    { c.bytesRead.Add(uint64(n)) }
func (c *statsCollector) recordWritten(n int) { c.bytesWritten.Add(uint64(n)) }

func (c *statsCollector) snapshot() Stats {
	return Stats{
		Commands:         c.commands.Load(),
		Auths:            c.auths.Load(),
		PartialResponses: c.partialResponses.Load(),
		Errors:           c.errors.Load(),
		BytesRead:        c.bytesRead.Load(),
		BytesWritten:     c.bytesWritten.Load(),
	}
}
