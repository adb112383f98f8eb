// Package progress reports the advance of long-running import stages.
package progress

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rcrowley/go-metrics"
	"go.uber.org/zap"
)

// DefaultEvery is how many items pass between two progress lines.
const DefaultEvery = 50000

// Counter counts processed items, logging a line every Every items. Each
// counter registers a meter named after it in Registry.
type Counter struct {
	name    string
	every   int64
	meter   metrics.Meter
	logger  *zap.Logger
	started time.Time
}

// Registry holds the meters of all counters.
var Registry = metrics.NewRegistry()

// NewCounter returns a counter for the items of one stage, e.g.
// "en.links" counting pages.
func NewCounter(name, unit string, every int64, logger *zap.Logger) *Counter {
	if every <= 0 {
		every = DefaultEvery
	}
	meter := metrics.NewMeter()
	// re-running a stage replaces its meter
	Registry.Unregister(name)
	if err := Registry.Register(name, meter); err != nil {
		logger.Warn("registering meter", zap.String("meter", name), zap.Error(err))
	}
	return &Counter{
		name:    name,
		every:   every,
		meter:   meter,
		logger:  logger.With(zap.String("counter", name), zap.String("unit", unit)),
		started: time.Now(),
	}
}

// Add records n more items.
func (c *Counter) Add(n int64) {
	before := c.meter.Count()
	c.meter.Mark(n)
	after := before + n
	if after/c.every != before/c.every {
		c.logger.Info("progress",
			zap.String("count", humanize.Comma(after)),
			zap.String("rate", humanize.CommafWithDigits(c.meter.RateMean(), 1)+"/s"))
	}
}

// Count returns the number of items recorded so far.
func (c *Counter) Count() int64 {
	return c.meter.Count()
}

// Done logs the final count and elapsed time, and stops the meter.
func (c *Counter) Done() {
	c.logger.Info("done",
		zap.String("count", humanize.Comma(c.meter.Count())),
		zap.String("elapsed", Elapsed(c.started)))
	c.meter.Stop()
}

// Elapsed renders the time since start for log lines, e.g. "2m5s".
func Elapsed(start time.Time) string {
	return time.Since(start).Round(time.Second).String()
}

// Snapshot returns the count of every registered meter.
func Snapshot() map[string]int64 {
	out := make(map[string]int64)
	Registry.Each(func(name string, m interface{}) {
		if meter, ok := m.(metrics.Meter); ok {
			out[name] = meter.Count()
		}
	})
	return out
}
