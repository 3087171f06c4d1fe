package scoring

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/driftwatch/internal/core/change"
	"github.com/colonyops/driftwatch/internal/core/logging"
)

// ActivitySource reports which change-producing tool, if any, was active at a
// point in time.
type ActivitySource interface {
	// ActiveTool returns the name and origin class of the tool active at t.
	// ok is false when no known tool was running.
	ActiveTool(t time.Time) (name string, origin change.Origin, ok bool)
}

// OriginDetector infers the origin of a change. Activity context wins when
// available; otherwise large batches are attributed to automated tooling.
type OriginDetector struct {
	activity       ActivitySource
	batchThreshold int
	log            zerolog.Logger
}

// NewOriginDetector builds a detector. activity may be nil, in which case only
// the batch-size heuristic applies. batchThreshold <= 0 disables the
// heuristic.
func NewOriginDetector(activity ActivitySource, batchThreshold int) *OriginDetector {
	return &OriginDetector{
		activity:       activity,
		batchThreshold: batchThreshold,
		log:            logging.Component("origin"),
	}
}

// Detect classifies a change observed at t as part of a batch of batchSize
// events. The returned tool name is empty unless a specific tool was
// identified.
func (d *OriginDetector) Detect(t time.Time, batchSize int) (change.Origin, string) {
	if d.activity != nil {
		if name, origin, ok := d.activity.ActiveTool(t); ok {
			d.log.Debug().Str("tool", name).Str("origin", string(origin)).Msg("origin from activity context")
			return origin, name
		}
	}
	if d.batchThreshold > 0 && batchSize >= d.batchThreshold {
		d.log.Debug().Int("batch_size", batchSize).Msg("origin inferred from batch size")
		return change.OriginAI, ""
	}
	return change.OriginUnknown, ""
}
