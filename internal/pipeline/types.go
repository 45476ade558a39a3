package pipeline

import (
	"time"

	"github.com/dglo/payload-sub005/pkg/pool"
)

// Stats summarises one pipeline run.
type Stats struct {
	HitsProduced    int64         `json:"hits_produced"`
	BeaconsProduced int64         `json:"beacons_produced"`
	TriggersBuilt   int64         `json:"triggers_built"`
	CopiesVerified  int64         `json:"copies_verified"`
	Failures        int64         `json:"failures"`
	Duration        time.Duration `json:"duration"`
	ThroughputPPS   float64       `json:"throughput_pps"`
	Pools           []pool.Stats  `json:"pools"`
}

// Stage names used in logs, spans and metric labels.
const (
	StageProducer = "producer"
	StageTrigger  = "trigger"
	StageConsumer = "consumer"
)
