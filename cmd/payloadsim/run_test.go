package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/dglo/payload-sub005/pkg/config"
	"github.com/dglo/payload-sub005/pkg/json"
	"github.com/dglo/payload-sub005/pkg/logger"
)

func smallConfig() *config.Config {
	cfg := config.Default()
	cfg.Logging.Level = "error"
	cfg.Pipeline.Producers = 2
	cfg.Pipeline.Events = 20
	cfg.Pipeline.HitsPerTrigger = 5
	cfg.Pipeline.BeaconEvery = 0
	return cfg
}

func TestRunSimulationReport(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runSimulation(context.Background(), smallConfig(), &out, &bytes.Buffer{}))

	var rep report
	require.NoError(t, json.Unmarshal(out.Bytes(), &rep))
	assert.Equal(t, "payloadsim", rep.Name)
	assert.Empty(t, rep.Error)
	assert.Equal(t, int64(40), rep.Stats.HitsProduced)
	assert.Equal(t, int64(8), rep.Stats.TriggersBuilt)
	require.Len(t, rep.Stats.Pools, 3)
	for _, ps := range rep.Stats.Pools {
		assert.Equal(t, int64(0), ps.InUse)
	}
}

func TestRunSimulationReportsFailure(t *testing.T) {
	cfg := smallConfig()
	cfg.Pools["simpleHit"] = config.PoolConfig{MaxLive: 1}

	var out bytes.Buffer
	err := runSimulation(context.Background(), cfg, &out, &bytes.Buffer{})
	require.Error(t, err)

	var rep report
	require.NoError(t, json.Unmarshal(out.Bytes(), &rep))
	assert.Contains(t, rep.Error, "pool exhausted")
}

func TestRunSimulationBadLogLevel(t *testing.T) {
	cfg := smallConfig()
	cfg.Logging.Level = "chatty"
	assert.Error(t, runSimulation(context.Background(), cfg, &bytes.Buffer{}, &bytes.Buffer{}))
}

func TestRunSimulationTraceKeepsReportClean(t *testing.T) {
	cfg := smallConfig()
	cfg.Tracing.Enabled = true

	var out, diag bytes.Buffer
	require.NoError(t, runSimulation(context.Background(), cfg, &out, &diag))

	var rep report
	require.NoError(t, json.Unmarshal(out.Bytes(), &rep))
	assert.Equal(t, int64(8), rep.Stats.TriggersBuilt)
	assert.NotContains(t, out.String(), "trigger.build")
	assert.Contains(t, diag.String(), "trigger.build")
}

func TestRunSimulationInstallsGlobalLogger(t *testing.T) {
	cfg := smallConfig()
	cfg.Logging.Level = "error"
	require.NoError(t, runSimulation(context.Background(), cfg, &bytes.Buffer{}, &bytes.Buffer{}))
	assert.False(t, logger.Get().Core().Enabled(zapcore.WarnLevel))

	cfg.Logging.Level = "debug"
	require.NoError(t, runSimulation(context.Background(), cfg, &bytes.Buffer{}, &bytes.Buffer{}))
	assert.True(t, logger.Get().Core().Enabled(zapcore.DebugLevel))
}

func TestLoadConfigFlags(t *testing.T) {
	cmd := newRunCommand()
	require.NoError(t, cmd.Flags().Parse([]string{"--producers", "6", "--beacon-every", "0"}))

	cfg, err := loadConfig(cmd, runFlags{producers: 6, beaconEvery: 0, events: 0})
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Pipeline.Producers)
	assert.Equal(t, 0, cfg.Pipeline.BeaconEvery)
	// unset flags keep the defaults
	assert.Equal(t, config.Default().Pipeline.Events, cfg.Pipeline.Events)
}
