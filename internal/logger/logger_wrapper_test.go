package logger

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/leandrodaf/synthsync/sdk/contracts"
)

func newObserved(level contracts.LogLevel) (contracts.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return New(zap.New(core), level), logs
}

func TestZapLogger_FieldsAreStructured(t *testing.T) {
	log, logs := newObserved(contracts.DebugLevel)

	log.Info("control changed",
		log.Field().String("name", "cutoff"),
		log.Field().Float64("value", 0.25),
		log.Field().Error("error", errors.New("boom")),
	)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "control changed", entries[0].Message)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "cutoff", ctx["name"])
	assert.Equal(t, 0.25, ctx["value"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestZapLogger_LevelFiltering(t *testing.T) {
	log, logs := newObserved(contracts.WarnLevel)

	log.Debug("hidden")
	log.Info("hidden")
	log.Warn("shown")
	log.Error("shown")
	assert.Equal(t, 2, logs.Len())

	log.SetLevel(contracts.DebugLevel)
	log.Debug("now shown")
	assert.Equal(t, 3, logs.Len())
}

func TestZapLogger_SetDestinationFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synth.log")
	log := NewZapLogger()

	log.SetDestination(contracts.FileLog, path)
	t.Cleanup(func() { _ = log.(*ZapLogger).Close() })
	log.Info("written to file", log.Field().Int("voices", 4))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
	assert.Contains(t, string(data), `"voices":4`)
}

func TestNopLogger(t *testing.T) {
	log := NewNopLogger()
	assert.NotPanics(t, func() {
		log.Info("ignored", log.Field().Bool("ok", true))
		log.SetLevel(contracts.ErrorLevel)
	})
}

func TestZapLogger_SetDestinationClosesPreviousFile(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.log")
	second := filepath.Join(dir, "second.log")

	log := NewZapLogger().(*ZapLogger)
	t.Cleanup(func() { _ = log.Close() })

	log.SetDestination(contracts.FileLog, first)
	log.Info("before switch")
	firstFile := log.file
	require.NotNil(t, firstFile)

	log.SetDestination(contracts.FileLog, second)
	log.Info("after switch")

	_, err := firstFile.Write([]byte("x"))
	assert.ErrorIs(t, err, os.ErrClosed)

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Contains(t, string(data), "before switch")
	assert.NotContains(t, string(data), "after switch")

	data, err = os.ReadFile(second)
	require.NoError(t, err)
	assert.Contains(t, string(data), "after switch")

	require.NoError(t, log.Close())
	assert.Nil(t, log.file)
}

func TestZapLogger_SetDestinationWhileLogging(t *testing.T) {
	dir := t.TempDir()
	log := NewZapLogger().(*ZapLogger)
	log.SetLevel(contracts.DebugLevel)
	t.Cleanup(func() { _ = log.Close() })

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					log.Debug("tick", log.Field().Int("n", 1))
				}
			}
		}()
	}

	for i := 0; i < 20; i++ {
		log.SetDestination(contracts.FileLog, filepath.Join(dir, "rotating.log"))
	}
	close(stop)
	wg.Wait()
	log.Info("done")

	data, err := os.ReadFile(filepath.Join(dir, "rotating.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "done")
}
