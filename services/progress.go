package services

import (
	"go.uber.org/zap"
)

// ProgressReporter receives per-chunk lifecycle events as the worker
// pool runs. Purely observational: implementations must not influence
// scheduling or error handling. ChunkQueued fires from the feeder as
// jobs enter the pool; ChunkDone and ChunkFailed fire from a single
// collector goroutine, in result-arrival order.
type ProgressReporter interface {
	ChunkQueued(chunkIndex int)
	ChunkDone(chunkIndex int, documentsStored int)
	ChunkFailed(chunkIndex int, err error)
}

// LogProgressReporter writes chunk progress to the service log.
type LogProgressReporter struct {
	Logger *zap.Logger
}

func (r *LogProgressReporter) ChunkQueued(chunkIndex int) {
	r.Logger.Debug("chunk queued", zap.Int("chunk", chunkIndex))
}

func (r *LogProgressReporter) ChunkDone(chunkIndex int, documentsStored int) {
	r.Logger.Info("chunk done",
		zap.Int("chunk", chunkIndex),
		zap.Int("documents", documentsStored))
}

func (r *LogProgressReporter) ChunkFailed(chunkIndex int, err error) {
	r.Logger.Error("chunk failed",
		zap.Int("chunk", chunkIndex),
		zap.Error(err))
}

// NoopProgressReporter discards all events. Useful in tests and for
// callers that only consume the per-job results.
type NoopProgressReporter struct{}

func (NoopProgressReporter) ChunkQueued(int)        {}
func (NoopProgressReporter) ChunkDone(int, int)     {}
func (NoopProgressReporter) ChunkFailed(int, error) {}
