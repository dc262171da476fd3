package examgen

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ModelTrace records every model interaction of one generation run as JSON lines.
// A nil *ModelTrace is valid and records nothing.
type ModelTrace struct {
	mu     sync.Mutex
	logger *zap.Logger
	file   *lumberjack.Logger
	runID  string
	closed bool
}

// NewModelTrace creates <dir>/<runID>.log and writes the run header
func NewModelTrace(dir, runID string, fields map[string]interface{}) (*ModelTrace, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create trace directory: %w", err)
	}

	file := &lumberjack.Logger{
		Filename: filepath.Join(dir, fmt.Sprintf("%s.log", runID)),
		MaxSize:  50,
	}
	writer := zapcore.AddSync(file)
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), writer, zap.DebugLevel)
	mt := &ModelTrace{
		logger: zap.New(core).With(zap.String("run_id", runID)),
		file:   file,
		runID:  runID,
	}

	header := []zap.Field{zap.Time("started", time.Now())}
	for k, v := range fields {
		header = append(header, zap.Any(k, v))
	}
	mt.logger.Info("run started", header...)
	return mt, nil
}

// RunID returns the identifier the trace was created with
func (mt *ModelTrace) RunID() string {
	if mt == nil {
		return ""
	}
	return mt.runID
}

func (mt *ModelTrace) write(msg string, fields ...zap.Field) {
	if mt == nil {
		return
	}
	mt.mu.Lock()
	defer mt.mu.Unlock()
	if mt.closed {
		return
	}
	mt.logger.Info(msg, fields...)
}

// LogModelRequest records the text sent to a model
func (mt *ModelTrace) LogModelRequest(component, input string) {
	mt.write("model request", zap.String("component", component), zap.String("input", input))
}

// LogModelResponse records the text a model returned
func (mt *ModelTrace) LogModelResponse(component, output string) {
	mt.write("model response", zap.String("component", component), zap.String("output", output))
}

// LogCandidateResult records what happened to one candidate
func (mt *ModelTrace) LogCandidateResult(candidateID, action, reason string) {
	mt.write("candidate", zap.String("candidate_id", candidateID), zap.String("action", action), zap.String("reason", reason))
}

// Close writes the footer and flushes the trace
func (mt *ModelTrace) Close() error {
	if mt == nil {
		return nil
	}
	mt.mu.Lock()
	defer mt.mu.Unlock()
	if mt.closed {
		return nil
	}
	mt.logger.Info("run complete", zap.Time("completed", time.Now()))
	mt.closed = true
	_ = mt.logger.Sync()
	return mt.file.Close()
}
