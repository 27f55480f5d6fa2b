package usecase

import (
	"time"

	"go.uber.org/zap"

	"github.com/user/skillgen-service/pkg/metrics"
)

// run tracks one pipeline invocation through its states.
type run struct {
	state      State
	stageStart time.Time
	started    time.Time
	logger     *zap.Logger
}

func (uc *skillGeneratorUseCase) newRun(fields ...zap.Field) *run {
	now := time.Now()
	return &run{
		state:      StateIdle,
		stageStart: now,
		started:    now,
		logger:     uc.logger.With(fields...),
	}
}

// enter moves the run to the next state and closes the timing of the previous one.
func (r *run) enter(next State) {
	r.closeStage()
	r.state = next
	r.stageStart = time.Now()
	r.logger.Debug("Pipeline stage started", zap.String("stage", string(next)))
}

func (r *run) closeStage() {
	if r.state == StateIdle || r.state == StateSucceeded || r.state == StateFailed {
		return
	}
	metrics.StageDuration.WithLabelValues(string(r.state)).Observe(time.Since(r.stageStart).Seconds())
}

// fail records err against the current stage and ends the run.
func (r *run) fail(err *PipelineError) error {
	err.Stage = r.state
	r.closeStage()
	r.state = StateFailed
	metrics.RunsTotal.WithLabelValues(string(err.Kind)).Inc()
	r.logger.Warn("Skill generation failed",
		zap.String("kind", string(err.Kind)),
		zap.String("stage", string(err.Stage)),
		zap.Duration("elapsed", time.Since(r.started)),
		zap.Error(err),
	)
	return err
}

func (r *run) succeed(fields ...zap.Field) {
	r.closeStage()
	r.state = StateSucceeded
	metrics.RunsTotal.WithLabelValues(string(StateSucceeded)).Inc()
	r.logger.Info("Skill generation succeeded", append(fields, zap.Duration("elapsed", time.Since(r.started)))...)
}
