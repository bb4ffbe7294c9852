package topics

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/feedlens/aspect-miner/internal/platform/observability"
)

// State tracks the lifecycle of the shared model.
type State int

const (
	StateAbsent State = iota
	StateTraining
	StateReady
)

func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateTraining:
		return "training"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Repository supplies the training corpus.
type Repository interface {
	GetAllReviewTexts(ctx context.Context) ([]string, error)
}

// Manager owns the model artifact: it loads a persisted model when one
// exists and trains a fresh one otherwise. Inference is safe for
// concurrent use; training holds the write lock.
type Manager struct {
	repo          Repository
	path          string
	topicCount    int
	minSimilarity float64
	logger        *zerolog.Logger

	mu    sync.RWMutex
	state State
	model *Model
}

func NewManager(repo Repository, path string, topicCount int, minSimilarity float64, logger *zerolog.Logger) *Manager {
	return &Manager{
		repo:          repo,
		path:          path,
		topicCount:    topicCount,
		minSimilarity: minSimilarity,
		logger:        logger,
		state:         StateAbsent,
	}
}

// State reports the current lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.state
}

// EnsureReady brings the manager to the ready state. A persisted
// artifact is loaded as-is; otherwise the model is trained on the full
// corpus and persisted. Calling it again once ready is a no-op.
func (m *Manager) EnsureReady(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateReady {
		return nil
	}

	model, err := Load(m.path)
	if err == nil {
		m.model = model
		m.state = StateReady

		m.logger.Info().Str("path", m.path).Int("topics", model.TopicCount()).Msg("loaded topic model")

		return nil
	}

	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load topic model: %w", err)
	}

	return m.trainLocked(ctx)
}

// Retrain discards the current model and fits a new one on the full
// corpus, regardless of any persisted artifact.
func (m *Manager) Retrain(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.trainLocked(ctx)
}

func (m *Manager) trainLocked(ctx context.Context) error {
	m.state = StateTraining

	started := time.Now()

	corpus, err := m.repo.GetAllReviewTexts(ctx)
	if err != nil {
		m.state = StateAbsent

		return fmt.Errorf("load corpus: %w", err)
	}

	model, err := Train(corpus, m.topicCount)
	if err != nil {
		m.state = StateAbsent

		return fmt.Errorf("train topic model: %w", err)
	}

	if err := model.Save(m.path); err != nil {
		m.state = StateAbsent

		return err
	}

	m.model = model
	m.state = StateReady

	elapsed := time.Since(started)
	observability.TopicModelTrainingSeconds.Observe(elapsed.Seconds())

	m.logger.Info().
		Int("docs", len(corpus)).
		Int("topics", model.TopicCount()).
		Dur("elapsed", elapsed).
		Str("path", m.path).
		Msg("trained topic model")

	return nil
}

// Assign maps text to a topic id, its label, and the assignment
// probability. The manager must be ready.
func (m *Manager) Assign(text string) (int, string, float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.state != StateReady || m.model == nil {
		return -1, outlierLabel, 0, ErrNotTrained
	}

	topicID, prob := m.model.Transform(text, m.minSimilarity)

	return topicID, m.model.Label(topicID), prob, nil
}
