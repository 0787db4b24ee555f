package storage

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/shard-legends/squad-planner-service/internal/models"
)

// SnapshotRepository stores the planner snapshot and the move confirmation
// preference under two keys of a KeyValueStore.
type SnapshotRepository struct {
	kv            KeyValueStore
	snapshotKey   string
	preferenceKey string
	timeout       time.Duration
	logger        *zap.Logger
}

// RepositoryConfig names the keys used by SnapshotRepository.
type RepositoryConfig struct {
	SnapshotKey   string
	PreferenceKey string
	Timeout       time.Duration
}

func NewSnapshotRepository(kv KeyValueStore, cfg RepositoryConfig, logger *zap.Logger) *SnapshotRepository {
	return &SnapshotRepository{
		kv:            kv,
		snapshotKey:   cfg.SnapshotKey,
		preferenceKey: cfg.PreferenceKey,
		timeout:       cfg.Timeout,
		logger:        logger,
	}
}

func (r *SnapshotRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

// LoadState returns (nil, nil) when no snapshot has been saved.
func (r *SnapshotRepository) LoadState(ctx context.Context) (*models.AppState, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	raw, found, err := r.kv.Get(ctx, r.snapshotKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load snapshot")
	}
	if !found {
		return nil, nil
	}

	state, err := DecodeSnapshot([]byte(raw), Lenient)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode snapshot")
	}

	r.logger.Debug("Snapshot loaded",
		zap.String("backend", r.kv.Name()),
		zap.String("summary", describe(state)))
	return state, nil
}

func (r *SnapshotRepository) SaveState(ctx context.Context, state *models.AppState) error {
	data, err := EncodeSnapshot(state)
	if err != nil {
		return err
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if err := r.kv.Set(ctx, r.snapshotKey, string(data)); err != nil {
		return errors.Wrap(err, "failed to save snapshot")
	}
	return nil
}

// LoadSkipMoveConfirmation treats anything but a stored "true" as false.
func (r *SnapshotRepository) LoadSkipMoveConfirmation(ctx context.Context) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	raw, found, err := r.kv.Get(ctx, r.preferenceKey)
	if err != nil {
		return false, errors.Wrap(err, "failed to load move confirmation preference")
	}
	if !found {
		return false, nil
	}
	skip, err := strconv.ParseBool(raw)
	if err != nil {
		return false, nil
	}
	return skip, nil
}

func (r *SnapshotRepository) SaveSkipMoveConfirmation(ctx context.Context, skip bool) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if err := r.kv.Set(ctx, r.preferenceKey, strconv.FormatBool(skip)); err != nil {
		return errors.Wrap(err, "failed to save move confirmation preference")
	}
	return nil
}

// Clear removes both the snapshot and the preference.
func (r *SnapshotRepository) Clear(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if err := r.kv.Delete(ctx, r.snapshotKey, r.preferenceKey); err != nil {
		return errors.Wrap(err, "failed to clear stored state")
	}
	return nil
}

func (r *SnapshotRepository) Health(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.kv.Health(ctx)
}

func (r *SnapshotRepository) Backend() string {
	return r.kv.Name()
}
