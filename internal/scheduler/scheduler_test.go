package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ftse_backend/internal/feature/signal/domain/entity"
	"ftse_backend/internal/feature/signal/usecase"
)

type mockPredictor struct {
	err     error
	userIDs []string
}

func (m *mockPredictor) Predict(_ context.Context, userID string) (entity.Prediction, error) {
	m.userIDs = append(m.userIDs, userID)
	if m.err != nil {
		return entity.Prediction{}, m.err
	}
	return entity.Prediction{ID: "p1", PredictionFor: time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), Signal: entity.SignalLong}, nil
}

type mockReconciler struct {
	err    error
	params []usecase.ReconcileParams
}

func (m *mockReconciler) Reconcile(_ context.Context, p usecase.ReconcileParams) (usecase.ReconcileResult, error) {
	m.params = append(m.params, p)
	if m.err != nil {
		return usecase.ReconcileResult{}, m.err
	}
	return usecase.ReconcileResult{Updated: 2}, nil
}

func TestScheduler_Register(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cfg      Config
		wantJobs int
		wantErr  bool
	}{
		{"nothing configured", Config{}, 0, false},
		{"both jobs", Config{PredictSpec: "30 18 * * 1-5", ReconcileSpec: "0 7 * * 1-5"}, 2, false},
		{"predict only", Config{PredictSpec: "@daily"}, 1, false},
		{"invalid spec", Config{ReconcileSpec: "every tuesday"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := New(context.Background(), &mockPredictor{}, &mockReconciler{}, nil)
			err := s.Register(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantJobs, s.Jobs())
		})
	}
}

func TestScheduler_RunPredict(t *testing.T) {
	t.Parallel()

	p := &mockPredictor{}
	s := New(context.Background(), p, &mockReconciler{}, nil)
	s.RunPredict()
	assert.Equal(t, []string{""}, p.userIDs)

	// 失敗してもパニックしない
	p.err = errors.New("oracle down")
	s.RunPredict()
	assert.Len(t, p.userIDs, 2)
}

func TestScheduler_RunReconcile_InvalidatesCacheFirst(t *testing.T) {
	t.Parallel()

	var order []string
	r := &mockReconciler{}
	invalidate := func(context.Context) error {
		order = append(order, "invalidate")
		return errors.New("redis down")
	}
	s := New(context.Background(), &mockPredictor{}, r, invalidate)
	s.RunReconcile()

	assert.Equal(t, []string{"invalidate"}, order)
	// キャッシュ破棄の失敗は突合を止めない
	require.Len(t, r.params, 1)
	assert.Equal(t, usecase.ReconcileParams{}, r.params[0])
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("SCHEDULE_PREDICT", "30 18 * * 1-5")
	t.Setenv("SCHEDULE_RECONCILE", "")

	cfg := LoadConfig()
	assert.True(t, cfg.Enabled())
	assert.Equal(t, "30 18 * * 1-5", cfg.PredictSpec)
	assert.False(t, Config{}.Enabled())
}

func TestScheduler_StartStop(t *testing.T) {
	t.Parallel()

	s := New(context.Background(), &mockPredictor{}, &mockReconciler{}, nil)
	require.NoError(t, s.Register(Config{PredictSpec: "@daily"}))
	s.Start()
	s.Stop()
}
