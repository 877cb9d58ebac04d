package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ftse_backend/internal/feature/signal/domain"
	"ftse_backend/internal/feature/signal/domain/entity"
)

func TestHistoryUsecase_List(t *testing.T) {
	t.Parallel()

	t.Run("applies defaults and passes filters through", func(t *testing.T) {
		t.Parallel()

		store := &mockPredictionRepository{ListFunc: func(context.Context, entity.PredictionQuery) ([]entity.Prediction, error) {
			return []entity.Prediction{{ID: "a"}, {ID: "b"}}, nil
		}}
		start, end := date("2024-01-01"), date("2024-01-31")

		got, err := NewHistoryUsecase(store).List(context.Background(), HistoryQuery{
			UserID: "user-1",
			By:     entity.OrderByPredictionFor,
			Desc:   true,
			Start:  &start,
			End:    &end,
			Offset: 10,
		})
		require.NoError(t, err)
		assert.Len(t, got, 2)

		q := store.ListQueries[0]
		assert.Equal(t, "user-1", q.UserID)
		assert.Equal(t, entity.OrderByPredictionFor, q.By)
		assert.True(t, q.Desc)
		assert.Equal(t, &start, q.From)
		assert.Equal(t, &end, q.To)
		assert.Equal(t, DefaultHistoryLimit, q.Limit)
		assert.Equal(t, 10, q.Offset)
		assert.False(t, q.MissingActual)
	})

	t.Run("unknown order column falls back to generated_at", func(t *testing.T) {
		t.Parallel()

		store := &mockPredictionRepository{ListFunc: func(context.Context, entity.PredictionQuery) ([]entity.Prediction, error) {
			return nil, nil
		}}
		_, err := NewHistoryUsecase(store).List(context.Background(), HistoryQuery{By: entity.OrderBy("window_end"), Limit: 5})
		require.NoError(t, err)
		assert.Equal(t, entity.OrderByGeneratedAt, store.ListQueries[0].By)
		assert.Equal(t, 5, store.ListQueries[0].Limit)
	})

	t.Run("invalid paging", func(t *testing.T) {
		t.Parallel()

		store := &mockPredictionRepository{}
		uc := NewHistoryUsecase(store)

		_, err := uc.List(context.Background(), HistoryQuery{Limit: MaxHistoryLimit + 1})
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)

		_, err = uc.List(context.Background(), HistoryQuery{Limit: -1})
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)

		_, err = uc.List(context.Background(), HistoryQuery{Offset: -1})
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		assert.Empty(t, store.ListQueries)
	})

	t.Run("store not configured", func(t *testing.T) {
		t.Parallel()

		_, err := NewHistoryUsecase(nil).List(context.Background(), HistoryQuery{})
		assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	})
}

func TestHistoryUsecase_Get(t *testing.T) {
	t.Parallel()

	store := &mockPredictionRepository{FindByIDFunc: func(_ context.Context, id, userID string) (entity.Prediction, error) {
		if id == "known" && userID == "user-1" {
			return entity.Prediction{ID: id, UserID: userID}, nil
		}
		return entity.Prediction{}, domain.ErrPredictionNotFound
	}}
	uc := NewHistoryUsecase(store)

	got, err := uc.Get(context.Background(), "user-1", "known")
	require.NoError(t, err)
	assert.Equal(t, "known", got.ID)

	_, err = uc.Get(context.Background(), "user-2", "known")
	assert.ErrorIs(t, err, domain.ErrPredictionNotFound)

	_, err = NewHistoryUsecase(nil).Get(context.Background(), "", "known")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}
