package store

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"ftse_backend/internal/feature/signal/domain"
	"ftse_backend/internal/feature/signal/domain/entity"
	"ftse_backend/internal/shared/tradingday"
)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	// :memory: は接続ごとに別のDBになるため1接続に固定する
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&PredictionModel{}), "failed to migrate table")
	return db
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := tradingday.Parse(s)
	require.NoError(t, err)
	return d
}

func f64(v float64) *float64 { return &v }

// seedPrediction は generatedAt を指定してレコードを保存します。
func seedPrediction(t *testing.T, repo *predictionStore, generatedAt time.Time, p entity.Prediction) entity.Prediction {
	t.Helper()

	repo.now = func() time.Time { return generatedAt }
	saved, err := repo.Insert(context.Background(), p)
	require.NoError(t, err, "failed to seed prediction")
	return saved
}

func newPrediction(t *testing.T, user, windowEnd string) entity.Prediction {
	t.Helper()

	end := date(t, windowEnd)
	return entity.Prediction{
		UserID:         user,
		WindowStart:    end.AddDate(0, 0, -84),
		WindowEnd:      end,
		PredictionFor:  tradingday.Next(end),
		LastClose:      f64(7650),
		PredictedClose: f64(7680),
		Direction:      entity.DirectionUp,
		BandLower:      7573.5,
		BandUpper:      7726.5,
		Signal:         entity.SignalNoTrade,
		ModelVersion:   "lstm_h5_v1",
		ScalerVersion:  "minmax_v1",
		TickerUsed:     "^FTSE",
	}
}

func TestNewPredictionStore(t *testing.T) {
	db := setupTestDB(t)

	repo := NewPredictionStore(db)

	assert.NotNil(t, repo)
	assert.NotNil(t, repo.db)
	assert.NotNil(t, repo.now)
}

func TestPredictionStore_Insert(t *testing.T) {
	t.Parallel()

	repo := NewPredictionStore(setupTestDB(t))
	generated := time.Date(2024, 1, 5, 21, 30, 0, 0, time.UTC)

	in := newPrediction(t, "user-1", "2024-01-05")
	in.ID = "ignored"
	saved := seedPrediction(t, repo, generated, in)

	_, err := uuid.Parse(saved.ID)
	require.NoError(t, err, "id must be a uuid")
	assert.True(t, saved.GeneratedAt.Equal(generated))
	assert.Equal(t, "2024-01-08", tradingday.Key(saved.PredictionFor))
	assert.False(t, saved.IsReconciled())

	got, err := repo.FindByID(context.Background(), saved.ID, "")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, "2024-01-05", tradingday.Key(got.WindowEnd))
	assert.Equal(t, "2024-01-08", tradingday.Key(got.PredictionFor))
	assert.Equal(t, entity.DirectionUp, got.Direction)
	assert.Equal(t, entity.SignalNoTrade, got.Signal)
	require.NotNil(t, got.PredictedClose)
	assert.InDelta(t, 7680.0, *got.PredictedClose, 1e-9)
	assert.Nil(t, got.ActualClose)
	assert.Nil(t, got.DirectionHit)
}

func TestPredictionStore_List(t *testing.T) {
	t.Parallel()

	repo := NewPredictionStore(setupTestDB(t))
	ctx := context.Background()

	a := seedPrediction(t, repo, time.Date(2024, 1, 3, 21, 0, 0, 0, time.UTC), newPrediction(t, "user-1", "2024-01-03"))
	b := seedPrediction(t, repo, time.Date(2024, 1, 4, 21, 0, 0, 0, time.UTC), newPrediction(t, "user-1", "2024-01-04"))
	c := seedPrediction(t, repo, time.Date(2024, 1, 5, 21, 0, 0, 0, time.UTC), newPrediction(t, "user-2", "2024-01-05"))
	require.NoError(t, repo.Update(ctx, a.ID, entity.PredictionPatch{
		Reconciliation: entity.Reconciliation{ActualClose: f64(7700)},
	}))

	ids := func(ps []entity.Prediction) []string {
		out := make([]string, len(ps))
		for i, p := range ps {
			out[i] = p.ID
		}
		return out
	}
	day := func(s string) *time.Time {
		d := date(t, s)
		return &d
	}

	tests := []struct {
		name  string
		query entity.PredictionQuery
		want  []string
	}{
		{"all by generated_at", entity.PredictionQuery{}, []string{a.ID, b.ID, c.ID}},
		{"descending", entity.PredictionQuery{By: entity.OrderByPredictionFor, Desc: true}, []string{c.ID, b.ID, a.ID}},
		{"owner filter", entity.PredictionQuery{UserID: "user-1"}, []string{a.ID, b.ID}},
		{"missing actual", entity.PredictionQuery{MissingActual: true}, []string{b.ID, c.ID}},
		{"has actual", entity.PredictionQuery{HasActual: true}, []string{a.ID}},
		{"prediction_for range is inclusive", entity.PredictionQuery{By: entity.OrderByPredictionFor, From: day("2024-01-05"), To: day("2024-01-05")}, []string{b.ID}},
		{"generated_at end covers the whole day", entity.PredictionQuery{To: day("2024-01-04")}, []string{a.ID, b.ID}},
		{"window_end from", entity.PredictionQuery{By: entity.OrderByWindowEnd, From: day("2024-01-04")}, []string{b.ID, c.ID}},
		{"limit and offset", entity.PredictionQuery{Limit: 1, Offset: 1}, []string{b.ID}},
		{"unknown column falls back", entity.PredictionQuery{By: "signal"}, []string{a.ID, b.ID, c.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestPredictionStore_FindByID(t *testing.T) {
	t.Parallel()

	repo := NewPredictionStore(setupTestDB(t))
	saved := seedPrediction(t, repo, time.Now(), newPrediction(t, "user-1", "2024-01-05"))

	tests := []struct {
		name    string
		id      string
		userID  string
		wantErr error
	}{
		{name: "owner", id: saved.ID, userID: "user-1"},
		{name: "any owner", id: saved.ID},
		{name: "other owner", id: saved.ID, userID: "user-2", wantErr: domain.ErrPredictionNotFound},
		{name: "unknown id", id: uuid.NewString(), wantErr: domain.ErrPredictionNotFound},
		{name: "malformed id", id: "not-a-uuid", wantErr: domain.ErrPredictionNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.FindByID(context.Background(), tt.id, tt.userID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, saved.ID, got.ID)
		})
	}
}

func TestPredictionStore_Update(t *testing.T) {
	t.Parallel()

	repo := NewPredictionStore(setupTestDB(t))
	ctx := context.Background()

	// window_end と prediction_for が同じ日になっている古いレコード
	bad := newPrediction(t, "", "2024-01-05")
	bad.PredictionFor = bad.WindowEnd
	saved := seedPrediction(t, repo, time.Now(), bad)

	hit := true
	require.NoError(t, repo.Update(ctx, saved.ID, entity.PredictionPatch{
		Reconciliation: entity.Reconciliation{
			ActualClose:  f64(7700),
			AbsError:     f64(20),
			PctError:     f64(20.0 / 7700),
			DirectionHit: &hit,
		},
	}))

	got, err := repo.FindByID(ctx, saved.ID, "")
	require.NoError(t, err)
	require.True(t, got.IsReconciled())
	assert.InDelta(t, 7700.0, *got.ActualClose, 1e-9)
	assert.InDelta(t, 20.0, *got.AbsError, 1e-9)
	assert.True(t, *got.DirectionHit)
	assert.Equal(t, "2024-01-05", tradingday.Key(got.PredictionFor))

	next := date(t, "2024-01-08")
	require.NoError(t, repo.Update(ctx, saved.ID, entity.PredictionPatch{PredictionFor: &next}))

	got, err = repo.FindByID(ctx, saved.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-08", tradingday.Key(got.PredictionFor))
	assert.Nil(t, got.ActualClose)
	assert.Nil(t, got.AbsError)
	assert.Nil(t, got.PctError)
	assert.Nil(t, got.DirectionHit)

	err = repo.Update(ctx, uuid.NewString(), entity.PredictionPatch{})
	assert.ErrorIs(t, err, domain.ErrPredictionNotFound)
}

func TestPredictionStore_Ping(t *testing.T) {
	t.Parallel()

	repo := NewPredictionStore(setupTestDB(t))
	assert.NoError(t, repo.Ping(context.Background()))
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"record not found", gorm.ErrRecordNotFound, domain.ErrPredictionNotFound},
		{"rejected statement", &pgconn.PgError{Code: "23502", Message: "null value"}, domain.ErrStoreRequestFailed},
		{"network", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, domain.ErrStoreUnavailable},
		{"deadline", context.DeadlineExceeded, domain.ErrStoreUnavailable},
		{"other", errors.New("boom"), domain.ErrStoreRequestFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, classify(tt.err), tt.want)
		})
	}
	assert.NoError(t, classify(nil))
}
