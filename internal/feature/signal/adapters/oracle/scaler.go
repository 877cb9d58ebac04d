package oracle

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"ftse_backend/internal/feature/signal/domain/entity"
)

// MinMaxScaler は特徴量ごとの最小値・最大値で [0, 1] に正規化します。
// 列の順序は entity.FeatureColumns と同じです。
type MinMaxScaler struct {
	Version string     `yaml:"version"`
	Columns []string   `yaml:"columns"`
	Min     [5]float64 `yaml:"min"`
	Max     [5]float64 `yaml:"max"`
}

// ParseScaler はYAMLからスケーラーを読み込みます。
func ParseScaler(data []byte) (*MinMaxScaler, error) {
	var s MinMaxScaler
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scaler: %w", err)
	}
	if len(s.Columns) > 0 {
		if len(s.Columns) != len(entity.FeatureColumns) {
			return nil, fmt.Errorf("scaler has %d columns, want %d", len(s.Columns), len(entity.FeatureColumns))
		}
		for i, c := range s.Columns {
			if c != entity.FeatureColumns[i] {
				return nil, fmt.Errorf("scaler column %d is %q, want %q", i, c, entity.FeatureColumns[i])
			}
		}
	}
	for i := range s.Min {
		if s.Max[i] < s.Min[i] {
			return nil, fmt.Errorf("scaler column %d: max < min", i)
		}
	}
	return &s, nil
}

func (s *MinMaxScaler) scale(i int) float64 {
	// 幅が0の列は scale=1 として扱う
	if r := s.Max[i] - s.Min[i]; r != 0 {
		return r
	}
	return 1
}

// Transform はウィンドウの各行を正規化します。
func (s *MinMaxScaler) Transform(rows [][5]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for r, row := range rows {
		v := make([]float64, len(row))
		for i, x := range row {
			v[i] = (x - s.Min[i]) / s.scale(i)
		}
		out[r] = v
	}
	return out
}

// InverseClose は正規化された終値を元のスケールに戻します（終値の列のみ）。
func (s *MinMaxScaler) InverseClose(y float64) float64 {
	return y*s.scale(0) + s.Min[0]
}

// scalerLoader はスケーラーを初回利用時に一度だけ読み込みます。
// 読み込みに失敗した場合はキャッシュせず、次の呼び出しで再試行します。
type scalerLoader struct {
	mu     sync.Mutex
	path   string
	read   func(string) ([]byte, error)
	scaler *MinMaxScaler
}

func newScalerLoader(path string) *scalerLoader {
	return &scalerLoader{path: path, read: os.ReadFile}
}

func (l *scalerLoader) Get() (*MinMaxScaler, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.scaler != nil {
		return l.scaler, nil
	}
	if l.path == "" {
		return nil, errors.New("scaler path is not configured")
	}
	data, err := l.read(l.path)
	if err != nil {
		return nil, fmt.Errorf("read scaler: %w", err)
	}
	s, err := ParseScaler(data)
	if err != nil {
		return nil, err
	}
	l.scaler = s
	return s, nil
}
