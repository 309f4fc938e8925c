package forecast

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrNoArtifact is returned when no saved model exists for a ticker.
var ErrNoArtifact = errors.New("no saved model")

// LSTMArtifact is a trained network with everything inference needs.
type LSTMArtifact struct {
	Ticker         string       `json:"ticker"`
	Config         LSTMConfig   `json:"config"`
	Scaler         MinMaxScaler `json:"scaler"`
	Network        *LSTMNetwork `json:"network"`
	TrainedThrough time.Time    `json:"trained_through"`
	TrainedAt      time.Time    `json:"trained_at"`
	Samples        int          `json:"samples"`
	Loss           float64      `json:"loss"`
}

// ArtifactStore persists fitted models keyed by ticker. Saving overwrites.
type ArtifactStore interface {
	SaveARIMA(ticker string, m *ARIMAModel) error
	SaveLSTM(ticker string, a *LSTMArtifact) error
	LoadLSTM(ticker string) (*LSTMArtifact, error)
}

// FileStore writes artifacts as JSON files under Dir.
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create model dir: %w", err)
	}
	return &FileStore{Dir: dir}, nil
}

func (s *FileStore) ARIMAPath(ticker string) string {
	return filepath.Join(s.Dir, strings.ToUpper(ticker)+"_arima_model.json")
}

func (s *FileStore) LSTMPath(ticker string) string {
	return filepath.Join(s.Dir, "lstm_"+strings.ToUpper(ticker)+".json")
}

func (s *FileStore) SaveARIMA(ticker string, m *ARIMAModel) error {
	return writeJSON(s.ARIMAPath(ticker), m)
}

func (s *FileStore) SaveLSTM(ticker string, a *LSTMArtifact) error {
	return writeJSON(s.LSTMPath(ticker), a)
}

func (s *FileStore) LoadLSTM(ticker string) (*LSTMArtifact, error) {
	raw, err := os.ReadFile(s.LSTMPath(ticker))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoArtifact
	}
	if err != nil {
		return nil, fmt.Errorf("read lstm artifact: %w", err)
	}
	var a LSTMArtifact
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("decode lstm artifact: %w", err)
	}
	if a.Network == nil || len(a.Network.Layers) != 2 {
		return nil, fmt.Errorf("decode lstm artifact: malformed network")
	}
	return &a, nil
}

// writeJSON replaces path atomically so readers never see a partial file.
func writeJSON(path string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".artifact-*")
	if err != nil {
		return fmt.Errorf("create artifact: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write artifact: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
