package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// Settings controls how the bot picks its moves.
type Settings struct {
	MoveTimeMs   int  `json:"move_time_ms"`
	MinDepth     int  `json:"min_depth"`
	MaxDepth     int  `json:"max_depth"`
	QuiesceDepth int  `json:"quiesce_depth"`
	UseBook      bool `json:"use_book"`
	LogInfo      bool `json:"log_info"`
	// FixedDepth > 0 searches exactly that depth and ignores the clock.
	FixedDepth int `json:"fixed_depth"`
	// HashMB > 0 enables a transposition table of that size.
	HashMB        int  `json:"hash_mb"`
	PrintCutStats bool `json:"print_cut_stats"`
}

var ErrInvalidSettings = errors.New("invalid settings")

func DefaultSettings() Settings {
	return Settings{
		MoveTimeMs:   500,
		MinDepth:     3,
		MaxDepth:     5,
		QuiesceDepth: 10,
		UseBook:      true,
		LogInfo:      true,
		FixedDepth:   0,
		HashMB:       0,
	}
}

func (s Settings) MoveTime() time.Duration {
	return time.Duration(s.MoveTimeMs) * time.Millisecond
}

func (s Settings) Validate() error {
	switch {
	case s.MoveTimeMs < 0:
		return fmt.Errorf("%w: move_time_ms %d", ErrInvalidSettings, s.MoveTimeMs)
	case s.MinDepth < 1:
		return fmt.Errorf("%w: min_depth %d", ErrInvalidSettings, s.MinDepth)
	case s.MaxDepth < s.MinDepth:
		return fmt.Errorf("%w: max_depth %d below min_depth %d", ErrInvalidSettings, s.MaxDepth, s.MinDepth)
	case s.QuiesceDepth < 0:
		return fmt.Errorf("%w: quiesce_depth %d", ErrInvalidSettings, s.QuiesceDepth)
	case s.FixedDepth < 0:
		return fmt.Errorf("%w: fixed_depth %d", ErrInvalidSettings, s.FixedDepth)
	case s.HashMB < 0:
		return fmt.Errorf("%w: hash_mb %d", ErrInvalidSettings, s.HashMB)
	}
	return nil
}

// LoadSettings reads a JSON settings file on top of DefaultSettings, so a
// file only needs the fields it changes.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	data, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	return s, s.Validate()
}
