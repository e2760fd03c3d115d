package settings

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"tictactoe/internal/engine"
	"tictactoe/internal/tictactoe"
)

var ErrInvalidGridSize = errors.New("invalid grid size")

// Settings 用户偏好，键名与网页端本地存储保持一致
type Settings struct {
	Theme           string `yaml:"gameTheme" json:"gameTheme"`
	Language        string `yaml:"gameLanguage" json:"gameLanguage"`
	MusicEnabled    bool   `yaml:"gameMusicEnabled" json:"gameMusicEnabled"`
	SoundEnabled    bool   `yaml:"gameSoundEnabled" json:"gameSoundEnabled"`
	Difficulty      string `yaml:"gameDifficulty" json:"gameDifficulty"`
	GridSize        string `yaml:"gameGridSize" json:"gameGridSize"`
	IntroShown      bool   `yaml:"gameIntroShown" json:"gameIntroShown"`
	AudioAlertShown bool   `yaml:"gameAudioAlertShown" json:"gameAudioAlertShown"`
}

func Defaults() Settings {
	return Settings{
		Theme:           "dark",
		Language:        "en",
		MusicEnabled:    true,
		SoundEnabled:    true,
		Difficulty:      engine.Easy.String(),
		GridSize:        FormatGridSize(tictactoe.MinSize),
		IntroShown:      false,
		AudioAlertShown: false,
	}
}

// Patch 部分更新：nil 字段保持原值
type Patch struct {
	Theme           *string `yaml:"gameTheme,omitempty" json:"gameTheme,omitempty"`
	Language        *string `yaml:"gameLanguage,omitempty" json:"gameLanguage,omitempty"`
	MusicEnabled    *bool   `yaml:"gameMusicEnabled,omitempty" json:"gameMusicEnabled,omitempty"`
	SoundEnabled    *bool   `yaml:"gameSoundEnabled,omitempty" json:"gameSoundEnabled,omitempty"`
	Difficulty      *string `yaml:"gameDifficulty,omitempty" json:"gameDifficulty,omitempty"`
	GridSize        *string `yaml:"gameGridSize,omitempty" json:"gameGridSize,omitempty"`
	IntroShown      *bool   `yaml:"gameIntroShown,omitempty" json:"gameIntroShown,omitempty"`
	AudioAlertShown *bool   `yaml:"gameAudioAlertShown,omitempty" json:"gameAudioAlertShown,omitempty"`
}

// Apply 校验并合并 p。难度规范成小写名字，棋盘尺寸规范成 "NxN"。
func (s Settings) Apply(p Patch) (Settings, error) {
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.Language != nil {
		s.Language = *p.Language
	}
	if p.MusicEnabled != nil {
		s.MusicEnabled = *p.MusicEnabled
	}
	if p.SoundEnabled != nil {
		s.SoundEnabled = *p.SoundEnabled
	}
	if p.Difficulty != nil {
		d, err := engine.ParseDifficulty(*p.Difficulty)
		if err != nil {
			return s, err
		}
		s.Difficulty = d.String()
	}
	if p.GridSize != nil {
		n, err := ParseGridSize(*p.GridSize)
		if err != nil {
			return s, err
		}
		s.GridSize = FormatGridSize(n)
	}
	if p.IntroShown != nil {
		s.IntroShown = *p.IntroShown
	}
	if p.AudioAlertShown != nil {
		s.AudioAlertShown = *p.AudioAlertShown
	}
	return s, nil
}

// Level 解析后的难度；存的值非法时按 easy
func (s Settings) Level() engine.Difficulty {
	d, err := engine.ParseDifficulty(s.Difficulty)
	if err != nil {
		return engine.Easy
	}
	return d
}

// BoardSize 解析后的棋盘边长；存的值非法时按 3
func (s Settings) BoardSize() int {
	n, err := ParseGridSize(s.GridSize)
	if err != nil {
		return tictactoe.MinSize
	}
	return n
}

// ParseGridSize 接受 "5x5"、"5X5" 或 "5"
func ParseGridSize(v string) (int, error) {
	v = strings.TrimSpace(strings.ToLower(v))
	if a, b, ok := strings.Cut(v, "x"); ok {
		if a != b {
			return 0, fmt.Errorf("%w: %q is not square", ErrInvalidGridSize, v)
		}
		v = a
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidGridSize, v)
	}
	if n < tictactoe.MinSize || n > tictactoe.MaxSize {
		return 0, fmt.Errorf("%w: %d (must be 3, 4 or 5)", ErrInvalidGridSize, n)
	}
	return n, nil
}

func FormatGridSize(n int) string {
	return fmt.Sprintf("%dx%d", n, n)
}
