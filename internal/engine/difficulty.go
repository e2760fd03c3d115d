package engine

import (
	"errors"
	"fmt"
	"strings"
)

type Difficulty int8

const (
	Easy Difficulty = iota
	Medium
	Hard
)

var ErrUnknownDifficulty = errors.New("unknown difficulty")

func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return Easy, nil
	case "medium":
		return Medium, nil
	case "hard":
		return Hard, nil
	}
	return Easy, fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
}

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	}
	return fmt.Sprintf("difficulty(%d)", int8(d))
}

func (d Difficulty) MarshalText() ([]byte, error) {
	switch d {
	case Easy, Medium, Hard:
		return []byte(d.String()), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownDifficulty, int8(d))
}

func (d *Difficulty) UnmarshalText(b []byte) error {
	v, err := ParseDifficulty(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// MaxDepth 各难度在不同尺寸下的搜索深度上限
func (d Difficulty) MaxDepth(size int) int {
	switch d {
	case Medium:
		return mediumDepth
	case Hard:
		switch size {
		case 3:
			return 9
		case 4:
			return 6
		default:
			return 4
		}
	}
	return 0
}
