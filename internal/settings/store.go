package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v2"
)

type Store interface {
	Load() (Settings, error)
	Save(p Patch) (Settings, error)
}

// 磁盘上的格式：新键名之外还认旧版本的键
type fileSettings struct {
	Patch `yaml:",inline"`

	LegacyMusicEnabled    *bool `yaml:"musicEnabled,omitempty"`
	LegacySoundEnabled    *bool `yaml:"soundEnabled,omitempty"`
	LegacyAudioAlertShown *bool `yaml:"audioAlertShown,omitempty"`
	LegacyIntroShown      *bool `yaml:"introShown,omitempty"`
}

func (f fileSettings) hasLegacy() bool {
	return f.LegacyMusicEnabled != nil || f.LegacySoundEnabled != nil ||
		f.LegacyAudioAlertShown != nil || f.LegacyIntroShown != nil
}

// FileStore 把设置存成 YAML 文件，写入走临时文件 + rename
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *FileStore) Save(p Patch) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.load()
	if err != nil {
		return cur, err
	}
	next, err := cur.Apply(p)
	if err != nil {
		return cur, err
	}
	if err := s.write(next); err != nil {
		return cur, err
	}
	return next, nil
}

func (s *FileStore) load() (Settings, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Defaults(), nil
	}
	if err != nil {
		return Defaults(), fmt.Errorf("read settings: %w", err)
	}

	var raw fileSettings
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Defaults(), fmt.Errorf("parse settings %s: %w", s.path, err)
	}

	// 旧键只在新键缺失时生效
	p := raw.Patch
	if p.MusicEnabled == nil {
		p.MusicEnabled = raw.LegacyMusicEnabled
	}
	if p.SoundEnabled == nil {
		p.SoundEnabled = raw.LegacySoundEnabled
	}
	if p.AudioAlertShown == nil {
		p.AudioAlertShown = raw.LegacyAudioAlertShown
	}
	if p.IntroShown == nil {
		p.IntroShown = raw.LegacyIntroShown
	}

	out := normalize(Defaults(), p)
	if raw.hasLegacy() {
		if err := s.write(out); err != nil {
			return out, err
		}
	}
	return out, nil
}

// normalize 逐字段合并，非法的难度或尺寸丢弃，保留默认值
func normalize(base Settings, p Patch) Settings {
	difficulty, grid := p.Difficulty, p.GridSize
	p.Difficulty, p.GridSize = nil, nil
	out, _ := base.Apply(p)

	if difficulty != nil {
		if next, err := out.Apply(Patch{Difficulty: difficulty}); err == nil {
			out = next
		}
	}
	if grid != nil {
		if next, err := out.Apply(Patch{GridSize: grid}); err == nil {
			out = next
		}
	}
	return out
}

func (s *FileStore) write(v Settings) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".settings-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp settings: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}

// MemoryStore 只在内存里，测试和没有配置文件路径时用
type MemoryStore struct {
	mu sync.Mutex
	v  Settings
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{v: Defaults()}
}

func (m *MemoryStore) Load() (Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.v, nil
}

func (m *MemoryStore) Save(p Patch) (Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next, err := m.v.Apply(p)
	if err != nil {
		return m.v, err
	}
	m.v = next
	return next, nil
}
