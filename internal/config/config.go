package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"

	"tictactoe/internal/engine"
)

// Config 本地服务的运行参数。优先级：命令行 > 环境变量 > YAML 文件 > 默认值。
type Config struct {
	Addr           string   `yaml:"addr"`
	WebDir         string   `yaml:"web_dir"`
	SettingsPath   string   `yaml:"settings_path"`
	CacheLimit     int      `yaml:"cache_limit"`
	Development    bool     `yaml:"development"`
	AIPacing       bool     `yaml:"ai_pacing"`
	OpenBrowser    bool     `yaml:"open_browser"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

func Default() Config {
	return Config{
		Addr:         ":2888",
		WebDir:       "./web",
		SettingsPath: "settings.yaml",
		CacheLimit:   engine.DefaultCacheLimit,
		OpenBrowser:  true,
	}
}

// LoadFile 在 base 上叠加 YAML 文件里出现的字段
func LoadFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read config: %w", err)
	}
	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return base, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv 用 TTT_* 环境变量覆盖；PORT 只在 TTT_ADDR 没设时生效
func ApplyEnv(cfg Config, getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv("TTT_ADDR"); v != "" {
		cfg.Addr = v
	} else if v := getenv("PORT"); v != "" {
		cfg.Addr = ":" + v
	}
	if v := getenv("TTT_WEB_DIR"); v != "" {
		cfg.WebDir = v
	}
	if v := getenv("TTT_SETTINGS"); v != "" {
		cfg.SettingsPath = v
	}
	if v := getenv("TTT_CACHE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("TTT_CACHE_LIMIT: %w", err)
		}
		cfg.CacheLimit = n
	}
	for name, dst := range map[string]*bool{
		"TTT_DEV":          &cfg.Development,
		"TTT_AI_PACING":    &cfg.AIPacing,
		"TTT_OPEN_BROWSER": &cfg.OpenBrowser,
	} {
		v := getenv(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", name, err)
		}
		*dst = b
	}
	if v := getenv("TTT_ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitList(v)
	}
	return cfg, nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Load 解析命令行：先看 -config 指向的文件，再叠环境变量，最后是显式给出的 flag。
func Load(fs *flag.FlagSet, args []string, getenv func(string) string) (Config, error) {
	def := Default()

	configPath := fs.String("config", "", "optional YAML config file")
	addr := fs.String("addr", def.Addr, "listen address")
	webDir := fs.String("web", def.WebDir, "directory with index.html / js / css")
	settingsPath := fs.String("settings", def.SettingsPath, "YAML file for user settings (empty = in memory)")
	cacheLimit := fs.Int("cache", def.CacheLimit, "AI transposition table entry limit")
	dev := fs.Bool("dev", def.Development, "development logging")
	pacing := fs.Bool("pacing", def.AIPacing, "delay AI replies on the websocket like a human opponent")
	openBrowser := fs.Bool("open", def.OpenBrowser, "open the default browser on start")
	origins := fs.String("origins", "", "comma separated websocket origins (empty = any)")

	if err := fs.Parse(args); err != nil {
		return def, err
	}

	cfg := def
	if *configPath != "" {
		var err error
		if cfg, err = LoadFile(*configPath, cfg); err != nil {
			return def, err
		}
	}
	cfg, err := ApplyEnv(cfg, getenv)
	if err != nil {
		return def, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = *addr
		case "web":
			cfg.WebDir = *webDir
		case "settings":
			cfg.SettingsPath = *settingsPath
		case "cache":
			cfg.CacheLimit = *cacheLimit
		case "dev":
			cfg.Development = *dev
		case "pacing":
			cfg.AIPacing = *pacing
		case "open":
			cfg.OpenBrowser = *openBrowser
		case "origins":
			cfg.AllowedOrigins = splitList(*origins)
		}
	})

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if c.CacheLimit < 0 {
		errs = append(errs, fmt.Errorf("cache_limit must be >= 0, got %d", c.CacheLimit))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
