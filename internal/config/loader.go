package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// DefaultURLTable 是 URL 表的默认文件名，相对配置文件所在目录解析。
const DefaultURLTable = "dropbox.urls.yaml"

// Load 读取并解析 TOML 配置文件，同时注入默认值与校验逻辑。
func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.toml"
	}

	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		durationDecodeHook(),
	))); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := applyGlobalDefaults(&cfg.Global); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := resolvePaths(&cfg.Global, path); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ListenPort", 5000)
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFilePath", "")
	v.SetDefault("LogMaxSize", 100)
	v.SetDefault("LogMaxBackups", 10)
	v.SetDefault("LogCompress", true)
	v.SetDefault("CacheDir", "")
	v.SetDefault("URLTable", DefaultURLTable)
	v.SetDefault("Downloader", DownloaderHTTP)
	v.SetDefault("WgetPath", "wget")
	v.SetDefault("DownloadTimeout", "0")
}

func applyGlobalDefaults(g *GlobalConfig) error {
	if g.ListenPort == 0 {
		g.ListenPort = 5000
	}
	g.Downloader = strings.ToLower(strings.TrimSpace(g.Downloader))
	if g.Downloader == "" {
		g.Downloader = DownloaderHTTP
	}
	if strings.TrimSpace(g.WgetPath) == "" {
		g.WgetPath = "wget"
	}
	if strings.TrimSpace(g.URLTable) == "" {
		g.URLTable = DefaultURLTable
	}
	if strings.TrimSpace(g.CacheDir) == "" {
		dir, err := DefaultCacheDir()
		if err != nil {
			return err
		}
		g.CacheDir = dir
	}
	return nil
}

// DefaultCacheDir 返回用户缓存目录下的 resfetch/downloads。
func DefaultCacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("无法定位用户缓存目录: %w", err)
	}
	return filepath.Join(base, "resfetch", "downloads"), nil
}

// resolvePaths 将 URL 表按配置文件目录解析为绝对路径，缓存目录按工作目录解析。
func resolvePaths(g *GlobalConfig, configPath string) error {
	absCache, err := filepath.Abs(g.CacheDir)
	if err != nil {
		return fmt.Errorf("无法解析缓存目录: %w", err)
	}
	g.CacheDir = absCache

	table := g.URLTable
	if !filepath.IsAbs(table) {
		table = filepath.Join(filepath.Dir(configPath), table)
	}
	absTable, err := filepath.Abs(table)
	if err != nil {
		return fmt.Errorf("无法解析 URL 表路径: %w", err)
	}
	g.URLTable = absTable
	return nil
}

// durationDecodeHook 处理 TOML 中的数字秒值；字符串由 Duration.UnmarshalText 解析。
func durationDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(Duration(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case *Duration:
			return *v, nil
		case int:
			return Duration(time.Duration(v) * time.Second), nil
		case int64:
			return Duration(time.Duration(v) * time.Second), nil
		case float64:
			return Duration(time.Duration(v * float64(time.Second))), nil
		case time.Duration:
			return Duration(v), nil
		case Duration:
			return v, nil
		default:
			return nil, fmt.Errorf("不支持的 Duration 类型: %T", v)
		}
	}
}
