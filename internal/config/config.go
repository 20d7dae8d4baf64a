package config

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. WASMADD_MODULE_BASE_URL.
const EnvPrefix = "WASMADD"

// DefaultModulePath is where the build places the add module.
const DefaultModulePath = "target/wasm32-unknown-unknown/debug/add.wasm"

type Config struct {
	LogLevel string       `mapstructure:"log_level"`
	Repeat   int          `mapstructure:"repeat"`
	Prompt   PromptConfig `mapstructure:"prompt"`
	Page     PageConfig   `mapstructure:"page"`
	Module   ModuleConfig `mapstructure:"module"`
	Wasm     WasmConfig   `mapstructure:"wasm"`
	Serve    ServeConfig  `mapstructure:"serve"`
}

// PromptConfig selects how operands are read.
type PromptConfig struct {
	// auto, line or tui.
	Mode string `mapstructure:"mode"`
}

// PageConfig locates the HTML page results are appended to.
type PageConfig struct {
	// Empty keeps the page in memory only.
	Path  string `mapstructure:"path"`
	Title string `mapstructure:"title"`
}

// ModuleConfig locates the Wasm module and names its export.
type ModuleConfig struct {
	// When set, Path is fetched over HTTP relative to this URL.
	BaseURL string `mapstructure:"base_url"`
	Path    string `mapstructure:"path"`
	// Expected hex sha256 of the module. Empty skips the check.
	SHA256 string `mapstructure:"sha256"`
	// Directory holding a manifest.yaml. Overrides Path and the export signature.
	Manifest string `mapstructure:"manifest"`
	Export   string `mapstructure:"export"`
}

// WasmConfig holds Wasm runtime configuration.
type WasmConfig struct {
	// Memory limit per module (in pages, 64KB each).
	MemoryPages uint32 `mapstructure:"memory_pages"`
	// Enable debug logging.
	Debug bool `mapstructure:"debug"`
	// Compilation cache directory.
	CacheDir string `mapstructure:"cache_dir"`
	// Maximum concurrent instances.
	MaxInstances int `mapstructure:"max_instances"`
	// Module execution timeout (seconds).
	ExecutionTimeout int `mapstructure:"execution_timeout"`
}

// ServeConfig configures the static file server.
type ServeConfig struct {
	Addr string `mapstructure:"addr"`
	Root string `mapstructure:"root"`
	// Stop after this many requests. 0 serves until shutdown.
	MaxRequests int64 `mapstructure:"max_requests"`
}

// flagBindings maps config keys to the command-line flags that override them.
var flagBindings = map[string]string{
	"log_level":              "log-level",
	"repeat":                 "repeat",
	"prompt.mode":            "prompt",
	"page.path":              "page",
	"page.title":             "title",
	"module.base_url":        "base-url",
	"module.path":            "module",
	"module.sha256":          "sha256",
	"module.manifest":        "manifest",
	"module.export":          "export",
	"wasm.debug":             "wasm-debug",
	"wasm.cache_dir":         "cache-dir",
	"wasm.execution_timeout": "timeout",
	"serve.addr":             "addr",
	"serve.root":             "root",
	"serve.max_requests":     "max-requests",
}

// Load reads configuration from defaults, an optional file, the
// environment and flags, in increasing order of precedence. flags may be nil.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("log_level", "info")
	v.SetDefault("repeat", 1)
	v.SetDefault("prompt.mode", "auto")
	v.SetDefault("page.path", "index.html")
	v.SetDefault("page.title", "")
	v.SetDefault("module.base_url", "")
	v.SetDefault("module.path", DefaultModulePath)
	v.SetDefault("module.sha256", "")
	v.SetDefault("module.manifest", "")
	v.SetDefault("module.export", "add")

	// Wasm defaults
	v.SetDefault("wasm.memory_pages", 256) // 16MB
	v.SetDefault("wasm.debug", false)
	v.SetDefault("wasm.cache_dir", "")
	v.SetDefault("wasm.max_instances", 100)
	v.SetDefault("wasm.execution_timeout", 30)

	// Server defaults
	v.SetDefault("serve.addr", "127.0.0.1:8080")
	v.SetDefault("serve.root", ".")
	v.SetDefault("serve.max_requests", 0)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range flagBindings {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
