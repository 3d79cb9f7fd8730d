package config

import (
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	defaultPath       = "."
	defaultStorageDir = "./data"
	defaultDriver     = "pebble"
	defaultAdminUser  = "admin"

	defaultReceiptSize = 256
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	Storage Storage `json:"storage" yaml:"storage"`

	// Admin configures the demo login gate of the admin surface.
	Admin Admin `json:"admin" yaml:"admin"`

	Metrics Metrics `json:"metrics" yaml:"metrics"`

	Receipt Receipt `json:"receipt" yaml:"receipt"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// Storage selects the local key-value backend.
type Storage struct {
	// Driver is one of pebble, badger or memory.
	Driver string `json:"driver" yaml:"driver"`
	Dir    string `json:"dir" yaml:"dir"`
	// Sync fsyncs every batch before returning.
	Sync bool `json:"sync" yaml:"sync"`
}

type Admin struct {
	Username string `json:"username" yaml:"username"`
	// PasswordHash is a bcrypt hash of the admin password.
	PasswordHash string `json:"passwordHash" yaml:"passwordHash"`
}

type Metrics struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	// Textfile is where the console writes a metrics snapshot after each run.
	Textfile string `json:"textfile" yaml:"textfile"`
}

// Receipt configures the order receipt QR code.
type Receipt struct {
	Size int `json:"size" yaml:"size"`
	// ErrorCorrectionLevel is one of L, M, Q, H.
	ErrorCorrectionLevel string `json:"errorCorrectionLevel" yaml:"errorCorrectionLevel"`
}

// LoadWithEnv loads .yaml files through koanf and overlays environment variables.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Caller paths are searched in order; the working directory comes last.
	searchPaths := make([]string, 0, len(configPath)+1)
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			if filepath.IsAbs(path) {
				searchPaths = append(searchPaths, path)
				continue
			}
			searchPaths = append(searchPaths, filepath.Join(pwd, path))
		}
	}
	searchPaths = append(searchPaths, defaultPath)

	var configFile string
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			break
		}
	}
	if configFile == "" {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Only STOREFRONT_-prefixed variables override file values.
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(k, v string) (string, any) {
			// STOREFRONT_STORAGE_DIR -> storage.dir
			key := canonicalizeEnvKey(strings.TrimPrefix(k, envPrefix), existingConfigMap)
			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

const envPrefix = "STOREFRONT_"

// New loads config.yaml from the usual locations and fills defaults.
func New(configPath ...string) (*Config, error) {
	paths := append(append([]string{}, configPath...), "config", "../config", "../../config")
	cfg, err := LoadWithEnv[Config]("config", paths...)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Storage.Driver) == "" {
		c.Storage.Driver = defaultDriver
	}
	if strings.TrimSpace(c.Storage.Dir) == "" {
		c.Storage.Dir = defaultStorageDir
	}
	if strings.TrimSpace(c.Admin.Username) == "" {
		c.Admin.Username = defaultAdminUser
	}
	if c.Receipt.Size <= 0 {
		c.Receipt.Size = defaultReceiptSize
	}
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
