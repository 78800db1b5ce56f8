package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/matzehuels/heatmap/pkg/color"
	"github.com/matzehuels/heatmap/pkg/pipeline"
	"github.com/matzehuels/heatmap/pkg/server"
	"github.com/matzehuels/heatmap/pkg/storage"
)

// Configuration keys. Nested keys map to HEATMAP_<SECTION>_<NAME>.
const (
	keyWidth   = "width"
	keyHeight  = "height"
	keyPalette = "palette"
	keyLimit   = "limit"

	keyCacheBackend  = "cache.backend"
	keyCacheDir      = "cache.dir"
	keyCacheRedisURL = "cache.redis_url"

	keyServerAddr = "server.addr"

	keyStoreBackend  = "store.backend"
	keyStoreDir      = "store.dir"
	keyStoreMongoURI = "store.mongo_uri"
	keyStoreDatabase = "store.database"
)

// Cache backends.
const (
	cacheFile  = "file"
	cacheRedis = "redis"
	cacheNone  = "none"
)

// Store backends.
const (
	storeMemory = "memory"
	storeFile   = "file"
	storeMongo  = "mongo"
)

// annotationSkipConfig marks commands that run without reading the config.
const annotationSkipConfig = "skip-config"

const (
	envPrefix      = "HEATMAP"
	configName     = "config"
	configType     = "toml"
	configFileName = configName + "." + configType
)

func newConfig() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(keyWidth, pipeline.DefaultWidth)
	v.SetDefault(keyHeight, pipeline.DefaultHeight)
	v.SetDefault(keyPalette, pipeline.DefaultPalette)
	v.SetDefault(keyLimit, color.DefaultLimit)
	v.SetDefault(keyCacheBackend, cacheFile)
	v.SetDefault(keyCacheDir, "")
	v.SetDefault(keyCacheRedisURL, "")
	v.SetDefault(keyServerAddr, server.DefaultAddr)
	v.SetDefault(keyStoreBackend, storeMemory)
	v.SetDefault(keyStoreDir, "")
	v.SetDefault(keyStoreMongoURI, "")
	v.SetDefault(keyStoreDatabase, storage.DefaultDatabase)
	return v
}

// loadConfig reads --config, or config.toml from the config directory when
// it exists.
func (c *CLI) loadConfig() error {
	if c.configFile != "" {
		c.config.SetConfigFile(c.configFile)
		if err := c.config.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", c.configFile, err)
		}
		c.Logger.Debug("loaded config", "path", c.configFile)
		return nil
	}

	dir, err := xdgDir("XDG_CONFIG_HOME", ".config")
	if err != nil {
		return nil
	}
	c.config.SetConfigName(configName)
	c.config.SetConfigType(configType)
	c.config.AddConfigPath(dir)
	if err := c.config.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	c.Logger.Debug("loaded config", "path", c.config.ConfigFileUsed())
	return nil
}

func defaultConfigHint() string {
	return filepath.Join("$XDG_CONFIG_HOME", appName, configFileName)
}

// bindFlags lets the named flags of cmd override the matching config keys.
// Flags are named after the last segment of their key.
func (c *CLI) bindFlags(cmd *cobra.Command, keys ...string) error {
	for _, key := range keys {
		name := key[strings.LastIndex(key, ".")+1:]
		flag := cmd.Flags().Lookup(strings.ReplaceAll(name, "_", "-"))
		if flag == nil {
			return fmt.Errorf("no flag for config key %s", key)
		}
		if err := c.config.BindPFlag(key, flag); err != nil {
			return err
		}
	}
	return nil
}

// addLayoutFlags registers the flags shared by commands that compute layouts.
func addLayoutFlags(flags *pflag.FlagSet, opts *pipeline.Options) {
	flags.Float64(keyWidth, pipeline.DefaultWidth, "container width")
	flags.Float64(keyHeight, pipeline.DefaultHeight, "container height")
	flags.String(keyPalette, pipeline.DefaultPalette, "color palette: "+strings.Join(color.Palettes(), ", "))
	flags.Float64(keyLimit, color.DefaultLimit, "gain/loss percent at which colors saturate")
	flags.BoolVar(&opts.GroupBySector, "group", false, "group positions by sector")
	flags.Float64Var(&opts.Padding, "padding", 0, "inset between cells")
	flags.BoolVar(&opts.PreserveOrder, "preserve-order", false, "keep input order instead of sorting by value")
	flags.BoolVar(&opts.ClampNegative, "clamp-negative", false, "treat negative market values as zero instead of failing")
	flags.StringVar(&opts.Title, "title", "", "heatmap title (default: portfolio name)")
}

// layoutOptions fills the config-backed layout fields of opts.
func (c *CLI) layoutOptions(cmd *cobra.Command, opts *pipeline.Options) error {
	if err := c.bindFlags(cmd, keyWidth, keyHeight, keyPalette, keyLimit); err != nil {
		return err
	}
	opts.Width = c.config.GetFloat64(keyWidth)
	opts.Height = c.config.GetFloat64(keyHeight)
	opts.Palette = c.config.GetString(keyPalette)
	opts.Limit = c.config.GetFloat64(keyLimit)
	opts.Logger = c.Logger
	return nil
}

// configCommand prints the effective configuration.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Show the effective configuration.

Settings come from flags, HEATMAP_* environment variables (for example
HEATMAP_CACHE_REDIS_URL for cache.redis_url) and the TOML config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.config.ConfigFileUsed()
			if path == "" {
				path = "(none)"
			}
			printKeyValue("config file", path)

			keys := c.config.AllKeys()
			slices.Sort(keys)
			for _, key := range keys {
				printKeyValue(key, redact(key, fmt.Sprint(c.config.Get(key))))
			}
			return nil
		},
	}
	cmd.AddCommand(c.configInitCommand())
	return cmd
}

// configInitCommand writes a starter config file.
func (c *CLI) configInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a starter config file",
		Args:  cobra.NoArgs,
		Annotations: map[string]string{
			annotationSkipConfig: "true",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.configFile
			if path == "" {
				dir, err := xdgDir("XDG_CONFIG_HOME", ".config")
				if err != nil {
					return fmt.Errorf("get config dir: %w", err)
				}
				path = filepath.Join(dir, configFileName)
			}
			if err := writeDefaultConfig(path); err != nil {
				if errors.Is(err, os.ErrExist) {
					printWarning("Config already exists")
					printFile(path)
					return nil
				}
				return fmt.Errorf("write config %s: %w", path, err)
			}
			printSuccess("Config written")
			printFile(path)
			return nil
		},
	}
}

// redact hides credentials embedded in connection URLs.
func redact(key, value string) string {
	if !strings.HasSuffix(key, "_url") && !strings.HasSuffix(key, "_uri") {
		return value
	}
	scheme, rest, ok := strings.Cut(value, "://")
	if !ok {
		return value
	}
	creds, host, ok := strings.Cut(rest, "@")
	if !ok {
		return value
	}
	user, _, hasPassword := strings.Cut(creds, ":")
	if !hasPassword {
		return value
	}
	return scheme + "://" + user + ":***@" + host
}

// writeDefaultConfig writes a commented config file if none exists yet.
func writeDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return os.ErrExist
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfigTOML), 0o644)
}

const defaultConfigTOML = `# heatmap configuration
width = 800
height = 600
palette = "redgreen"
limit = 3.0

[cache]
backend = "file"   # file, redis or none
# dir = "~/.cache/heatmap"
# redis_url = "redis://localhost:6379/0"

[server]
addr = ":8080"

[store]
backend = "memory" # memory, file or mongo
# dir = "/var/lib/heatmap"
# mongo_uri = "mongodb://localhost:27017"
database = "heatmap"
`
