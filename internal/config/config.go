package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/mewoai/mewoai/internal/domain/member"
	"github.com/mewoai/mewoai/internal/validation"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override, e.g. MEWOAI_SERVER_PORT.
const EnvPrefix = "MEWOAI"

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Discord   DiscordConfig   `yaml:"discord"`
	Roles     RolesConfig     `yaml:"roles"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	MCP       MCPConfig       `yaml:"mcp"`
	Sweep     SweepConfig     `yaml:"sweep"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port" validate:"min=1,max=65535"`
}

type DBConfig struct {
	Driver        string `yaml:"driver" validate:"oneof=sqlite mongo"`
	Path          string `yaml:"path" validate:"required_if=Driver sqlite"`
	MongoURI      string `yaml:"mongo_uri" split_words:"true" validate:"required_if=Driver mongo"`
	MongoDatabase string `yaml:"mongo_database" split_words:"true" validate:"required_if=Driver mongo"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
}

type DiscordConfig struct {
	Token        string `yaml:"token"`
	AppID        string `yaml:"app_id" split_words:"true"`
	GuildID      string `yaml:"guild_id" split_words:"true"`
	Venue        string `yaml:"venue" validate:"notblank"`
	SyncCommands bool   `yaml:"sync_commands" split_words:"true"`
}

type RolesConfig struct {
	Member string `yaml:"member"`
	Warn1  string `yaml:"warn1"`
	Warn2  string `yaml:"warn2"`
	Warn3  string `yaml:"warn3"`
	Expert string `yaml:"expert"`
}

// Roles converts the configured identifiers to the domain type.
func (r RolesConfig) Roles() member.Roles {
	return member.Roles{
		Member: r.Member,
		Warn1:  r.Warn1,
		Warn2:  r.Warn2,
		Warn3:  r.Warn3,
		Expert: r.Expert,
	}
}

type DashboardConfig struct {
	Username  string `yaml:"username" validate:"required_with=Password"`
	Password  string `yaml:"password" validate:"required_with=Username"`
	UploadDir string `yaml:"upload_dir" split_words:"true"`
}

type MCPConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
}

type SweepConfig struct {
	Interval time.Duration `yaml:"interval" validate:"min=1s"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 3000,
		},
		DB: DBConfig{
			Driver:        "sqlite",
			Path:          "mewoai.db",
			MongoDatabase: "mewoai",
		},
		Log: LogConfig{
			Level: "info",
		},
		Discord: DiscordConfig{
			Venue:        "General",
			SyncCommands: true,
		},
		Dashboard: DashboardConfig{
			UploadDir: "uploads",
		},
		MCP: MCPConfig{
			Enabled: true,
		},
		Sweep: SweepConfig{
			Interval: time.Minute,
		},
	}
}

// Load reads configuration from an optional YAML file, an optional .env file,
// and environment variables, in increasing order of precedence. An empty path
// falls back to MEWOAI_CONFIG_PATH.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG_PATH")
	}
	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	// Variables already present in the environment win over the .env file.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env file: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	return cfg, nil
}

// Validate reports configuration that cannot start a server.
func (c Config) Validate() error {
	v := validation.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %s", v.Message(err))
	}
	return nil
}

// ValidateDiscord reports missing credentials for commands that talk to Discord.
func (c Config) ValidateDiscord() error {
	var missing []string
	if c.Discord.Token == "" {
		missing = append(missing, EnvPrefix+"_DISCORD_TOKEN")
	}
	if c.Discord.GuildID == "" {
		missing = append(missing, EnvPrefix+"_DISCORD_GUILD_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("invalid config: missing %s", strings.Join(missing, ", "))
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
