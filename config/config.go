package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

type AppConfig struct {
	Logging      LoggingConfig `yaml:"logging"`
	GeminiModel  string        `yaml:"gemini_model"`
	Fetcher      FetcherConfig `yaml:"fetcher"`
	Management   ManagementConfig
	Bus          BusConfig
	Gemini       GeminiConfig
	AdminChannel AdminChannelConfig
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// FetcherConfig controls the polling cycle of the fetcher service.
type FetcherConfig struct {
	// PollInterval is how often all sources are re-fetched.
	PollInterval time.Duration `yaml:"poll_interval"`

	// StartupGrace delays the first cycle so the management API and the
	// broker have a chance to come up first.
	StartupGrace time.Duration `yaml:"startup_grace"`

	// EntryLimit caps how many feed entries are considered per source
	// per cycle.
	EntryLimit int `yaml:"entry_limit"`

	// RenderJS switches article fetching to a headless browser for
	// script-heavy sites.
	RenderJS bool `yaml:"render_js"`
}

// ManagementConfig holds the management API location.
// BaseURL is consumed by the workers, ListenAddr by the API itself.
type ManagementConfig struct {
	BaseURL    string
	ListenAddr string
	MongoURI   string
	MongoDB    string
}

type BusConfig struct {
	Brokers string
	GroupID string
}

type GeminiConfig struct {
	APIKey string
	// TargetLanguage is the language every post gets translated into.
	TargetLanguage string
}

// AdminChannelConfig describes the Telegram review surfaces.
type AdminChannelConfig struct {
	BotToken string
	// ChatIDs is the list of admin chats that mirror the approval UI.
	ChatIDs []int64
}

var config *AppConfig

func InitApp() {
	// load environment variables
	godotenv.Load(filepath.Join(GetBasePath(), ENV_FILE))

	c := AppConfig{
		Logging:     LoggingConfig{Level: "info"},
		GeminiModel: "gemini-2.0-flash",
		Fetcher: FetcherConfig{
			PollInterval: 2 * time.Minute,
			StartupGrace: 15 * time.Second,
			EntryLimit:   30,
		},
	}

	// configuration file is optional; env vars fill in the rest
	if data, err := os.ReadFile(filepath.Join(GetBasePath(), CONFIG_FILE)); err == nil {
		if err := yaml.Unmarshal(data, &c); err != nil {
			panic(err)
		}
	}

	c.Management.BaseURL = envOr("MANAGEMENT_API_URL", "http://management-api:8000")
	c.Management.ListenAddr = envOr("MANAGEMENT_LISTEN_ADDR", ":8000")
	c.Management.MongoURI = os.Getenv("MONGO_URI")
	c.Management.MongoDB = envOr("MONGO_DB_NAME", "newswire")
	c.Bus.Brokers = os.Getenv("KAFKA_BOOTSTRAP_SERVERS")
	c.Bus.GroupID = envOr("KAFKA_GROUP_ID", "newswire")
	c.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	c.Gemini.TargetLanguage = envOr("GEMINI_TARGET_LANGUAGE", "English")
	c.AdminChannel.BotToken = os.Getenv("TELEGRAM_ADMIN_BOT_TOKEN")
	c.AdminChannel.ChatIDs = ParseChatIDs(os.Getenv("TELEGRAM_ADMIN_CHAT_IDS"))

	config = &c
}

func GetConfig() AppConfig {
	if config == nil {
		InitApp()
	}

	return *config
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// ParseChatIDs splits a comma-separated admin chat id list.
// Entries that do not parse as integers are dropped.
func ParseChatIDs(raw string) []int64 {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
