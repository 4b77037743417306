package config

import (
	"log"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	// Discord
	DiscordToken string `env:"DISCORD_TOKEN,required"`
	BotID        string `env:"BOT_ID,required"`
	GuildID      string `env:"GUILD_ID,required"`

	// Completion API
	APIBase          string `env:"API_BASE"`
	APIKey           string `env:"API_KEY,required"`
	DefaultModel     string `env:"DEFAULT_MODEL" envDefault:"gpt-3.5-turbo"`
	YandexOAuthToken string `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string `env:"YANDEX_FOLDER_ID"`

	// Conversation
	HistoryLimit    int  `env:"HISTORY_LIMIT" envDefault:"30"`
	ImageGeneration bool `env:"IMAGE_GENERATION" envDefault:"false"`

	// Storage
	DataDir      string `env:"DATA_DIR" envDefault:"data"`
	LogFilePath  string `env:"LOG_PATH" envDefault:"bot.log"`
	LogKeepLines int    `env:"LOG_KEEP_LINES" envDefault:"5000"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}
