package config

import (
	"log/slog"
	"time"

	"github.com/spf13/viper"
)

// AppConfig is the bot's runtime configuration, read from a yaml file
// with WINGBOT_* env overrides.
type AppConfig struct {
	k *viper.Viper
}

func NewAppConfig() *AppConfig {
	k := viper.New()

	setDefaults(k)

	return &AppConfig{k: k}
}

func (c *AppConfig) Load(filename string) bool {
	c.k.SetConfigFile(filename)
	c.k.SetEnvPrefix("wingbot")
	c.k.AutomaticEnv()

	if err := c.k.ReadInConfig(); err != nil {
		slog.Info("error loading config: " + err.Error())

		return false
	}

	return true
}

func (c *AppConfig) Bool(key string) bool {
	return c.k.GetBool(key)
}

func (c *AppConfig) String(key string) string {
	return c.k.GetString(key)
}

func (c *AppConfig) Set(key string, v any) {
	c.k.Set(key, v)
}

func (c *AppConfig) DbDSN() string {
	return c.k.GetString("db")
}

func (c *AppConfig) AdminAddr() string {
	return c.k.GetString("admin_addr")
}

func (c *AppConfig) RulesFile() string {
	return c.k.GetString("rules_file")
}

func (c *AppConfig) EdsmURL() string {
	return c.k.GetString("edsm_url")
}

func (c *AppConfig) CleanupGrace() time.Duration {
	return c.k.GetDuration("cleanup_grace")
}

func (c *AppConfig) Debug() bool {
	return c.k.GetBool("debug")
}

func setDefaults(k *viper.Viper) {
	k.SetDefault("admin_addr", ":8080")
	k.SetDefault("db", "wingbot.sqlite")
	k.SetDefault("rules_file", "wing_rules.yml")
	k.SetDefault("edsm_url", "https://www.edsm.net")
	k.SetDefault("cleanup_grace", "30s")
	k.SetDefault("debug", false)
}
