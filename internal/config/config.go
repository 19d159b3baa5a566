package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Log      LogConfig
	Channel  ChannelConfig
	Mail     MailConfig
	Outbox   OutboxConfig
}

type ServerConfig struct {
	Port int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LogConfig struct {
	Level string
}

type ChannelConfig struct {
	CountryCode string
	HTTPTimeout time.Duration
}

type MailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type OutboxConfig struct {
	QueueSize int
	Workers   int
}

func Load() (*Config, error) {
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 3306)
	viper.SetDefault("DB_USER", "servicedesk")
	viper.SetDefault("DB_PASSWORD", "secret")
	viper.SetDefault("DB_NAME", "servicedesk")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("CHANNEL_COUNTRY_CODE", "55")
	viper.SetDefault("CHANNEL_HTTP_TIMEOUT", "15s")
	viper.SetDefault("MAIL_HOST", "localhost")
	viper.SetDefault("MAIL_PORT", 587)
	viper.SetDefault("MAIL_USER", "")
	viper.SetDefault("MAIL_PASSWORD", "")
	viper.SetDefault("MAIL_FROM", "no-reply@servicedesk.local")
	viper.SetDefault("OUTBOX_QUEUE_SIZE", 256)
	viper.SetDefault("OUTBOX_WORKERS", 2)

	connMaxLifetime, err := time.ParseDuration(viper.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		return nil, err
	}

	channelTimeout, err := time.ParseDuration(viper.GetString("CHANNEL_HTTP_TIMEOUT"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetInt("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			Name:            viper.GetString("DB_NAME"),
			MaxOpenConns:    viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: connMaxLifetime,
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Channel: ChannelConfig{
			CountryCode: viper.GetString("CHANNEL_COUNTRY_CODE"),
			HTTPTimeout: channelTimeout,
		},
		Mail: MailConfig{
			Host:     viper.GetString("MAIL_HOST"),
			Port:     viper.GetInt("MAIL_PORT"),
			User:     viper.GetString("MAIL_USER"),
			Password: viper.GetString("MAIL_PASSWORD"),
			From:     viper.GetString("MAIL_FROM"),
		},
		Outbox: OutboxConfig{
			QueueSize: viper.GetInt("OUTBOX_QUEUE_SIZE"),
			Workers:   viper.GetInt("OUTBOX_WORKERS"),
		},
	}

	return cfg, nil
}
