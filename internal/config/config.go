package config

import (
	"encoding/json"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server       ServerConfig       `json:"server"`
	Database     DatabaseConfig     `json:"database"`
	Mongo        MongoConfig        `json:"mongo"`
	Redis        RedisConfig        `json:"redis"`
	Payment      PaymentConfig      `json:"payment"`
	Notification NotificationConfig `json:"notification"`
	Sweeper      SweeperConfig      `json:"sweeper"`
}

type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type DatabaseConfig struct {
	Host           string `json:"host"`
	Port           int    `json:"port"`
	User           string `json:"user"`
	Password       string `json:"password"`
	DBName         string `json:"dbname"`
	SSLMode        string `json:"sslmode"`
	MigrationsPath string `json:"migrations_path"`
}

type MongoConfig struct {
	URI        string `json:"uri"`
	Database   string `json:"database"`
	Collection string `json:"collection"`
}

type RedisConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type PaymentConfig struct {
	GatewayURL string `json:"gateway_url"`
	APIKey     string `json:"api_key"`
	// CallbackBaseURL is the public base URL success/cancel paths are
	// appended to when a checkout session is created.
	CallbackBaseURL string `json:"callback_base_url"`
	Currency        string `json:"currency"`
	TimeoutSeconds  int    `json:"timeout_seconds"`
}

type NotificationConfig struct {
	WebhookURL     string `json:"webhook_url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

type SweeperConfig struct {
	IntervalSeconds    int `json:"interval_seconds"`
	GracePeriodSeconds int `json:"grace_period_seconds"`
}

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Sweeper.IntervalSeconds <= 0 {
		c.Sweeper.IntervalSeconds = 120
	}
	if c.Sweeper.GracePeriodSeconds <= 0 {
		c.Sweeper.GracePeriodSeconds = 300
	}
	if c.Payment.TimeoutSeconds <= 0 {
		c.Payment.TimeoutSeconds = 15
	}
	if c.Payment.Currency == "" {
		c.Payment.Currency = "eur"
	}
	if c.Notification.TimeoutSeconds <= 0 {
		c.Notification.TimeoutSeconds = 10
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "marketplace"
	}
	if c.Mongo.Collection == "" {
		c.Mongo.Collection = "carts"
	}
}

func (c *DatabaseConfig) GetDSN() string {
	return "host=" + c.Host +
		" port=" + strconv.Itoa(c.Port) +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DBName +
		" sslmode=" + c.SSLMode
}

func (c *SweeperConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

func (c *SweeperConfig) GracePeriod() time.Duration {
	return time.Duration(c.GracePeriodSeconds) * time.Second
}
