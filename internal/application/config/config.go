package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pion/webrtc/v4"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

type Config struct {
	Debug      bool   `env:"DEBUG" envDefault:"false"`
	Port       string `env:"PORT" envDefault:"3000"`
	MetricPort string `env:"METRIC_PORT" envDefault:"9090"`
	Domain     string `env:"DOMAIN" envDefault:"http://localhost:3000"`

	Store     StoreConfig
	Signaling SignalingConfig
	Stream    StreamConfig

	StunURLs     []string `env:"STUN_URLS" envSeparator:"," envDefault:"stun:stun.l.google.com:19302"`
	CoturnServer CoturnConfig

	Postgres PostgresConfig
}

type StoreConfig struct {
	Driver        string        `env:"STORE_DRIVER" envDefault:"memory"`
	SQLitePath    string        `env:"SQLITE_PATH" envDefault:"roomsignal.db"`
	SweepInterval time.Duration `env:"STORE_SWEEP_INTERVAL" envDefault:"1m"`
}

type SignalingConfig struct {
	// SignalTTL - время жизни участников, описаний и кандидатов комнаты
	SignalTTL time.Duration `env:"SIGNAL_TTL" envDefault:"10m"`

	MessageTTL      time.Duration `env:"MESSAGE_TTL" envDefault:"1h"`
	MessageLogLimit int           `env:"MESSAGE_LOG_LIMIT" envDefault:"100"`
}

type StreamConfig struct {
	Interval time.Duration `env:"STREAM_INTERVAL" envDefault:"1s"`
}

type PostgresConfig struct {
	URL string `env:"POSTGRES_URL"`

	Host     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	User     string `env:"POSTGRES_USER" envDefault:"postgres"`
	Password string `env:"POSTGRES_PASSWORD" envDefault:"postgres"`
	Name     string `env:"POSTGRES_NAME" envDefault:"roomsignal"`
	SSL      string `env:"POSTGRES_SSL" envDefault:"disable"`
}

func (p *PostgresConfig) DSN() string {
	if p.URL != "" {
		return p.URL
	}

	return fmt.Sprintf("postgresql://%s:%s@%s:%d/%s?sslmode=%s",
		p.User,
		p.Password,
		p.Host,
		p.Port,
		p.Name,
		p.SSL,
	)
}

type CoturnConfig struct {
	Host string `env:"COTURN_HOST"`

	// Secret - нужен для генерации временных кредов для фронта
	Secret string `env:"COTURN_SECRET"`
}

func New() (*Config, error) {
	c, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case StoreMemory, StorePostgres, StoreSQLite:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	if c.Signaling.MessageLogLimit <= 0 {
		return fmt.Errorf("message log limit must be positive, got %d", c.Signaling.MessageLogLimit)
	}

	if c.Stream.Interval <= 0 {
		return fmt.Errorf("stream interval must be positive, got %s", c.Stream.Interval)
	}

	return nil
}

// ICEServers собирает STUN и TURN сервера для клиентов. Креды TURN
// выдаются отдельно, см. handlers.IceHandler.
func (c *Config) ICEServers() []webrtc.ICEServer {
	servers := make([]webrtc.ICEServer, 0, 2)

	if len(c.StunURLs) > 0 {
		servers = append(servers, webrtc.ICEServer{URLs: c.StunURLs})
	}

	if c.CoturnServer.Host != "" {
		servers = append(servers, webrtc.ICEServer{
			URLs: []string{
				fmt.Sprintf("turn:%s?transport=udp", c.CoturnServer.Host),
				fmt.Sprintf("turn:%s?transport=tcp", c.CoturnServer.Host),
			},
		})
	}

	return servers
}
