package config

import (
	"time"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server  ServerConfig  `yaml:"server"`
	Chain   ChainConfig   `yaml:"chain"`
	Cache   CacheConfig   `yaml:"cache"`
	Bet     BetConfig     `yaml:"bet"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds HTTP server settings for health and metrics.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// ChainConfig holds settings for the lottery contract and its chain.
type ChainConfig struct {
	ContractAddress string           `yaml:"contract_address"`
	DeploymentTx    string           `yaml:"deployment_tx"` // start height lookup, 0 fallback
	Account         string           `yaml:"account"`
	Confirmations   uint64           `yaml:"confirmations"`
	GasLimit        uint64           `yaml:"gas_limit"`
	ReceiptInterval time.Duration    `yaml:"receipt_interval"` // receipt polling cadence
	PollInterval    time.Duration    `yaml:"poll_interval"`    // live log polling cadence
	PollOverlap     uint64           `yaml:"poll_overlap"`     // blocks re-scanned each poll
	Methods         MethodsConfig    `yaml:"methods"`
	Events          EventsConfig     `yaml:"events"`
	Providers       []ProviderConfig `yaml:"providers"`
}

// MethodsConfig names the contract's view and mutation methods.
type MethodsConfig struct {
	Jackpot        string `yaml:"jackpot"`
	FirstPrizeMax  string `yaml:"first_prize_max"`
	SecondPrizeMax string `yaml:"second_prize_max"`
	BetMinimum     string `yaml:"bet_minimum"`
	PlaceBet       string `yaml:"place_bet"`
}

// EventsConfig names the contract's outcome event signatures.
type EventsConfig struct {
	Win  string `yaml:"win"`
	Loss string `yaml:"loss"`
}

// ProviderConfig holds settings for an RPC provider.
type ProviderConfig struct {
	Name    string        `yaml:"name"`
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// CacheConfig bounds the staleness of the two TTL caches.
type CacheConfig struct {
	SnapshotTTL time.Duration `yaml:"snapshot_ttl"`
	HistoryTTL  time.Duration `yaml:"history_ttl"`
}

// BetConfig holds the bet submission protocol settings.
type BetConfig struct {
	ConfirmDeadline time.Duration `yaml:"confirm_deadline"`
	WinRefreshDelay time.Duration `yaml:"win_refresh_delay"` // settle time before snapshot invalidation on a live win
}
