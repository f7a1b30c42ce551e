package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var cfg AppConfig
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if cfg.Chain.ContractAddress == "" {
		return nil, fmt.Errorf("chain.contract_address is required")
	}
	if len(cfg.Chain.Providers) == 0 {
		return nil, fmt.Errorf("at least one chain provider is required")
	}

	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Cache.SnapshotTTL == 0 {
		cfg.Cache.SnapshotTTL = 5 * time.Minute
	}
	if cfg.Cache.HistoryTTL == 0 {
		cfg.Cache.HistoryTTL = 10 * time.Minute
	}
	if cfg.Bet.ConfirmDeadline == 0 {
		cfg.Bet.ConfirmDeadline = 60 * time.Second
	}
	if cfg.Bet.WinRefreshDelay == 0 {
		cfg.Bet.WinRefreshDelay = 500 * time.Millisecond
	}
	if cfg.Chain.Confirmations == 0 {
		cfg.Chain.Confirmations = 1
	}
	if cfg.Chain.GasLimit == 0 {
		cfg.Chain.GasLimit = 500_000
	}
	if cfg.Chain.ReceiptInterval == 0 {
		cfg.Chain.ReceiptInterval = 3 * time.Second
	}
	if cfg.Chain.PollInterval == 0 {
		cfg.Chain.PollInterval = 10 * time.Second
	}
	if cfg.Chain.PollOverlap == 0 {
		cfg.Chain.PollOverlap = 3
	}

	m := &cfg.Chain.Methods
	if m.Jackpot == "" {
		m.Jackpot = "jackpot"
	}
	if m.FirstPrizeMax == "" {
		m.FirstPrizeMax = "firstPrizeMaxAmount"
	}
	if m.SecondPrizeMax == "" {
		m.SecondPrizeMax = "secondPrizeMaxAmount"
	}
	if m.BetMinimum == "" {
		m.BetMinimum = "betMinAmount"
	}
	if m.PlaceBet == "" {
		m.PlaceBet = "placeBets"
	}

	e := &cfg.Chain.Events
	if e.Win == "" {
		e.Win = "YouWin(address,uint256,uint256,uint256)"
	}
	if e.Loss == "" {
		e.Loss = "YouLost(address,uint256)"
	}

	for i := range cfg.Chain.Providers {
		if cfg.Chain.Providers[i].Timeout == 0 {
			cfg.Chain.Providers[i].Timeout = 30 * time.Second
		}
	}
}
