package main

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/danmuck/loractl/internal/lora"
)

type fileConfig struct {
	Device       string `toml:"device"`
	Region       string `toml:"region"`
	DataRate     int    `toml:"data_rate"`
	TxPower      int    `toml:"tx_power"`
	JoinEUI      string `toml:"join_eui"`
	AppKey       string `toml:"app_key"`
	JoinTimeout  string `toml:"join_timeout"`
	SendInterval string `toml:"send_interval"`
	ListenAddr   string `toml:"listen_addr"`
}

type daemonConfig struct {
	Device      string
	JoinEUI     string
	AppKey      string
	JoinTimeout time.Duration
	ListenAddr  string
	Lora        lora.Config
}

func defaultDaemonConfig() daemonConfig {
	return daemonConfig{
		Device:      "/dev/ttyS0",
		JoinTimeout: 60 * time.Second,
		ListenAddr:  ":8080",
		Lora:        lora.DefaultConfig(),
	}
}

func loadDaemonConfig(path string) (daemonConfig, error) {
	cfg := defaultDaemonConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return daemonConfig{}, fmt.Errorf("load loractl config: %w", err)
	}

	if meta.IsDefined("device") {
		if d := strings.TrimSpace(raw.Device); d != "" {
			cfg.Device = d
		}
	}
	if meta.IsDefined("region") {
		r, err := lora.ParseRegion(raw.Region)
		if err != nil {
			return daemonConfig{}, err
		}
		cfg.Lora.Region = r
	}
	if meta.IsDefined("data_rate") {
		cfg.Lora.DataRate = raw.DataRate
	}
	if meta.IsDefined("tx_power") {
		cfg.Lora.TxPower = raw.TxPower
	}
	if meta.IsDefined("join_eui") {
		cfg.JoinEUI = strings.TrimSpace(raw.JoinEUI)
	}
	if meta.IsDefined("app_key") {
		cfg.AppKey = strings.TrimSpace(raw.AppKey)
	}
	if meta.IsDefined("join_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.JoinTimeout))
		if err != nil {
			return daemonConfig{}, fmt.Errorf("parse join_timeout: %w", err)
		}
		cfg.JoinTimeout = d
	}
	if meta.IsDefined("send_interval") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.SendInterval))
		if err != nil {
			return daemonConfig{}, fmt.Errorf("parse send_interval: %w", err)
		}
		cfg.Lora.SendInterval = d
	}
	if meta.IsDefined("listen_addr") {
		if a := strings.TrimSpace(raw.ListenAddr); a != "" {
			cfg.ListenAddr = a
		}
	}

	if err := validateDaemonConfig(cfg); err != nil {
		return daemonConfig{}, err
	}
	return cfg, nil
}

func validateDaemonConfig(cfg daemonConfig) error {
	if strings.TrimSpace(cfg.Device) == "" {
		return fmt.Errorf("loractl config missing device")
	}
	if err := validateHexKey("join_eui", cfg.JoinEUI, 16); err != nil {
		return err
	}
	if err := validateHexKey("app_key", cfg.AppKey, 32); err != nil {
		return err
	}
	return cfg.Lora.Validate()
}

func validateHexKey(name, value string, length int) error {
	if len(value) != length {
		return fmt.Errorf("%s must be %d hex chars, got %d", name, length, len(value))
	}
	if _, err := hex.DecodeString(value); err != nil {
		return fmt.Errorf("%s is not valid hex: %w", name, err)
	}
	return nil
}
