package lora

import (
	"fmt"
	"strings"
	"time"

	"github.com/danmuck/loractl/internal/queue"
)

// Region selects the LoRaWAN frequency plan programmed into the module.
type Region string

const (
	RegionEU868 Region = "EU868"
	RegionUS915 Region = "US915"
	RegionCN470 Region = "CN470"
)

func ParseRegion(s string) (Region, error) {
	switch r := Region(strings.ToUpper(strings.TrimSpace(s))); r {
	case RegionEU868, RegionUS915, RegionCN470:
		return r, nil
	default:
		return "", fmt.Errorf("lora: unknown region %q", s)
	}
}

// Config defines modem and scheduling behavior for one Client.
type Config struct {
	Region   Region
	DataRate int // 0-5, lower = longer range
	TxPower  int // EIRP in dBm

	QueueSize int

	// SendInterval is the duty-cycle spacing between attempt sequences,
	// measured from the end of one to the start of the next.
	SendInterval time.Duration
	MaxRetries   int
	RetryDelay   time.Duration
	// RxWindowWait keeps the channel occupied after an accepted uplink
	// until the module's class A receive windows have closed.
	RxWindowWait time.Duration

	PollInterval       time.Duration // AT+JOIN? cadence
	JoinTimeout        time.Duration
	JoinRequestTimeout time.Duration

	CommandTimeout time.Duration
	SendTimeout    time.Duration
	DequeueWait    time.Duration
	StopGrace      time.Duration
	RebootWait     time.Duration

	SettleDelay time.Duration
	ReadPoll    time.Duration
}

func DefaultConfig() Config {
	return Config{
		Region:             RegionEU868,
		DataRate:           3,
		TxPower:            14,
		QueueSize:          queue.DefaultCapacity,
		SendInterval:       30 * time.Second,
		MaxRetries:         3,
		RetryDelay:         2 * time.Second,
		RxWindowWait:       3 * time.Second,
		PollInterval:       5 * time.Second,
		JoinTimeout:        60 * time.Second,
		JoinRequestTimeout: 5 * time.Second,
		CommandTimeout:     3 * time.Second,
		SendTimeout:        10 * time.Second,
		DequeueWait:        time.Second,
		StopGrace:          10 * time.Second,
		RebootWait:         time.Second,
		SettleDelay:        800 * time.Millisecond,
		ReadPoll:           50 * time.Millisecond,
	}
}

// WithDefaults fills zero fields from DefaultConfig. DataRate is left
// alone because zero is a valid rate; Validate bounds it.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.Region == "" {
		c.Region = def.Region
	}
	if c.TxPower <= 0 {
		c.TxPower = def.TxPower
	}
	if c.QueueSize <= 0 {
		c.QueueSize = def.QueueSize
	}
	if c.SendInterval <= 0 {
		c.SendInterval = def.SendInterval
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = def.MaxRetries
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = def.RetryDelay
	}
	if c.RxWindowWait <= 0 {
		c.RxWindowWait = def.RxWindowWait
	}
	if c.PollInterval <= 0 {
		c.PollInterval = def.PollInterval
	}
	if c.JoinTimeout <= 0 {
		c.JoinTimeout = def.JoinTimeout
	}
	if c.JoinRequestTimeout <= 0 {
		c.JoinRequestTimeout = def.JoinRequestTimeout
	}
	if c.CommandTimeout <= 0 {
		c.CommandTimeout = def.CommandTimeout
	}
	if c.SendTimeout <= 0 {
		c.SendTimeout = def.SendTimeout
	}
	if c.DequeueWait <= 0 {
		c.DequeueWait = def.DequeueWait
	}
	if c.StopGrace <= 0 {
		c.StopGrace = def.StopGrace
	}
	if c.RebootWait <= 0 {
		c.RebootWait = def.RebootWait
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = def.SettleDelay
	}
	if c.ReadPoll <= 0 {
		c.ReadPoll = def.ReadPoll
	}
	return c
}

func (c Config) Validate() error {
	if _, err := ParseRegion(string(c.Region)); err != nil {
		return err
	}
	if c.DataRate < 0 || c.DataRate > 5 {
		return fmt.Errorf("lora: data rate must be 0-5, got %d", c.DataRate)
	}
	if c.TxPower <= 0 {
		return fmt.Errorf("lora: tx power must be positive, got %d", c.TxPower)
	}
	return nil
}
