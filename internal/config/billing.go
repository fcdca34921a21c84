package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// DefaultElectricityRate is the per-unit tariff applied when a reading is
// recorded without an explicit rate.
const DefaultElectricityRate = 10.1

type BillingConfig struct {
	Electricity ElectricityBilling `mapstructure:"electricity"`
}

type ElectricityBilling struct {
	DefaultRate       float64 `mapstructure:"defaultRate"`
	MarkGeneratedPaid bool    `mapstructure:"markGeneratedPaid"`
}

func DefaultBillingConfig() BillingConfig {
	return BillingConfig{
		Electricity: ElectricityBilling{
			DefaultRate:       DefaultElectricityRate,
			MarkGeneratedPaid: false,
		},
	}
}

type BillingConfigHolder struct {
	current atomic.Value // holds BillingConfig
}

// NewBillingConfigHolder reads billing.yml from the usual config paths and
// keeps watching it. A missing file falls back to DefaultBillingConfig.
func NewBillingConfigHolder(log *zap.Logger) (*BillingConfigHolder, error) {
	log = log.Named("config.billing")
	v := viper.New()

	v.SetConfigName("billing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/roomledger/config")
	v.AddConfigPath("/etc/roomledger")
	v.AddConfigPath(".")

	v.SetEnvPrefix("ROOMLEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultBillingConfig()
	v.SetDefault("billing.electricity.defaultRate", defaults.Electricity.DefaultRate)
	v.SetDefault("billing.electricity.markGeneratedPaid", defaults.Electricity.MarkGeneratedPaid)

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		fileFound = false
	}

	var cfg BillingConfig
	if err := v.UnmarshalKey("billing", &cfg); err != nil {
		return nil, err
	}
	if err := validateBillingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)

	if !fileFound {
		log.Info("billing config file not found, using defaults",
			zap.Float64("default_rate", cfg.Electricity.DefaultRate),
		)
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated BillingConfig
		if err := v.UnmarshalKey("billing", &updated); err != nil {
			log.Warn("billing config reload failed", zap.Error(err))
			return
		}
		if err := validateBillingConfig(updated); err != nil {
			log.Warn("invalid billing config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("billing config reloaded",
			zap.String("file", e.Name),
			zap.Float64("default_rate", updated.Electricity.DefaultRate),
		)
	})

	return holder, nil
}

// NewStaticBillingConfig returns a holder that never reloads.
func NewStaticBillingConfig(cfg BillingConfig) *BillingConfigHolder {
	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *BillingConfigHolder) Get() BillingConfig {
	if h == nil {
		return DefaultBillingConfig()
	}
	return h.current.Load().(BillingConfig)
}

func validateBillingConfig(cfg BillingConfig) error {
	if cfg.Electricity.DefaultRate < 0 {
		return errors.New("billing.electricity.defaultRate cannot be negative")
	}
	return nil
}
