package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Plan describes a purchasable credit plan.
type Plan struct {
	Name         string `mapstructure:"name"`
	PriceCents   int64  `mapstructure:"priceCents"`
	Credits      int    `mapstructure:"credits"`
	Tier         string `mapstructure:"tier"`
	PurchaseType string `mapstructure:"purchaseType"`
}

type PlansConfig struct {
	Plans []Plan `mapstructure:"plans"`
}

func DefaultPlansConfig() PlansConfig {
	return PlansConfig{
		Plans: []Plan{
			{Name: "free", PriceCents: 0, Credits: 5, Tier: "free", PurchaseType: "plan_selection"},
			{Name: "pro", PriceCents: 999, Credits: 50, Tier: "pro", PurchaseType: "subscription"},
			{Name: "pro_lifetime", PriceCents: 4999, Credits: 500, Tier: "pro_lifetime", PurchaseType: "one_time"},
		},
	}
}

// PlansConfigHolder hot-reloads plan definitions so price or grant changes do
// not require a restart.
type PlansConfigHolder struct {
	current atomic.Value // holds PlansConfig
}

func NewPlansConfigHolder() (*PlansConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("plans")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/ytza")
	v.AddConfigPath(".")

	v.SetEnvPrefix("YTZA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultPlansConfig()
		v.SetDefault("billing.plans", defaults.Plans)
	}

	var cfg PlansConfig
	if err := v.UnmarshalKey("billing", &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Plans) == 0 {
		cfg = DefaultPlansConfig()
	}
	if err := validatePlansConfig(cfg); err != nil {
		return nil, err
	}

	holder := &PlansConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated PlansConfig
		if err := v.UnmarshalKey("billing", &updated); err != nil {
			log.Printf("[plans-config] reload failed: %v", err)
			return
		}
		if err := validatePlansConfig(updated); err != nil {
			log.Printf("[plans-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[plans-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticPlansHolder wraps a fixed config without file watching. Used in
// tests and anywhere hot reload is unwanted.
func NewStaticPlansHolder(cfg PlansConfig) *PlansConfigHolder {
	holder := &PlansConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *PlansConfigHolder) Get() PlansConfig {
	return h.current.Load().(PlansConfig)
}

// Lookup returns the plan with the given name, or false when undefined.
func (h *PlansConfigHolder) Lookup(name string) (Plan, bool) {
	for _, p := range h.Get().Plans {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Plan{}, false
}

func validatePlansConfig(cfg PlansConfig) error {
	if len(cfg.Plans) == 0 {
		return errors.New("billing.plans cannot be empty")
	}
	for _, p := range cfg.Plans {
		if strings.TrimSpace(p.Name) == "" {
			return errors.New("billing.plans entries require a name")
		}
		if p.Credits < 0 || p.PriceCents < 0 {
			return errors.New("billing.plans entries cannot be negative")
		}
	}
	return nil
}
