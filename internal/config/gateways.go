package config

import (
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// GatewayCredentials is the hot-reloadable view of gateway secrets. Defaults
// come from the environment; a gateways.yml file, when present, overrides
// them and is watched for changes so credentials can be rotated without a
// restart.
type GatewayCredentials struct {
	Cryptomus CryptomusConfig `mapstructure:"cryptomus"`
	PayPal    PayPalConfig    `mapstructure:"paypal"`
}

type GatewayConfigHolder struct {
	current atomic.Value // holds GatewayCredentials
}

func NewGatewayConfigHolder(cfg Config, log *zap.Logger) (*GatewayConfigHolder, error) {
	holder := &GatewayConfigHolder{}
	defaults := GatewayCredentials{
		Cryptomus: cfg.Cryptomus,
		PayPal:    cfg.PayPal,
	}
	holder.current.Store(defaults)

	v := viper.New()
	v.SetConfigName("gateways")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/storefront")
	v.AddConfigPath(".")

	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// no file: environment credentials stay authoritative
		return holder, nil
	}

	creds, err := unmarshalGatewayCredentials(v, defaults)
	if err != nil {
		return nil, err
	}
	holder.current.Store(creds)

	v.OnConfigChange(func(_ fsnotify.Event) {
		reloaded, err := unmarshalGatewayCredentials(v, defaults)
		if err != nil {
			log.Warn("gateway config reload failed", zap.Error(err))
			return
		}
		holder.current.Store(reloaded)
		log.Info("gateway config reloaded")
	})
	v.WatchConfig()

	return holder, nil
}

func (h *GatewayConfigHolder) Current() GatewayCredentials {
	return h.current.Load().(GatewayCredentials)
}

func unmarshalGatewayCredentials(v *viper.Viper, defaults GatewayCredentials) (GatewayCredentials, error) {
	creds := defaults
	if err := v.Unmarshal(&creds); err != nil {
		return GatewayCredentials{}, err
	}
	creds.PayPal.Mode = normalizePayPalMode(creds.PayPal.Mode)
	return creds, nil
}
