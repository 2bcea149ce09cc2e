package config

import (
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Client struct {
	Timeout    time.Duration
	Retries    int
	BackoffMin time.Duration
	BackoffMax time.Duration
}

const (
	Cfg_client_timeout    = "client.timeout"
	Cfg_client_retries    = "client.retries"
	Cfg_client_backoffMin = "client.backoffMin"
	Cfg_client_backoffMax = "client.backoffMax"
)

var (
	clientDefaults = map[string]interface{}{
		Cfg_client_timeout:    10 * time.Second,
		Cfg_client_retries:    3,
		Cfg_client_backoffMin: 100 * time.Millisecond,
		Cfg_client_backoffMax: 5 * time.Second,
	}
)

func init() {
	for k, v := range clientDefaults {
		viper.SetDefault(k, v)
	}
}

func buildClientConfig() (*Client, error) {
	c := &Client{
		Timeout:    viper.GetDuration(Cfg_client_timeout),
		Retries:    viper.GetInt(Cfg_client_retries),
		BackoffMin: viper.GetDuration(Cfg_client_backoffMin),
		BackoffMax: viper.GetDuration(Cfg_client_backoffMax),
	}

	if c.Timeout <= 0 {
		return nil, errors.New("timeout must be positive")
	}

	if c.Retries <= 0 {
		return nil, errors.New("retries must be positive")
	}

	if c.BackoffMin > c.BackoffMax {
		return nil, errors.New("backoff min is larger than max")
	}

	return c, nil
}
