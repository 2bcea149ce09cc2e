package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/tcfw/chaintree/internal/utils/logging"
)

const (
	Cfg_verbose = "verbose"
)

var (
	defaults = map[string]interface{}{
		Cfg_verbose: false,
	}
)

func init() {
	for k, v := range defaults {
		viper.SetDefault(k, v)
	}
}

// GetConfig reads chaintree.yaml and the CHAINTREE_ environment into a Config
func GetConfig() (*Config, error) {
	viper.SetConfigType("yaml")
	viper.SetConfigName("chaintree")
	viper.AddConfigPath("/etc/chaintree/")
	viper.AddConfigPath("$HOME/.chaintree")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("CHAINTREE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	err := viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; ignore error
			logrus.New().Debug("no config found")
		} else {
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	return build()
}

func build() (*Config, error) {
	var err error

	c := &Config{}

	c.storage, err = buildStorageConfig()
	if err != nil {
		return nil, errors.Wrap(err, "storage config")
	}

	c.notary, err = buildNotaryConfig()
	if err != nil {
		return nil, errors.Wrap(err, "notary config")
	}

	c.client, err = buildClientConfig()
	if err != nil {
		return nil, errors.Wrap(err, "client config")
	}

	c.wallet = buildWalletConfig()
	c.resolver = buildResolverConfig()

	if viper.GetBool(Cfg_verbose) {
		logrus.SetLevel(logrus.DebugLevel)
		logging.SetLevel(logrus.DebugLevel)
		logging.Entry().WithField("level", "debug").Debug("setting log level")
	}

	return c, nil
}

type Config struct {
	storage *Storage
	notary  *Notary
	client  *Client
	wallet  *Wallet

	resolver *Resolver
}

func (c *Config) Storage() *Storage {
	return c.storage
}

func (c *Config) Notary() *Notary {
	return c.notary
}

func (c *Config) Client() *Client {
	return c.client
}

func (c *Config) Wallet() *Wallet {
	return c.wallet
}

func (c *Config) Resolver() *Resolver {
	return c.resolver
}

func homePath(parts ...string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	return filepath.Join(append([]string{home, ".chaintree"}, parts...)...)
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}

	return os.ExpandEnv(p)
}
