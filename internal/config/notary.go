package config

import (
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Notary struct {
	// Signers is the number of devnet signers derived from Seed when no
	// explicit Keys are configured
	Signers   int
	Keys      []string
	Seed      string
	Threshold int
}

const (
	Cfg_notary_signers   = "notary.signers"
	Cfg_notary_keys      = "notary.keys"
	Cfg_notary_seed      = "notary.seed"
	Cfg_notary_threshold = "notary.threshold"
)

var (
	notaryDefaults = map[string]interface{}{
		Cfg_notary_signers:   4,
		Cfg_notary_keys:      []string{},
		Cfg_notary_seed:      "chaintree-devnet",
		Cfg_notary_threshold: 0,
	}
)

func init() {
	for k, v := range notaryDefaults {
		viper.SetDefault(k, v)
	}
}

func buildNotaryConfig() (*Notary, error) {
	c := &Notary{
		Signers:   viper.GetInt(Cfg_notary_signers),
		Keys:      viper.GetStringSlice(Cfg_notary_keys),
		Seed:      viper.GetString(Cfg_notary_seed),
		Threshold: viper.GetInt(Cfg_notary_threshold),
	}

	n := c.Signers
	if len(c.Keys) > 0 {
		n = len(c.Keys)
	}

	if n <= 0 {
		return nil, errors.New("at least one notary signer is required")
	}

	if c.Threshold < 0 || c.Threshold > n {
		return nil, errors.Errorf("threshold %d out of range for %d signers", c.Threshold, n)
	}

	return c, nil
}
