package config

import "github.com/spf13/viper"

type Wallet struct {
	Path string
}

const (
	Cfg_wallet_path = "wallet.path"
)

func init() {
	viper.SetDefault(Cfg_wallet_path, homePath("wallet.yaml"))
}

func buildWalletConfig() *Wallet {
	return &Wallet{Path: expandHome(viper.GetString(Cfg_wallet_path))}
}
