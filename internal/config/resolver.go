package config

import "github.com/spf13/viper"

type Resolver struct {
	// Server is the DNS server for did:dns names, empty uses the system
	// resolver
	Server string
}

const (
	Cfg_resolver_server = "resolver.server"
)

func init() {
	viper.SetDefault(Cfg_resolver_server, "")
}

func buildResolverConfig() *Resolver {
	return &Resolver{Server: viper.GetString(Cfg_resolver_server)}
}
