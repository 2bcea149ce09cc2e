package resolver

import (
	"context"
	"net"
	"strings"

	"github.com/miekg/dns"
	"github.com/pkg/errors"
	"github.com/tcfw/chaintree/pkg/chaintree"
)

const (
	dnsPrefix    = "did:dns:"
	recordPrefix = "_chaintree."

	defaultServer = "1.1.1.1:53"
)

var (
	ErrUnknownMethod = errors.New("unknown did method")
	ErrNotFound      = errors.New("notFound")
)

type Option func(*Resolver)

// WithServer sets the DNS server (host:port) used for did:dns lookups
func WithServer(addr string) Option {
	return func(r *Resolver) {
		r.server = addr
	}
}

// Resolver turns chain references into chain tree IDs
type Resolver struct {
	server string
	client *dns.Client
}

func New(opts ...Option) *Resolver {
	r := &Resolver{client: &dns.Client{Net: "udp"}}

	for _, opt := range opts {
		opt(r)
	}

	if r.server == "" {
		r.server = systemServer()
	}

	return r
}

func systemServer() string {
	conf, err := dns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil || len(conf.Servers) == 0 {
		return defaultServer
	}

	return net.JoinHostPort(conf.Servers[0], conf.Port)
}

// Resolve accepts a did:chaintree ID, returned as is, or a did:dns name whose
// _chaintree TXT record holds the ID
func (r *Resolver) Resolve(ctx context.Context, ref string) (string, error) {
	switch {
	case strings.HasPrefix(ref, chaintree.IDPrefix):
		if !chaintree.ValidID(ref) {
			return "", errors.Errorf("invalid chain tree id %q", ref)
		}
		return ref, nil
	case strings.HasPrefix(ref, dnsPrefix):
		return r.resolveDNS(ctx, strings.TrimPrefix(ref, dnsPrefix))
	default:
		return "", ErrUnknownMethod
	}
}

func (r *Resolver) resolveDNS(ctx context.Context, domain string) (string, error) {
	if domain == "" {
		return "", ErrNotFound
	}

	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(recordPrefix+domain), dns.TypeTXT)
	m.RecursionDesired = true

	in, _, err := r.client.ExchangeContext(ctx, m, r.server)
	if err != nil {
		return "", errors.Wrap(err, "dns lookup")
	}

	if in.Rcode != dns.RcodeSuccess {
		return "", ErrNotFound
	}

	for _, ans := range in.Answer {
		txt, ok := ans.(*dns.TXT)
		if !ok {
			continue
		}

		for _, s := range txt.Txt {
			if chaintree.ValidID(s) {
				return s, nil
			}
		}
	}

	return "", ErrNotFound
}
