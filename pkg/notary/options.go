package notary

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Option func(*LocalGroup) error

// WithThreshold overrides the default quorum size
func WithThreshold(n int) Option {
	return func(g *LocalGroup) error {
		if n <= 0 || n > len(g.signers) {
			return errors.Errorf("threshold %d out of range for %d signers", n, len(g.signers))
		}

		g.threshold = n
		return nil
	}
}

func WithLogger(l *logrus.Entry) Option {
	return func(g *LocalGroup) error {
		g.logger = l
		return nil
	}
}
