// Package refcode generates human-readable reference codes for documents.
//
// Codes look like FD-20260831-7K3QZM: a prefix, the business date, and a
// random suffix. Uniqueness is enforced against the store through an
// existence check with transparent retry on collision.
package refcode

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"fuelbook/internal/core/apperror"
)

// suffix alphabet avoids ambiguous characters (0/O, 1/I/L).
const alphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

// ExistsFunc reports whether a code is already taken.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

// Config controls code shape.
type Config struct {
	// Prefix identifies the document family, e.g. "FD" for fuel deliveries.
	Prefix string
	// SuffixLen is the random suffix length. Default 6.
	SuffixLen int
	// MaxAttempts bounds collision retries. Default 5.
	MaxAttempts int
}

// DefaultConfig returns the standard shape for a prefix.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		SuffixLen:   6,
		MaxAttempts: 5,
	}
}

// Generator produces unique reference codes.
type Generator struct {
	cfg Config
}

// New creates a Generator.
func New(cfg Config) *Generator {
	if cfg.SuffixLen <= 0 {
		cfg.SuffixLen = 6
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	return &Generator{cfg: cfg}
}

// Next returns a code that exists reports as free. Collisions are retried
// transparently up to MaxAttempts before giving up.
func (g *Generator) Next(ctx context.Context, date time.Time, exists ExistsFunc) (string, error) {
	for attempt := 0; attempt < g.cfg.MaxAttempts; attempt++ {
		suffix, err := randomSuffix(g.cfg.SuffixLen)
		if err != nil {
			return "", fmt.Errorf("generate suffix: %w", err)
		}

		code := fmt.Sprintf("%s-%s-%s", g.cfg.Prefix, date.Format("20060102"), suffix)

		taken, err := exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check reference: %w", err)
		}
		if !taken {
			return code, nil
		}
	}

	return "", apperror.NewDuplicate("reference code", "prefix", g.cfg.Prefix).
		WithDetail("attempts", g.cfg.MaxAttempts)
}

func randomSuffix(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] = alphabet[int(buf[i])%len(alphabet)]
	}
	return string(buf), nil
}
