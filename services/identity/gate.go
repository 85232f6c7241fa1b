package identity

import (
	"context"
	"errors"
	"time"

	"rewardgate/pkg/config"
	"rewardgate/pkg/errutil"
	"rewardgate/services/ledger"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"go.uber.org/fx"
)

var Module = fx.Module("identity",
	fx.Provide(
		NewGate,
		func(m *ledger.Mutator) AccountReader { return m },
	),
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrNoSubject    = errors.New("token has no subject")
)

type AccountReader interface {
	Account(ctx context.Context, userID string) (*ledger.RewardAccount, error)
}

type Identity struct {
	AccountID string
	Banned    bool
}

type Gate struct {
	cfg      *config.Config
	accounts AccountReader
	now      func() time.Time
	// current returns the hot-reloaded config, or nil when remote config is off.
	current func() *config.Config
}

type Params struct {
	fx.In
	Config   *config.Config
	Accounts AccountReader
}

func NewGate(p Params) *Gate {
	return &Gate{
		cfg:      p.Config,
		accounts: p.Accounts,
		now:      time.Now,
		current:  config.Current,
	}
}

// auth prefers the latest remote config so a rotated secret applies without a restart.
func (g *Gate) auth() (secret []byte, issuer string, leeway time.Duration) {
	cfg := g.cfg
	if c := g.current(); c != nil {
		cfg = c
	}
	return []byte(cfg.Auth.JWTSecret), cfg.Auth.Issuer, cfg.Auth.Leeway
}

// Authenticate verifies the bearer token and loads the ban flag of its subject.
// A user without a reward account yet is not banned.
func (g *Gate) Authenticate(ctx context.Context, bearer string) (Identity, error) {
	subject, err := g.verify(bearer)
	if err != nil {
		return Identity{}, errutil.Unauthorized("unauthorized", err)
	}

	account, err := g.accounts.Account(ctx, subject)
	if err != nil {
		return Identity{}, errutil.Internal("failed to load account", err)
	}

	id := Identity{AccountID: subject}
	if account != nil {
		id.Banned = account.IsBanned
	}
	return id, nil
}

func (g *Gate) verify(bearer string) (string, error) {
	if bearer == "" {
		return "", ErrMissingToken
	}

	tok, err := jwt.ParseSigned(bearer, []jose.SignatureAlgorithm{jose.HS256})
	if err != nil {
		return "", err
	}

	secret, issuer, leeway := g.auth()

	var claims jwt.Claims
	if err := tok.Claims(secret, &claims); err != nil {
		return "", err
	}

	expected := jwt.Expected{Issuer: issuer, Time: g.now()}
	if err := claims.ValidateWithLeeway(expected, leeway); err != nil {
		return "", err
	}

	if claims.Subject == "" {
		return "", ErrNoSubject
	}
	return claims.Subject, nil
}
