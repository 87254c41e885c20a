package jwt

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	gojose "github.com/go-jose/go-jose/v4"
	gojwt "github.com/go-jose/go-jose/v4/jwt"

	"github.com/zahel-sys/sigc-auth/internal/auth"
)

// ErrInvalidToken covers malformed, forged, and expired tokens.
var ErrInvalidToken = errors.New("invalid or expired token")

// IdentityClaims carry the authenticated role alongside the standard
// JWT claim set.
type IdentityClaims struct {
	Role string `json:"role"`
}

// Provider signs and decodes identity tokens. It implements the
// auth.TokenProvider port.
type Provider struct {
	keys   *KeyManager
	issuer string
	ttl    time.Duration
}

var _ auth.TokenProvider = (*Provider)(nil)

// NewProvider constructs a token provider.
func NewProvider(keys *KeyManager, issuer string, ttl time.Duration) *Provider {
	return &Provider{keys: keys, issuer: issuer, ttl: ttl}
}

// Issue produces a signed JWT embedding the user id and role.
func (p *Provider) Issue(ctx context.Context, identity auth.Identity) (string, error) {
	key, err := p.keys.EnsureSigningKey(ctx)
	if err != nil {
		return "", fmt.Errorf("ensure signing key: %w", err)
	}

	signer, err := gojose.NewSigner(
		gojose.SigningKey{Algorithm: gojose.SignatureAlgorithm(key.Algorithm), Key: key.Secret},
		(&gojose.SignerOptions{}).WithType("JWT").WithHeader("kid", key.KID),
	)
	if err != nil {
		return "", fmt.Errorf("new signer: %w", err)
	}

	now := time.Now().UTC()
	stdClaims := gojwt.Claims{
		Subject:   strconv.FormatInt(identity.UserID, 10),
		Issuer:    p.issuer,
		IssuedAt:  gojwt.NewNumericDate(now),
		Expiry:    gojwt.NewNumericDate(now.Add(p.ttl)),
		NotBefore: gojwt.NewNumericDate(now),
	}
	custom := IdentityClaims{Role: identity.Role}

	token, err := gojwt.Signed(signer).Claims(stdClaims).Claims(custom).Serialize()
	if err != nil {
		return "", fmt.Errorf("serialize jwt: %w", err)
	}

	return token, nil
}

// Decode verifies the signature, issuer, and expiry, and returns the
// identity the token asserts. Any failure maps to ErrInvalidToken.
func (p *Provider) Decode(ctx context.Context, token string) (auth.Identity, error) {
	key, err := p.keys.ActiveKey(ctx)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("load key: %w", err)
	}

	allowed := []gojose.SignatureAlgorithm{gojose.SignatureAlgorithm(key.Algorithm)}
	parsed, err := gojwt.ParseSigned(token, allowed)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var std gojwt.Claims
	var custom IdentityClaims
	if err := parsed.Claims(key.Secret, &std, &custom); err != nil {
		return auth.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if err := std.Validate(gojwt.Expected{Issuer: p.issuer, Time: time.Now()}); err != nil {
		return auth.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := strconv.ParseInt(std.Subject, 10, 64)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}

	return auth.Identity{UserID: userID, Role: custom.Role}, nil
}
