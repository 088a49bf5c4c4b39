package saleor

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/url"
	"slices"
	"strings"

	"saleor-stripe-app/internal/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

const manageAppsPermission = "MANAGE_APPS"

type jsonWebKey struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type KeySet struct {
	Keys []jsonWebKey `json:"keys"`
}

func ParseJWKS(raw string) (*KeySet, error) {
	var ks KeySet
	if err := json.Unmarshal([]byte(raw), &ks); err != nil {
		return nil, errors.Wrap(err, "parsing jwks")
	}
	return &ks, nil
}

// Key returns the RSA key with the given kid, or the only key when kid is empty.
func (ks *KeySet) Key(kid string) (*rsa.PublicKey, error) {
	for _, k := range ks.Keys {
		if k.Kty != "RSA" || (kid != "" && k.Kid != kid) {
			continue
		}
		n, err := base64.RawURLEncoding.DecodeString(k.N)
		if err != nil {
			return nil, errors.Wrap(err, "decoding jwk modulus")
		}
		e, err := base64.RawURLEncoding.DecodeString(k.E)
		if err != nil {
			return nil, errors.Wrap(err, "decoding jwk exponent")
		}
		return &rsa.PublicKey{
			N: new(big.Int).SetBytes(n),
			E: int(new(big.Int).SetBytes(e).Int64()),
		}, nil
	}
	return nil, errors.Errorf("no RSA key with kid %q in jwks", kid)
}

// JWKSURL derives the well-known JWKS location from a Saleor API url.
func JWKSURL(apiURL string) (string, error) {
	u, err := url.Parse(apiURL)
	if err != nil {
		return "", errors.Wrapf(err, "parsing saleor api url %q", apiURL)
	}
	return u.Scheme + "://" + u.Host + "/.well-known/jwks.json", nil
}

func (c *Client) FetchJWKS(ctx context.Context, apiURL string) (string, error) {
	jwksURL, err := JWKSURL(apiURL)
	if err != nil {
		return "", err
	}
	body, err := c.get(ctx, jwksURL)
	if err != nil {
		return "", errors.Wrap(err, "fetching jwks")
	}
	if _, err := ParseJWKS(string(body)); err != nil {
		return "", err
	}
	return string(body), nil
}

type jwsHeader struct {
	Alg string `json:"alg"`
	Kid string `json:"kid"`
	B64 *bool  `json:"b64"`
}

// VerifySignature checks a detached JWS (header..signature) over payload,
// the format Saleor sends in the Saleor-Signature header.
func VerifySignature(jwks string, payload []byte, signature string) error {
	parts := strings.Split(signature, ".")
	if len(parts) != 3 || parts[1] != "" {
		return errors.Wrap(apperror.ErrUnauthorized, "malformed detached jws")
	}

	rawHeader, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return errors.Wrap(apperror.ErrUnauthorized, "decoding jws header")
	}
	var header jwsHeader
	if err := json.Unmarshal(rawHeader, &header); err != nil {
		return errors.Wrap(apperror.ErrUnauthorized, "parsing jws header")
	}
	if header.Alg != jwt.SigningMethodRS256.Alg() {
		return errors.Wrapf(apperror.ErrUnauthorized, "unsupported jws alg %q", header.Alg)
	}

	ks, err := ParseJWKS(jwks)
	if err != nil {
		return err
	}
	key, err := ks.Key(header.Kid)
	if err != nil {
		return errors.Wrap(apperror.ErrUnauthorized, err.Error())
	}

	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return errors.Wrap(apperror.ErrUnauthorized, "decoding jws signature")
	}

	encodedPayload := string(payload)
	if header.B64 == nil || *header.B64 {
		encodedPayload = base64.RawURLEncoding.EncodeToString(payload)
	}

	if err := jwt.SigningMethodRS256.Verify(parts[0]+"."+encodedPayload, sig, key); err != nil {
		return errors.Wrap(apperror.ErrUnauthorized, "invalid saleor signature")
	}
	return nil
}

type DashboardClaims struct {
	App             string   `json:"app"`
	UserPermissions []string `json:"user_permissions"`
	jwt.RegisteredClaims
}

// VerifyToken validates a dashboard token for the given app and requires MANAGE_APPS.
func VerifyToken(jwks, token, appID string) (*DashboardClaims, error) {
	ks, err := ParseJWKS(jwks)
	if err != nil {
		return nil, err
	}

	claims := &DashboardClaims{}
	_, err = jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		return ks.Key(kid)
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	if err != nil {
		return nil, errors.Wrap(apperror.ErrUnauthorized, err.Error())
	}

	if appID != "" && claims.App != appID {
		return nil, errors.Wrap(apperror.ErrUnauthorized, "token issued for another app")
	}
	if !slices.Contains(claims.UserPermissions, manageAppsPermission) {
		return nil, errors.Wrap(apperror.ErrUnauthorized, "missing MANAGE_APPS permission")
	}
	return claims, nil
}
