package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var errInvalidToken = errors.New("this download link is invalid or has expired")

type downloadClaims struct {
	BatchID string `json:"batch_id"`
	jwt.RegisteredClaims
}

// DownloadTokens signs and checks the short-lived tokens carried by download links.
type DownloadTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewDownloadTokens(secret string, ttl time.Duration) *DownloadTokens {
	return &DownloadTokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Sign returns a token for batchID valid for the configured TTL.
func (t *DownloadTokens) Sign(batchID string) (string, error) {
	now := t.now()
	claims := downloadClaims{
		BatchID: batchID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign download token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, expiry and that the token belongs to batchID.
func (t *DownloadTokens) Verify(token, batchID string) error {
	if token == "" {
		return errInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(token, &downloadClaims{}, func(tk *jwt.Token) (interface{}, error) {
		if _, ok := tk.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return errInvalidToken
	}
	claims, ok := parsed.Claims.(*downloadClaims)
	if !ok || claims.BatchID != batchID {
		return errInvalidToken
	}
	return nil
}
