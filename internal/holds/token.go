package holds

import (
	"time"

	"boxoffice/internal/shared/apperr"
	"boxoffice/pkg/clock"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the signed content of a hold token. The token is
// tamper-evident but advisory: confirmation always re-verifies live lease
// state, so a forged or replayed token gains nothing.
type TokenClaims struct {
	CustomerID string   `json:"customer_id"`
	EventID    string   `json:"event_id"`
	SeatIDs    []string `json:"seat_ids"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and verifies HMAC-signed hold tokens.
type TokenIssuer struct {
	secret []byte
	clock  clock.Clock
}

func NewTokenIssuer(secret string, clk clock.Clock) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), clock: clk}
}

// Mint signs a hold token expiring at expiresAt.
func (i *TokenIssuer) Mint(customerID, eventID string, seatIDs []string, expiresAt time.Time) (string, error) {
	claims := TokenClaims{
		CustomerID: customerID,
		EventID:    eventID,
		SeatIDs:    seatIDs,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(i.clock.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", apperr.Internal("failed to sign hold token: %v", err)
	}
	return signed, nil
}

// Verify parses and validates a hold token. Malformed, tampered and
// expired tokens all classify as bad requests.
func (i *TokenIssuer) Verify(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperr.BadRequest("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.clock.Now))
	if err != nil {
		return nil, apperr.BadRequest("invalid hold token: %v", err)
	}
	if !token.Valid {
		return nil, apperr.BadRequest("invalid hold token")
	}
	return claims, nil
}
