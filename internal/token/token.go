// ABOUTME: Decodes the payload segment of three-part credential tokens
// ABOUTME: No signature verification; the identity service is the trust boundary

package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedToken is returned when a token is structurally invalid
var ErrMalformedToken = errors.New("malformed token")

// Claims is the decoded token payload. Only sub, email and is_superuser
// are meaningful; iat and exp are read when numeric and skipped otherwise.
type Claims struct {
	Subject     string
	Email       string
	IsSuperuser bool
	IssuedAt    *time.Time
	ExpiresAt   *time.Time
}

// segmentParser decodes base64url segments with or without padding
var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// Decode splits the token and parses its payload segment into Claims.
// Any JSON object is accepted; fields of unexpected type are ignored.
func Decode(raw string) (*Claims, error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformedToken, len(parts))
	}

	payload, err := segmentParser.DecodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: invalid payload encoding: %v", ErrMalformedToken, err)
	}

	var fields map[string]any
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, fmt.Errorf("%w: invalid payload format: %v", ErrMalformedToken, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: payload is not an object", ErrMalformedToken)
	}

	claims := &Claims{
		IsSuperuser: truthy(fields["is_superuser"]),
		IssuedAt:    numericDate(fields["iat"]),
		ExpiresAt:   numericDate(fields["exp"]),
	}
	claims.Subject, _ = fields["sub"].(string)
	claims.Email, _ = fields["email"].(string)
	return claims, nil
}

// truthy treats true, non-zero numbers and non-empty strings as set
func truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x != 0 && !math.IsNaN(x)
	case string:
		return x != ""
	default:
		return false
	}
}

func numericDate(v any) *time.Time {
	secs, ok := v.(float64)
	if !ok || math.IsInf(secs, 0) || math.IsNaN(secs) {
		return nil
	}
	whole, frac := math.Modf(secs)
	t := time.Unix(int64(whole), int64(frac*1e9)).UTC()
	return &t
}

// Unsigned mints a token with an "alg: none" header and an empty signature.
// It decodes with Decode but is rejected by any verifying server.
func Unsigned(claims *Claims) (string, error) {
	payload := jwt.MapClaims{"sub": claims.Subject}
	if claims.Email != "" {
		payload["email"] = claims.Email
	}
	if claims.IsSuperuser {
		payload["is_superuser"] = true
	}
	if claims.IssuedAt != nil {
		payload["iat"] = jwt.NewNumericDate(*claims.IssuedAt)
	}
	if claims.ExpiresAt != nil {
		payload["exp"] = jwt.NewNumericDate(*claims.ExpiresAt)
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodNone, payload)
	s, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		return "", fmt.Errorf("sign unsigned token: %w", err)
	}
	return s, nil
}
