package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v4"
)

const jwtClaimPlayerID = "player_id"

// GetPlayerIDFromContext extracts the acting player's id from the JWT
// claims the Authenticate middleware stored.
func GetPlayerIDFromContext(ctx context.Context) (int, error) {
	claims, ok := ctx.Value(claimsContextKey).(jwt.MapClaims)
	if !ok {
		return 0, errors.New("player claims not found in context or invalid type")
	}

	claim, ok := claims[jwtClaimPlayerID]
	if !ok {
		return 0, fmt.Errorf("missing '%s' claim in token", jwtClaimPlayerID)
	}

	// JSON numbers decode as float64; some issuers send strings.
	switch v := claim.(type) {
	case float64:
		if v != float64(int(v)) || int(v) <= 0 {
			return 0, fmt.Errorf("invalid player id value in '%s' claim: %v", jwtClaimPlayerID, v)
		}
		return int(v), nil
	case string:
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			return 0, fmt.Errorf("invalid player id value in '%s' claim: %q", jwtClaimPlayerID, v)
		}
		return id, nil
	default:
		return 0, fmt.Errorf("invalid type for '%s' claim: %T", jwtClaimPlayerID, claim)
	}
}
