package auth

import "errors"

var ErrNoClaims = errors.New("no authorizer claims")

// SessionId returns the subject of the JWT authorizer claims. Both the HTTP
// API shape (jwt.claims) and the REST API shape (claims) are accepted.
func SessionId(authorizer map[string]interface{}) (string, error) {
	v, exists := authorizer["claims"]
	if jwt, ok := authorizer["jwt"].(map[string]interface{}); ok {
		v, exists = jwt["claims"]
	}
	if !exists {
		return "", ErrNoClaims
	}
	claims, ok := v.(map[string]interface{})
	if !ok {
		return "", errors.New("claims must be of type map")
	}
	sessionId, ok := claims["sub"].(string)
	if !ok || sessionId == "" {
		return "", errors.New("invalid sub")
	}
	return sessionId, nil
}
