package dispatch

import "github.com/hupe1980/dispatchmesh/core"

// resolveIdentity derives the identity for one request. Precedence:
//
//  1. a user message consisting solely of an identity token
//  2. the explicit hint supplied by the transport
//  3. the most recent bare-token user message in the history
//     (the previously active identity)
//  4. the well-known fallback identity
//
// Tokens are never extracted from substrings; see core.ParseIdentityToken.
func resolveIdentity(req core.Request, fallback string) (identity string, announced bool) {
	if tok, ok := core.ParseIdentityToken(req.UserMessage); ok {
		return tok, true
	}
	if tok, ok := core.ParseIdentityToken(req.IdentityHint); ok {
		return tok, false
	}
	for i := len(req.ConversationHistory) - 1; i >= 0; i-- {
		m := req.ConversationHistory[i]
		if m.Role != core.RoleUser {
			continue
		}
		if tok, ok := core.ParseIdentityToken(m.Content); ok {
			return tok, false
		}
	}
	return fallback, false
}
