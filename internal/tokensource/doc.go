// Package tokensource implements the OAuth2 authorization flow against
// Anthropic's token endpoint.
//
// Anthropic's OAuth2 implementation requires custom handling in a few ways:
//   - Token exchange uses a JSON-encoded request (OAuth2 typically uses form-encoding)
//   - Token exchange requires a "state" field in the request body
//   - Authorization codes are returned in "code#state" format requiring custom parsing
//
// # OAuth2 Authorization Flow
//
// Use Authorizer for the interactive flow that obtains the long-lived token
// the gateway hands to the agent CLI:
//
//	auth := tokensource.NewAuthorizer(tokensource.Endpoint, tokensource.RedirectURL)
//	verifier := oauth2.GenerateVerifier() // Save for Exchange call
//	authURL := auth.AuthCodeURL(verifier)
//	// After user authorizes, Anthropic redirects with "code#state" format
//	codeWithState := "auth_code_xyz#state_value" // Extract from redirect
//	token, err := auth.Exchange(ctx, codeWithState, verifier)
//	// Persist token.AccessToken via the configured credential store
package tokensource
