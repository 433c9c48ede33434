package tokensource

import "golang.org/x/oauth2"

// ClientID is the public OAuth client ID for the Claude CLI integration.
const ClientID = "9d1c250a-e61b-44d9-88ed-5944d1962f5e"

// RedirectURL is the out-of-band callback page that displays the
// authorization code for manual copy-paste.
const RedirectURL = "https://console.anthropic.com/oauth/code/callback"

// Endpoint is Anthropic's OAuth2 endpoint pair.
var Endpoint = oauth2.Endpoint{
	AuthURL:  "https://claude.ai/oauth/authorize",
	TokenURL: "https://console.anthropic.com/v1/oauth/token",
}

// scopes requested during authorization. Inference access is what the gateway
// needs; the profile scope is required by the consent screen.
var scopes = []string{
	"org:create_api_key",
	"user:profile",
	"user:inference",
}
