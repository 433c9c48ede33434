package claudeagent

import (
	"errors"

	"github.com/florianilch/agentgate/internal/agentcli"
	"github.com/florianilch/agentgate/internal/openaiadapter"
)

// toCompletionError converts transport failures into OpenAI-compatible error
// envelopes. The taxonomy is deliberately small: authentication problems are
// client-visible 401-equivalents instructing re-authentication, transport
// failures are 5xx-equivalents, everything else is a generic server error.
func toCompletionError(err error) *openaiadapter.ErrorResponse {
	if err == nil {
		return nil
	}

	var errResp *openaiadapter.ErrorResponse
	if errors.As(err, &errResp) {
		return errResp
	}

	if errors.Is(err, agentcli.ErrAuthRequired) {
		return openaiadapter.NewError(
			openaiadapter.ErrorTypeAuthentication,
			"Upstream authentication required. Re-authenticate with 'agentgate auth login' or provide a valid "+agentcli.TokenEnvVar+".",
		)
	}

	if agentcli.IsUnavailable(err) {
		return openaiadapter.NewError(
			openaiadapter.ErrorTypeAPI,
			"Upstream agent unavailable: "+err.Error(),
		)
	}

	return openaiadapter.NewError(openaiadapter.ErrorTypeServer, err.Error())
}
