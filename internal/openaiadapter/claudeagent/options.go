package claudeagent

import (
	"github.com/florianilch/agentgate/internal/agentcli"
	"github.com/florianilch/agentgate/internal/openaiadapter"
)

// buildOptions maps the honored request fields onto agent CLI options for one
// concrete target model. Unsupported OpenAI parameters never appear here; see
// CreateChatCompletionRequest.IgnoredParameters for the audited drop set.
func buildOptions(req openaiadapter.CreateChatCompletionRequest, target, systemPrompt string) agentcli.Options {
	opts := agentcli.Options{
		Model:           target,
		SystemPrompt:    systemPrompt,
		AllowedTools:    req.AllowedTools,
		DisallowedTools: req.DisallowedTools,
	}

	if req.MaxTurns != nil {
		opts.MaxTurns = *req.MaxTurns
	}
	if req.PermissionMode != nil {
		opts.PermissionMode = *req.PermissionMode
	}
	if req.WorkingDirectory != nil {
		opts.WorkDir = *req.WorkingDirectory
	}

	return opts
}
