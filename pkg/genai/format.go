package genai

import "github.com/hashicorp/go-hclog"

const mimeTypeJSON = "application/json"

// formatRule is one entry in the ordered output-format precedence list.
// Rules are evaluated top to bottom; the first match applies and all
// competing settings are cleared from the effective config.
type formatRule struct {
	name  string
	match func(b *PromptBuilder) bool
	apply func(cfg *GenerationConfig)
}

// formatRules is evaluated in order. New rules must be inserted at the
// position that reflects their precedence, not appended.
var formatRules = []formatRule{
	{
		// Grounding does not support structured or multi-modal output;
		// any grounding tool forces plain text.
		name:  "grounding-forces-plain-text",
		match: func(b *PromptBuilder) bool { return b.hasGroundingTool() },
		apply: func(cfg *GenerationConfig) {
			cfg.ResponseMimeType = ""
			cfg.ResponseModalities = nil
		},
	},
	{
		name:  "json-output",
		match: func(b *PromptBuilder) bool { return b.jsonOutput },
		apply: func(cfg *GenerationConfig) {
			cfg.ResponseMimeType = mimeTypeJSON
			cfg.ResponseModalities = nil
		},
	},
	{
		name:  "image-response",
		match: func(b *PromptBuilder) bool { return b.imageResponse },
		apply: func(cfg *GenerationConfig) {
			cfg.ResponseModalities = []string{"TEXT", "IMAGE"}
			cfg.ResponseMimeType = ""
		},
	},
	{
		name:  "default-plain-text",
		match: func(b *PromptBuilder) bool { return true },
		apply: func(cfg *GenerationConfig) {
			cfg.ResponseMimeType = ""
			cfg.ResponseModalities = nil
		},
	},
}

// resolveOutputFormat reconciles the requested output shape against the
// active tool set. It operates on a copy and is invoked immediately
// before every request, never cached: tool and flag state can change
// between calls on the same builder.
func resolveOutputFormat(b *PromptBuilder, cfg GenerationConfig, logger hclog.Logger) GenerationConfig {
	for _, rule := range formatRules {
		if !rule.match(b) {
			continue
		}
		rule.apply(&cfg)
		if rule.name == "grounding-forces-plain-text" && (b.jsonOutput || b.imageResponse) {
			logger.Warn("grounding tool active; forcing plain-text output", "rule", rule.name)
		}
		return cfg
	}
	return cfg
}
