package genai

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-hclog"
)

// PromptBuilder assembles the multi-turn, multi-part prompt sent to the
// model. All mutators return the builder so callers can chain
// configuration. Mutator failures (a bad file descriptor, an
// out-of-domain tuning value) are recorded and surfaced by Err and by
// Client.Generate; the first recorded error wins.
//
// Append operations always target the latest user turn, creating one if
// none exists. Model turns added via AppendModelTurn are never mutated
// afterwards.
//
// A builder is owned by a single flow; it is not safe for concurrent
// use.
type PromptBuilder struct {
	contents        []Content
	system          *Content
	tools           map[ToolName]struct{}
	config          GenerationConfig
	jsonOutput      bool
	imageResponse   bool
	thinkingSummary bool
	logger          hclog.Logger
	err             error
}

// NewPromptBuilder creates an empty prompt builder. Logger may be nil.
func NewPromptBuilder(logger hclog.Logger) *PromptBuilder {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &PromptBuilder{
		tools:  make(map[ToolName]struct{}),
		logger: logger,
	}
}

// Err returns the first error recorded by a mutator, if any.
func (b *PromptBuilder) Err() error {
	return b.err
}

func (b *PromptBuilder) recordErr(err error) {
	if b.err == nil {
		b.err = err
	}
}

// latestUserTurn returns the most recent user turn, or nil.
func (b *PromptBuilder) latestUserTurn() *Content {
	for i := len(b.contents) - 1; i >= 0; i-- {
		if b.contents[i].Role == "user" {
			return &b.contents[i]
		}
	}
	return nil
}

// currentUserTurn returns the latest user turn, creating one if absent.
func (b *PromptBuilder) currentUserTurn() *Content {
	if turn := b.latestUserTurn(); turn != nil {
		return turn
	}
	b.contents = append(b.contents, Content{Role: "user"})
	return &b.contents[len(b.contents)-1]
}

// AppendText adds text to the prompt. If a user turn with a text part
// already exists, the text is appended to that part separated by a
// newline, so callers can compose a prompt incrementally without
// tracking turn state themselves.
func (b *PromptBuilder) AppendText(text string) *PromptBuilder {
	turn := b.latestUserTurn()
	if turn == nil {
		b.contents = append(b.contents, Content{
			Role:  "user",
			Parts: []Part{{Text: text}},
		})
		return b
	}

	for i := range turn.Parts {
		p := &turn.Parts[i]
		if p.Text != "" && p.InlineData == nil && p.FileData == nil {
			p.Text += "\n" + text
			return b
		}
	}
	turn.Parts = append(turn.Parts, Part{Text: text})
	return b
}

// AppendModelTurn records a prior model response, preserving
// conversation order for multi-turn prompts.
func (b *PromptBuilder) AppendModelTurn(text string) *PromptBuilder {
	b.contents = append(b.contents, Content{
		Role:  "model",
		Parts: []Part{{Text: text}},
	})
	return b
}

// AttachInline encodes the attachment and appends it to the current
// user turn. Attachments with no readable bytes are skipped with a
// warning rather than failing the whole prompt; an unsupported media
// type is an error.
func (b *PromptBuilder) AttachInline(a Attachment) *PromptBuilder {
	if len(a.Data) == 0 {
		b.logger.Warn("skipping attachment with no readable bytes", "name", a.Name)
		return b
	}

	encoded, err := EncodeAttachment(a)
	if err != nil {
		b.recordErr(err)
		return b
	}

	turn := b.currentUserTurn()
	turn.Parts = append(turn.Parts, Part{
		InlineData: &Blob{MimeType: a.MediaType, Data: encoded},
	})
	return b
}

// AttachByReference appends a reference to a previously registered file.
func (b *PromptBuilder) AttachByReference(ref FileRef) *PromptBuilder {
	switch {
	case ref.URI == "":
		b.recordErr(&InvalidFileDescriptorError{Missing: "uri"})
		return b
	case ref.MimeType == "":
		b.recordErr(&InvalidFileDescriptorError{Missing: "media type"})
		return b
	}

	turn := b.currentUserTurn()
	turn.Parts = append(turn.Parts, Part{
		FileData: &FileData{MimeType: ref.MimeType, FileURI: ref.URI},
	})
	return b
}

// SetSystemInstruction replaces any existing system instruction.
func (b *PromptBuilder) SetSystemInstruction(text string) *PromptBuilder {
	b.system = &Content{Parts: []Part{{Text: text}}}
	return b
}

// SetTool toggles tool membership. Enabling an enabled tool or disabling
// an absent one is a no-op.
func (b *PromptBuilder) SetTool(name ToolName, enabled bool) *PromptBuilder {
	if enabled {
		b.tools[name] = struct{}{}
	} else {
		delete(b.tools, name)
	}
	return b
}

// SetTemperature sets the sampling temperature.
func (b *PromptBuilder) SetTemperature(t float64) *PromptBuilder {
	b.config.Temperature = &t
	return b
}

// SetTopK sets the top-k sampling cutoff.
func (b *PromptBuilder) SetTopK(k int) *PromptBuilder {
	b.config.TopK = &k
	return b
}

// SetTopP sets the nucleus sampling cutoff.
func (b *PromptBuilder) SetTopP(p float64) *PromptBuilder {
	b.config.TopP = &p
	return b
}

// SetMaxOutputTokens caps the response length.
func (b *PromptBuilder) SetMaxOutputTokens(n int) *PromptBuilder {
	b.config.MaxOutputTokens = n
	return b
}

// SetThinkingBudget caps internal reasoning tokens. The budget must be
// non-negative.
func (b *PromptBuilder) SetThinkingBudget(n int) *PromptBuilder {
	if n < 0 {
		b.recordErr(fmt.Errorf("%w: thinking budget must be non-negative, got %d", ErrInvalidArgument, n))
		return b
	}
	if b.config.ThinkingConfig == nil {
		b.config.ThinkingConfig = &ThinkingConfig{}
	}
	budget := n
	b.config.ThinkingConfig.ThinkingBudget = &budget
	return b
}

// EnableThinkingSummary requests thought summaries in the response.
func (b *PromptBuilder) EnableThinkingSummary(enabled bool) *PromptBuilder {
	b.thinkingSummary = enabled
	return b
}

// EnableImageResponse requests image output. Image and JSON output are
// mutually exclusive; enabling one disables the other, last writer
// wins.
func (b *PromptBuilder) EnableImageResponse(enabled bool) *PromptBuilder {
	if enabled && b.jsonOutput {
		b.logger.Warn("image response requested; disabling JSON output")
		b.jsonOutput = false
	}
	b.imageResponse = enabled
	return b
}

// EnableJSONOutput requests structured JSON output. See
// EnableImageResponse for the exclusivity rule.
func (b *PromptBuilder) EnableJSONOutput(enabled bool) *PromptBuilder {
	if enabled && b.imageResponse {
		b.logger.Warn("JSON output requested; disabling image response")
		b.imageResponse = false
	}
	b.jsonOutput = enabled
	return b
}

// enabledTools returns the tool set in deterministic order.
func (b *PromptBuilder) enabledTools() []ToolName {
	names := make([]ToolName, 0, len(b.tools))
	for name := range b.tools {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

func (b *PromptBuilder) hasTool(name ToolName) bool {
	_, ok := b.tools[name]
	return ok
}

func (b *PromptBuilder) hasGroundingTool() bool {
	for _, name := range groundingTools {
		if b.hasTool(name) {
			return true
		}
	}
	return false
}

// buildRequest assembles the wire request. The generation config is
// resolved against the current tool and flag state on every call; it is
// never cached, because both can change between calls on the same
// builder.
func (b *PromptBuilder) buildRequest() generateRequest {
	req := generateRequest{
		Contents:          b.contents,
		SystemInstruction: b.system,
	}

	for _, name := range b.enabledTools() {
		var spec toolSpec
		switch name {
		case ToolWebSearch:
			spec.GoogleSearch = &struct{}{}
		case ToolURLContext:
			spec.URLContext = &struct{}{}
		case ToolCodeExecution:
			spec.CodeExecution = &struct{}{}
		}
		req.Tools = append(req.Tools, spec)
	}

	cfg := b.resolvedConfig()
	if !cfg.isZero() {
		req.GenerationConfig = &cfg
	}
	return req
}

// resolvedConfig applies the output format rules and the thinking
// summary flag to a copy of the generation config.
func (b *PromptBuilder) resolvedConfig() GenerationConfig {
	cfg := resolveOutputFormat(b, b.config, b.logger)

	if b.thinkingSummary {
		if cfg.ThinkingConfig == nil {
			cfg.ThinkingConfig = &ThinkingConfig{}
		} else {
			tc := *cfg.ThinkingConfig
			cfg.ThinkingConfig = &tc
		}
		cfg.ThinkingConfig.IncludeThoughts = true
	}
	return cfg
}
