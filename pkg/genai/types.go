// Package genai provides a client for Google-style generative AI APIs:
// multi-part prompt construction, attachment registration through a
// two-phase upload protocol, content generation with grounding tools,
// text embeddings, and image generation.
package genai

// ToolName identifies a capability the model may use while generating.
// Tools carry no configuration payload; they are either enabled or not.
type ToolName string

const (
	// ToolWebSearch grounds responses in web search results.
	ToolWebSearch ToolName = "googleSearch"

	// ToolURLContext grounds responses in content fetched from URLs
	// mentioned in the prompt.
	ToolURLContext ToolName = "urlContext"

	// ToolCodeExecution lets the model run code while answering.
	ToolCodeExecution ToolName = "codeExecution"
)

// groundingTools require plain-text output and an API key credential.
var groundingTools = []ToolName{ToolWebSearch, ToolURLContext}

// Content is one conversation turn attributed to a role.
type Content struct {
	Role  string `json:"role,omitempty"` // "user" or "model"
	Parts []Part `json:"parts"`
}

// Part is one semantic unit within a turn. Exactly one field group is
// set per part; variants are never merged. ExecutableCode and thought
// parts are produced by the model only.
type Part struct {
	Text           string          `json:"text,omitempty"`
	Thought        bool            `json:"thought,omitempty"`
	InlineData     *Blob           `json:"inlineData,omitempty"`
	FileData       *FileData       `json:"fileData,omitempty"`
	ExecutableCode *ExecutableCode `json:"executableCode,omitempty"`
}

// Blob is inline binary data, base64-encoded. Suitable for small
// payloads only; large attachments go through Upload and FileData.
type Blob struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// FileData references an attachment previously registered with the file
// service. No size bound applies.
type FileData struct {
	MimeType string `json:"mimeType"`
	FileURI  string `json:"fileUri"`
}

// ExecutableCode is code the model produced and ran.
type ExecutableCode struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

// FileRef describes a registered file, as returned by Upload.
type FileRef struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType"`
	Name     string `json:"name,omitempty"`
}

// GenerationConfig tunes how the model produces output. ResponseMimeType
// and ResponseModalities are mutually exclusive; the output format
// resolver enforces that immediately before each request.
type GenerationConfig struct {
	Temperature        *float64        `json:"temperature,omitempty"`
	TopK               *int            `json:"topK,omitempty"`
	TopP               *float64        `json:"topP,omitempty"`
	MaxOutputTokens    int             `json:"maxOutputTokens,omitempty"`
	ThinkingConfig     *ThinkingConfig `json:"thinkingConfig,omitempty"`
	ResponseMimeType   string          `json:"responseMimeType,omitempty"`
	ResponseModalities []string        `json:"responseModalities,omitempty"`
}

func (c GenerationConfig) isZero() bool {
	return c.Temperature == nil &&
		c.TopK == nil &&
		c.TopP == nil &&
		c.MaxOutputTokens == 0 &&
		c.ThinkingConfig == nil &&
		c.ResponseMimeType == "" &&
		len(c.ResponseModalities) == 0
}

// ThinkingConfig caps internal reasoning tokens and controls whether
// thought summaries are returned.
type ThinkingConfig struct {
	ThinkingBudget  *int `json:"thinkingBudget,omitempty"`
	IncludeThoughts bool `json:"includeThoughts,omitempty"`
}

// toolSpec is the wire form of an enabled tool: presence of the empty
// object activates the capability.
type toolSpec struct {
	GoogleSearch  *struct{} `json:"googleSearch,omitempty"`
	URLContext    *struct{} `json:"urlContext,omitempty"`
	CodeExecution *struct{} `json:"codeExecution,omitempty"`
}

type generateRequest struct {
	Contents          []Content         `json:"contents"`
	SystemInstruction *Content          `json:"systemInstruction,omitempty"`
	Tools             []toolSpec        `json:"tools,omitempty"`
	GenerationConfig  *GenerationConfig `json:"generationConfig,omitempty"`
}

// Candidate is one generated answer.
type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
	Index        int     `json:"index"`
}

// UsageMetadata reports token consumption for a generation.
type UsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	ThoughtsTokenCount   int `json:"thoughtsTokenCount,omitempty"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

type generateResponse struct {
	Candidates    []Candidate    `json:"candidates"`
	UsageMetadata *UsageMetadata `json:"usageMetadata,omitempty"`
}

type embedRequest struct {
	Content Content `json:"content"`
}

type embedResponse struct {
	Embedding *struct {
		Values []float64 `json:"values"`
	} `json:"embedding"`
}

type predictRequest struct {
	Instances  []predictInstance `json:"instances"`
	Parameters predictParameters `json:"parameters"`
}

type predictInstance struct {
	Prompt string `json:"prompt"`
}

type predictParameters struct {
	SampleCount int    `json:"sampleCount"`
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type predictResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
	} `json:"predictions"`
}
