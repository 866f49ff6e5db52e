package genai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/oauth2"
)

const (
	defaultBaseURL    = "https://generativelanguage.googleapis.com"
	defaultModel      = "gemini-2.5-flash"
	defaultEmbedModel = "gemini-embedding-001"
	defaultImageModel = "imagen-3.0-generate-002"
)

// Config holds configuration for the generative AI client.
type Config struct {
	// APIKey is the caller-supplied key. Optional when TokenSource is
	// set, unless a request enables web-search grounding.
	APIKey string

	// TokenSource provides OAuth bearer tokens when no API key is
	// supplied. Token acquisition itself is out of scope for this
	// client.
	TokenSource oauth2.TokenSource

	// BaseURL (default: https://generativelanguage.googleapis.com)
	BaseURL string

	// UploadEndpoint (default: {BaseURL}/upload/v1beta/files)
	UploadEndpoint string

	Model      string // generation model (default: gemini-2.5-flash)
	EmbedModel string // embedding model (default: gemini-embedding-001)
	ImageModel string // image model (default: imagen-3.0-generate-002)

	// RetryCount is the total attempt budget per logical request
	// (default: 1, i.e. no retry). RetryDelay is the constant wait
	// between attempts (default: 2s).
	RetryCount int
	RetryDelay time.Duration

	Timeout    time.Duration // HTTP timeout (default: 60s)
	HTTPClient Doer          // injected transport (optional)
	Logger     hclog.Logger  // logger (optional)
}

func (c Config) validate() error {
	return validation.Errors{
		"BaseURL":    validation.Validate(c.BaseURL, validation.Required, is.URL),
		"Model":      validation.Validate(c.Model, validation.Required),
		"RetryCount": validation.Validate(c.RetryCount, validation.Min(1)),
	}.Filter()
}

// Client calls a Google-style generative AI API. Each operation issues
// blocking HTTP calls through a retrying executor; there is no
// concurrent fan-out within a single operation.
type Client struct {
	cfg    Config
	exec   *executor
	logger hclog.Logger
}

// NewClient creates a generative AI client, filling config defaults.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.UploadEndpoint == "" {
		cfg.UploadEndpoint = cfg.BaseURL + "/upload/v1beta/files"
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.EmbedModel == "" {
		cfg.EmbedModel = defaultEmbedModel
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = defaultImageModel
	}
	if cfg.RetryCount == 0 {
		cfg.RetryCount = 1
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid genai config: %w", err)
	}

	logger := cfg.Logger.Named("genai-client")
	return &Client{
		cfg:    cfg,
		exec:   newExecutor(cfg.HTTPClient, cfg.RetryCount, cfg.RetryDelay, logger),
		logger: logger,
	}, nil
}

// NewPrompt returns an empty prompt builder wired to this client's
// logger.
func (c *Client) NewPrompt() *PromptBuilder {
	return NewPromptBuilder(c.logger)
}

// GenerateResult is a parsed generation response.
type GenerateResult struct {
	Candidates []Candidate
	Usage      *UsageMetadata
}

// Text concatenates the non-thought text parts of the first candidate.
func (r *GenerateResult) Text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, part := range r.Candidates[0].Content.Parts {
		if part.Text != "" && !part.Thought {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

// Thoughts returns the thought-summary parts of the first candidate.
func (r *GenerateResult) Thoughts() []string {
	if len(r.Candidates) == 0 {
		return nil
	}
	var thoughts []string
	for _, part := range r.Candidates[0].Content.Parts {
		if part.Text != "" && part.Thought {
			thoughts = append(thoughts, part.Text)
		}
	}
	return thoughts
}

// Images decodes the inline image parts of the first candidate.
func (r *GenerateResult) Images() ([][]byte, error) {
	if len(r.Candidates) == 0 {
		return nil, nil
	}
	var images [][]byte
	for _, part := range r.Candidates[0].Content.Parts {
		if part.InlineData == nil {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
		if err != nil {
			return nil, &ProtocolError{Reason: "inline image data is not valid base64", Err: err}
		}
		images = append(images, data)
	}
	return images, nil
}

// Generate sends the prompt to the generation endpoint. Authentication
// and output format are resolved fresh for every call; nothing is
// cached between requests.
func (c *Client) Generate(ctx context.Context, prompt *PromptBuilder) (*GenerateResult, error) {
	if err := prompt.Err(); err != nil {
		return nil, err
	}

	decision, err := resolveAuth(prompt, c.cfg.APIKey, c.cfg.TokenSource)
	if err != nil {
		return nil, err
	}

	body := prompt.buildRequest()
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.cfg.BaseURL, c.cfg.Model)
	header := jsonHeader()
	endpoint, err = decision.applyTo(endpoint, header)
	if err != nil {
		return nil, fmt.Errorf("failed to build endpoint: %w", err)
	}

	var resp generateResponse
	if err := c.exec.executeJSON(ctx, endpoint, requestSpec{
		method: http.MethodPost,
		header: header,
		body:   payload,
	}, &resp); err != nil {
		return nil, err
	}

	result := &GenerateResult{
		Candidates: resp.Candidates,
		Usage:      resp.UsageMetadata,
	}

	tokens := 0
	if result.Usage != nil {
		tokens = result.Usage.TotalTokenCount
	}
	c.logger.Info("generated content",
		"model", c.cfg.Model,
		"candidates", len(result.Candidates),
		"total_tokens", tokens,
	)
	return result, nil
}

// Embed generates a vector embedding for a single text. The embedding
// endpoint always authenticates with the API key.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	if c.cfg.APIKey == "" {
		return nil, &MissingCredentialError{Reason: "embedding requires an API key"}
	}

	payload, err := json.Marshal(embedRequest{
		Content: Content{Parts: []Part{{Text: text}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:embedContent?key=%s",
		c.cfg.BaseURL, c.cfg.EmbedModel, c.cfg.APIKey)

	var resp embedResponse
	if err := c.exec.executeJSON(ctx, endpoint, requestSpec{
		method: http.MethodPost,
		header: jsonHeader(),
		body:   payload,
	}, &resp); err != nil {
		return nil, err
	}

	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, &ProtocolError{Reason: "embedding response is missing values"}
	}
	return resp.Embedding.Values, nil
}

// ImageOptions tunes image generation.
type ImageOptions struct {
	SampleCount int    // number of images (default: 1)
	AspectRatio string // e.g. "1:1", "16:9" (optional)
}

// GenerateImage produces images from a text prompt via the predict
// endpoint. Always authenticates with the API key.
func (c *Client) GenerateImage(ctx context.Context, prompt string, opts ImageOptions) ([][]byte, error) {
	if c.cfg.APIKey == "" {
		return nil, &MissingCredentialError{Reason: "image generation requires an API key"}
	}
	if opts.SampleCount <= 0 {
		opts.SampleCount = 1
	}

	payload, err := json.Marshal(predictRequest{
		Instances: []predictInstance{{Prompt: prompt}},
		Parameters: predictParameters{
			SampleCount: opts.SampleCount,
			AspectRatio: opts.AspectRatio,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:predict?key=%s",
		c.cfg.BaseURL, c.cfg.ImageModel, c.cfg.APIKey)

	var resp predictResponse
	if err := c.exec.executeJSON(ctx, endpoint, requestSpec{
		method: http.MethodPost,
		header: jsonHeader(),
		body:   payload,
	}, &resp); err != nil {
		return nil, err
	}

	if len(resp.Predictions) == 0 {
		return nil, &ProtocolError{Reason: "predict response has no predictions"}
	}
	images := make([][]byte, 0, len(resp.Predictions))
	for _, p := range resp.Predictions {
		if p.BytesBase64Encoded == "" {
			return nil, &ProtocolError{Reason: "prediction is missing bytesBase64Encoded"}
		}
		data, err := base64.StdEncoding.DecodeString(p.BytesBase64Encoded)
		if err != nil {
			return nil, &ProtocolError{Reason: "prediction bytes are not valid base64", Err: err}
		}
		images = append(images, data)
	}
	return images, nil
}

// Upload registers a large attachment with the file service through the
// two-phase upload protocol and returns a reference usable with
// PromptBuilder.AttachByReference. The upload endpoint only accepts an
// API key; OAuth is not an option for this sub-protocol.
func (c *Client) Upload(ctx context.Context, a Attachment) (*FileRef, error) {
	if c.cfg.APIKey == "" {
		return nil, &MissingCredentialError{Reason: "file upload requires an API key"}
	}
	if err := validateUploadAttachment(a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if !IsSupportedMediaType(a.MediaType) {
		return nil, &UnsupportedMediaTypeError{MediaType: a.MediaType}
	}

	session := &uploadSession{
		exec:        c.exec,
		endpoint:    c.cfg.UploadEndpoint,
		apiKey:      c.cfg.APIKey,
		totalBytes:  len(a.Data),
		mediaType:   a.MediaType,
		displayName: a.Name,
	}

	if err := session.start(ctx); err != nil {
		return nil, err
	}

	ref, err := session.uploadAndFinalize(ctx, a.Data)
	if err != nil {
		return nil, err
	}

	c.logger.Info("uploaded file",
		"display_name", a.Name,
		"media_type", a.MediaType,
		"bytes", len(a.Data),
		"uri", ref.URI,
	)
	return ref, nil
}
