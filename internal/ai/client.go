// Package ai provides the request-orchestration core: a generation client
// for the Anthropic API and the orchestrator façade that wraps it with rate
// limiting, monthly token budgets, and response caching.
package ai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/bedrock"
	"github.com/anthropics/anthropic-sdk-go/option"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"github.com/kaizenapp/kaizen/pkg/models"
)

// ErrNoCredential is returned when no usable provider credential is present.
var ErrNoCredential = errors.New("provider credential is not configured")

// placeholderKeys are credential values that must be treated as absent.
// CI pipelines inject the dummy value so builds pass without a real key.
var placeholderKeys = map[string]bool{
	"dummy-key-for-build": true,
	"changeme":            true,
}

// Generator is the call boundary the orchestrator depends on. It wraps
// exactly one provider call per Generate; retries belong to the caller.
type Generator interface {
	// Ready reports whether a usable credential is configured.
	Ready() error
	// Generate performs one text-generation call.
	Generate(ctx context.Context, model models.Model, prompt string, maxTokens int, temperature float64) (string, models.Usage, error)
}

// Client implements Generator on the Anthropic API, with an optional AWS
// Bedrock auth path.
type Client struct {
	inner   anthropic.Client
	bedrock bool
}

// ClientConfig contains configuration for creating a new Client.
type ClientConfig struct {
	// APIKey is the Anthropic API key. If empty, uses ANTHROPIC_API_KEY env var.
	APIKey string
	// UseAWSBedrock indicates whether to use AWS Bedrock instead of direct API.
	UseAWSBedrock bool
	// AWSRegion is the AWS region for Bedrock (e.g., "us-west-2").
	AWSRegion string
	// AWSProfile is the optional AWS profile name to use.
	AWSProfile string
}

// NewClient creates a generation client. A missing or placeholder credential
// is rejected here, before any network call can be attempted.
func NewClient(cfg ClientConfig) (*Client, error) {
	var opts []option.RequestOption

	if cfg.UseAWSBedrock {
		ctx := context.Background()

		var loadOpts []func(*awsconfig.LoadOptions) error
		if cfg.AWSRegion != "" {
			loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.AWSRegion))
		}
		if cfg.AWSProfile != "" {
			loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(cfg.AWSProfile))
		}

		opts = append(opts, bedrock.WithLoadDefaultConfig(ctx, loadOpts...))
	} else {
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if apiKey == "" || placeholderKeys[apiKey] {
			return nil, ErrNoCredential
		}
		opts = append(opts, option.WithAPIKey(apiKey))
	}

	return &Client{
		inner:   anthropic.NewClient(opts...),
		bedrock: cfg.UseAWSBedrock,
	}, nil
}

// Ready always succeeds for a constructed client; NewClient already
// rejected an absent credential.
func (c *Client) Ready() error {
	return nil
}

// Generate performs a single Messages call and returns the concatenated
// text content plus provider-reported usage.
func (c *Client) Generate(ctx context.Context, model models.Model, prompt string, maxTokens int, temperature float64) (string, models.Usage, error) {
	resp, err := c.inner.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       c.resolveModel(model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", models.Usage{}, fmt.Errorf("messages call: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			text.WriteString(variant.Text)
		}
	}

	usage := models.Usage{
		PromptTokens:     resp.Usage.InputTokens,
		CompletionTokens: resp.Usage.OutputTokens,
		TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
	}
	return text.String(), usage, nil
}

// resolveModel translates a model id to the Bedrock cross-region inference
// profile format when the client runs against Bedrock.
func (c *Client) resolveModel(model models.Model) anthropic.Model {
	if !c.bedrock {
		return anthropic.Model(model)
	}
	return anthropic.Model("us.anthropic." + string(model) + "-v1:0")
}
