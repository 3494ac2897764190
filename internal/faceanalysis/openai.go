package faceanalysis

import (
	"context"
	_ "embed"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"go.uber.org/zap"

	"github.com/example/makeup-recommender/internal/logging"
)

//go:embed prompt.txt
var analysisPrompt string

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = openai.ChatModelGPT4_1Mini

// OpenAIAnalyzer estimates the skin tone signal with a vision chat model.
type OpenAIAnalyzer struct {
	client *openai.Client
	model  openai.ChatModel
	logger *zap.Logger
}

// NewOpenAIAnalyzer builds an analyzer for the given API key. Extra
// request options (base URL, HTTP client) are passed to the SDK.
func NewOpenAIAnalyzer(apiKey, model string, logger *zap.Logger, opts ...option.RequestOption) *OpenAIAnalyzer {
	chatModel := DefaultOpenAIModel
	if model != "" {
		chatModel = openai.ChatModel(model)
	}
	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &OpenAIAnalyzer{client: &client, model: chatModel, logger: logger.Named("openai_analyzer")}
}

// AnalyzeFace sends a JPEG image to the model and parses its JSON answer.
func (a *OpenAIAnalyzer) AnalyzeFace(ctx context.Context, image []byte) (*Result, error) {
	imageURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image)

	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: a.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String(analysisPrompt),
					},
				},
			},
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfArrayOfContentParts: []openai.ChatCompletionContentPartUnionParam{
							openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
								URL:    imageURL,
								Detail: "low",
							}),
						},
					},
				},
			},
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
		MaxTokens: openai.Int(100),
	})
	if err != nil {
		wrapped := logging.NewOperationError("faceanalysis.openai_chat", "", err)
		a.logger.Error("openai request failed", zap.Error(wrapped))
		return nil, wrapped
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no response from OpenAI")
	}

	return parsePayload([]byte(resp.Choices[0].Message.Content))
}

func parsePayload(data []byte) (*Result, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode analysis response: %w", err)
	}
	return p.Result()
}
