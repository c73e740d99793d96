package llmcomplete

import (
	"context"
	"net/http"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// openAISender speaks the OpenAI chat-completions shape, which every catalog provider exposes.
type openAISender struct {
	client openai.Client
}

func newOpenAISender(ep endpoint) sender {
	opts := []option.RequestOption{
		option.WithBaseURL(ep.baseURL),
		option.WithMaxRetries(0), // Client.Generate owns retries.
	}
	if ep.apiKey != "" {
		opts = append(opts, option.WithAPIKey(ep.apiKey))
	}
	if ep.httpClient != nil {
		opts = append(opts, option.WithHTTPClient(ep.httpClient))
	}
	return &openAISender{client: openai.NewClient(opts...)}
}

func (s *openAISender) send(ctx context.Context, req chatRequest) (chatReply, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(req.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.system),
			openai.UserMessage(req.user),
		},
		Temperature: openai.Float(req.temperature),
	}
	if req.maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.maxTokens))
	}

	var httpResp *http.Response
	resp, err := s.client.Chat.Completions.New(ctx, params, option.WithResponseInto(&httpResp))
	if err != nil {
		return chatReply{}, classify(err, httpResp)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return chatReply{}, classify(errNoChoices, httpResp)
	}

	msg := resp.Choices[0].Message
	return chatReply{text: msg.Content, refusal: msg.Refusal}, nil
}

// available lists models, which every OpenAI-compatible server answers without spending tokens.
func (s *openAISender) available(ctx context.Context) error {
	var httpResp *http.Response
	if _, err := s.client.Models.List(ctx, option.WithResponseInto(&httpResp)); err != nil {
		return classify(err, httpResp)
	}
	return nil
}
