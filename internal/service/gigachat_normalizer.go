package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"finsync/pkg/config"

	"github.com/Role1776/gigago"
	"go.uber.org/zap"
)

const merchantSystemInstruction = `Ты нормализуешь описания банковских транзакций из чешских банков.
Для каждого описания верни короткое название продавца или контрагента (например "ALBERT", "LIDL", "NETFLIX").
Если продавца определить нельзя, верни пустую строку.
Верни ТОЛЬКО валидный JSON объект вида {"0": "...", "1": "..."}, где ключ - номер описания. Без markdown и комментариев.`

// completeFunc sends one user prompt and returns the raw model reply.
type completeFunc func(ctx context.Context, prompt string) (string, error)

// GigaChatNormalizer asks GigaChat for merchant names in one batch prompt per call. Any
// failure, or an entry the model left out, falls back to the rule normaliser.
type GigaChatNormalizer struct {
	complete completeFunc
	fallback *RuleNormalizer
	close    func()
	logger   *zap.Logger
}

func NewGigaChatNormalizer(cfg *config.GigaChatConfig, logger *zap.Logger) (*GigaChatNormalizer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GIGACHAT_API_KEY is not set")
	}

	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(context.Background(), cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	model := client.GenerativeModel("GigaChat")
	model.SystemInstruction = merchantSystemInstruction
	model.Temperature = 0.1

	complete := func(ctx context.Context, prompt string) (string, error) {
		resp, err := model.Generate(ctx, []gigago.Message{
			{Role: gigago.RoleUser, Content: prompt},
		})
		if err != nil {
			return "", fmt.Errorf("failed to generate response: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("no response from LLM")
		}
		return resp.Choices[0].Message.Content, nil
	}

	n := newGigaChatNormalizer(complete, logger)
	n.close = func() { client.Close() }
	return n, nil
}

func newGigaChatNormalizer(complete completeFunc, logger *zap.Logger) *GigaChatNormalizer {
	return &GigaChatNormalizer{
		complete: complete,
		fallback: NewRuleNormalizer(),
		close:    func() {},
		logger:   logger,
	}
}

func (n *GigaChatNormalizer) Normalize(ctx context.Context, descriptions []string) ([]string, error) {
	ruled, _ := n.fallback.Normalize(ctx, descriptions)
	if len(descriptions) == 0 {
		return ruled, nil
	}

	var prompt strings.Builder
	prompt.WriteString("Описания:\n")
	for i, d := range descriptions {
		fmt.Fprintf(&prompt, "%d: %s\n", i, sanitizeUTF8(d))
	}

	content, err := n.complete(ctx, prompt.String())
	if err != nil {
		n.logger.Warn("GigaChat merchant normalisation failed, using rules", zap.Error(err))
		return ruled, nil
	}

	names, err := parseMerchantReply(content)
	if err != nil {
		n.logger.Warn("Unparseable GigaChat reply, using rules", zap.Error(err))
		return ruled, nil
	}

	out := make([]string, len(descriptions))
	for i := range descriptions {
		name := strings.TrimSpace(names[fmt.Sprint(i)])
		if name == "" {
			name = ruled[i]
		}
		out[i] = strings.ToUpper(name)
	}
	return out, nil
}

func (n *GigaChatNormalizer) Close() {
	n.close()
}

// parseMerchantReply extracts the JSON object from a reply that may be wrapped in markdown.
func parseMerchantReply(content string) (map[string]string, error) {
	content = strings.TrimSpace(content)
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end < start {
		return nil, fmt.Errorf("invalid response format: %s", content)
	}

	var names map[string]string
	if err := json.Unmarshal([]byte(content[start:end+1]), &names); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}
	return names, nil
}
