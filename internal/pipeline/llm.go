// =============================================================================
// llm.go - 翻訳・記事生成サービス（OpenAI Chat Completions）
// =============================================================================
//
// 外部の言語モデル呼び出しを2つの狭いインターフェースの裏に隠す。
//
//   Translator.Translate(ctx, text)          -> 英訳テキスト
//   Generator.Generate(ctx, prompt, options) -> 生成記事
//
// パイプライン本体はインターフェースにだけ依存するので、テストでは
// TranslatorFunc / GeneratorFunc のスタブを渡して決定的に動かせる。
//
// 【OpenAIClient】
//   POST {BaseURL}/chat/completions に JSON を送る。
//   レスポンスの内容は検証しない（最初の choice の message.content を返すだけ）。
//
// =============================================================================
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// translatePrompt は見出し翻訳の固定指示文
const translatePrompt = "Translate this to English (be concise, preserve proper names):\n\n"

// Translator は見出しを英語に翻訳する
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// GenerateOptions は生成時のパラメータ
type GenerateOptions struct {
	Temperature float64
}

// Generator はプロンプトから記事を生成する
type Generator interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// TranslatorFunc は関数をTranslatorとして使うためのアダプタ
type TranslatorFunc func(ctx context.Context, text string) (string, error)

func (f TranslatorFunc) Translate(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}

// GeneratorFunc は関数をGeneratorとして使うためのアダプタ
type GeneratorFunc func(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	return f(ctx, prompt, opts)
}

// =============================================================================
// OpenAI Chat Completions API 構造体
// =============================================================================

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// OpenAIClient はTranslatorとGeneratorの両方を実装する
type OpenAIClient struct {
	cfg    LLMConfig
	client *http.Client
}

// NewOpenAIClient はOpenAIClientを作る
//
// APIキーが無い場合はエラー（呼び出し時ではなく起動時に気付けるように）。
func NewOpenAIClient(cfg LLMConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OPENAI_API_KEY is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	return &OpenAIClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Translate は見出しを英語に翻訳する
func (c *OpenAIClient) Translate(ctx context.Context, text string) (string, error) {
	out, err := c.complete(ctx, c.cfg.TranslateModel, translatePrompt+text, nil)
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}
	return out, nil
}

// Generate はプロンプトから記事を生成する
func (c *OpenAIClient) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	temp := opts.Temperature
	out, err := c.complete(ctx, c.cfg.GenerateModel, prompt, &temp)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return out, nil
}

// complete はuserメッセージ1件でChat Completionsを呼ぶ
func (c *OpenAIClient) complete(ctx context.Context, model, content string, temperature *float64) (string, error) {
	b, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    []chatMessage{{Role: "user", Content: content}},
		Temperature: temperature,
	})
	if err != nil {
		return "", err
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	// HTTPエラーチェック（300番台以上はエラー）
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("openai chat completions error: %s\n%s", resp.Status, string(bodyBytes))
	}

	var r chatResponse
	if err := json.Unmarshal(bodyBytes, &r); err != nil {
		return "", fmt.Errorf("failed to parse openai response: %w", err)
	}
	if len(r.Choices) == 0 {
		return "", errors.New("openai response has no choices")
	}
	return strings.TrimSpace(r.Choices[0].Message.Content), nil
}
