// =============================================================================
// Lambda: get-links
// =============================================================================
//
// POST {"subject": "..."} に対して記事候補（最大5件）を返すLambda関数
//
// 環境変数:
//   - OPENAI_API_KEY:  見出し翻訳に使うAPIキー (必須)
//   - SITE_URL:        検索対象のWordPressサイト (任意)
//   - DISCOVERY_MODE:  html | feed (デフォルト: html)
//   - FETCH_TIMEOUT:   取得タイムアウト (デフォルト: 10s)
//   - LOG_LEVEL:       ログレベル (デフォルト: info)
//
// =============================================================================
package main

import (
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"quote-relay/internal/pipeline"
)

func main() {
	cfg := pipeline.LoadEnvConfig()

	logger, err := pipeline.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer logger.Sync()

	client, err := pipeline.NewOpenAIClient(cfg.LLM)
	if err != nil {
		log.Fatalf("Error creating OpenAI client: %v", err)
	}

	svc := pipeline.NewService(cfg, client, client, logger)
	lambda.Start(svc.GetLinksHandler())
}
