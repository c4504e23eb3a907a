// =============================================================================
// Lambda: generate-article
// =============================================================================
//
// POST {"links": [...], "wordCount": 300, "headline": "...", "tone": "neutral"}
// に対して、選ばれた記事の引用から生成した記事を返すLambda関数
//
// 環境変数:
//   - OPENAI_API_KEY:  記事生成に使うAPIキー (必須)
//   - GENERATE_MODEL:  生成モデル (デフォルト: gpt-4-turbo)
//   - FETCH_INTERVAL:  記事取得の間隔 (デフォルト: 1s)
//   - FETCH_TIMEOUT:   取得タイムアウト (デフォルト: 10s)
//   - LOG_LEVEL:       ログレベル (デフォルト: info)
//
// 記事は1件ずつ取得するため、Lambdaのタイムアウトはリンク数×(間隔+取得時間)
// に生成時間を足した値より長くしておくこと。
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
	lambda.Start(svc.GenerateHandler())
}
