// =============================================================================
// main.go - Quote Relay パイプラインのエントリーポイント
// =============================================================================
//
// 記事候補の検索と、選んだ記事の引用から新しい記事を書くCLIツールです。
//
// =============================================================================
// 【2つの運用モード】
// =============================================================================
//
// 🟢 モード1: リンク検索（-subject）
//    ./pipeline -subject="climate change"
//    → {"links": [{link, originalHeadline, translatedHeadline}, ...]}（最大5件）
//
// 🔵 モード2: 記事生成（-links）
//    ./pipeline -links=URL1,URL2 -wordCount=300 -tone=neutral
//    → {"article": "..."}
//    -promptOnly を付けると生成サービスを呼ばずに {"prompt": "..."} を出力
//    -notionClip を付けると生成記事をNotionデータベースに保存
//
// =============================================================================
// 【処理フロー（モード2）】
// =============================================================================
//
//   ┌─────────────┐    ┌─────────────┐    ┌─────────────┐    ┌─────────────┐
//   │  1. 検証    │ -> │  2. 取得    │ -> │  3. 引用数  │ -> │  4. 生成    │
//   │  語数/リンク │    │  1件ずつ    │    │  3件以上？  │    │  OpenAI     │
//   └─────────────┘    └─────────────┘    └─────────────┘    └─────────────┘
//
// 【環境変数】
//   - OPENAI_API_KEY:     翻訳・生成に使うAPIキー（-promptOnly以外は必須）
//   - NOTION_TOKEN:       -notionClip 時に必要
//   - NOTION_DATABASE_ID: 既存のデータベースID（任意）
//   - LOG_LEVEL / LOG_FORMAT
//
// - 結果のJSONは標準出力、ログは標準エラー出力
//
// =============================================================================
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv" // .env ファイル読み込み

	"quote-relay/internal/pipeline"
)

func main() {
	// .env ファイルから環境変数を読み込み
	// ファイルが存在しない場合も処理は続行する
	envErr := godotenv.Load()

	cfg, err := pipeline.ParseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	if err := initLogger(cfg.Log); err != nil {
		fatalf("initializing logger: %v", err)
	}
	defer syncLogger()

	if envErr != nil {
		debugf(".env file not loaded: %v (using environment variables only)", envErr)
	}

	// Ctrl-C で実行中の取得も止める
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case cfg.Input.Subject != "":
		runDiscover(ctx, cfg)
	case cfg.Input.LinksRaw != "":
		runGenerate(ctx, cfg)
	default:
		fatalf("either -subject or -links is required")
	}
}
