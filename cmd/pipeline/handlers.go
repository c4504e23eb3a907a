// =============================================================================
// handlers.go - コマンドハンドラ
// =============================================================================
//
// 【このファイルで提供する機能】
//   - runDiscover:  -subject でリンク検索
//   - runGenerate:  -links で記事生成（またはプロンプト出力）
//   - clipToNotion: 生成記事をNotionに保存
//
// =============================================================================
package main

import (
	"context"
	"os"

	"quote-relay/internal/pipeline"
)

// promptOutput は -promptOnly 時の出力
type promptOutput struct {
	Prompt string `json:"prompt"`
}

// newService はOpenAIクライアント付きのServiceを作る
//
// requireLLM がfalseでAPIキーが無い場合は、翻訳・生成なしで作る。
func newService(cfg *pipeline.Config, requireLLM bool) *pipeline.Service {
	client, err := pipeline.NewOpenAIClient(cfg.LLM)
	if err != nil {
		if requireLLM {
			errorf("set OPENAI_API_KEY (OpenAI API key) in your environment")
			infof("To inspect the assembled prompt without generating, use -promptOnly")
			os.Exit(1)
		}
		return pipeline.NewService(cfg, nil, nil, logger)
	}
	return pipeline.NewService(cfg, client, client, logger)
}

// runDiscover は検索語から記事候補を出力する
func runDiscover(ctx context.Context, cfg *pipeline.Config) {
	svc := newService(cfg, true)

	resp, err := svc.HandleGetLinks(ctx, cfg.Input.Subject)
	if err != nil {
		fatalf("%s", pipeline.UserMessage(err))
	}
	if err := pipeline.WriteJSON(cfg.Output.OutFile, resp); err != nil {
		fatalf("writing output: %v", err)
	}
	infof("found %d candidate links for %q", len(resp.Links), cfg.Input.Subject)
}

// runGenerate はリンクから記事を生成して出力する
func runGenerate(ctx context.Context, cfg *pipeline.Config) {
	req := cfg.Input.Request()

	if cfg.Output.PromptOnly {
		svc := newService(cfg, false)
		prompt, err := svc.Assembler().Assemble(ctx, req)
		if err != nil {
			fatalf("%s", pipeline.UserMessage(err))
		}
		if err := pipeline.WriteJSON(cfg.Output.OutFile, promptOutput{Prompt: prompt}); err != nil {
			fatalf("writing output: %v", err)
		}
		return
	}

	svc := newService(cfg, true)
	resp, err := svc.HandleGenerate(ctx, req)
	if err != nil {
		warnf("generation failed: %v", err)
		fatalf("%s", pipeline.UserMessage(err))
	}
	if err := pipeline.WriteJSON(cfg.Output.OutFile, resp); err != nil {
		fatalf("writing output: %v", err)
	}

	if cfg.Output.NotionClip {
		clipToNotion(ctx, cfg, req, resp.Article)
	}
}

// clipToNotion は生成記事をNotionデータベースに保存する
//
// データベースIDが無い場合は -notionPageID の下に新規作成し、
// IDを .env に保存する。
func clipToNotion(ctx context.Context, cfg *pipeline.Config, req pipeline.GenerationRequest, article string) {
	notionToken := os.Getenv("NOTION_TOKEN")
	if notionToken == "" {
		fatalf("NOTION_TOKEN environment variable is required for Notion integration")
	}

	dbID := cfg.Output.NotionDatabaseID
	if dbID == "" {
		dbID = os.Getenv("NOTION_DATABASE_ID")
	}

	clipper, err := pipeline.NewNotionClipper(notionToken, dbID)
	if err != nil {
		fatalf("creating Notion clipper: %v", err)
	}

	if dbID == "" {
		if cfg.Output.NotionPageID == "" {
			fatalf("-notionPageID is required when creating a new Notion database")
		}
		infof("Creating new Notion database...")
		if err := clipper.CreateDatabase(ctx, cfg.Output.NotionPageID); err != nil {
			fatalf("creating Notion database: %v", err)
		}
		if err := saveEnvValue(".env", "NOTION_DATABASE_ID", clipper.DatabaseID()); err != nil {
			warnf("Failed to save database ID to .env: %v (NOTION_DATABASE_ID=%s)", err, clipper.DatabaseID())
		} else {
			infof("Database ID saved to .env file")
		}
	}

	valid, _ := req.Validate()
	clip := pipeline.ArticleClip{
		Headline:  valid.Headline,
		Article:   article,
		Links:     valid.Links,
		Tone:      valid.Tone,
		WordCount: valid.WordCount,
	}
	if err := clipper.ClipArticle(ctx, clip); err != nil {
		warnf("failed to clip article: %v", err)
		return
	}
	infof("Clipped article to Notion database %s", clipper.DatabaseID())
}
