// =============================================================================
// assemble.go - Article Assembler（記事の収集とプロンプト生成）
// =============================================================================
//
// 【処理の流れ】
//  1. リクエストの検証（ネットワークアクセス前）
//     - リンクが1件以上 / 語数が100〜2000 / 文体が既知の値
//  2. リンクを「順番に1件ずつ」取得して本文と引用を集める
//     - 取得開始の間隔を rate.Limiter で Interval 以上空ける
//     - 取得に失敗したリンクは空の抽出として扱う
//  3. 引用が合計3件未満なら中止（生成は呼ばない）
//  4. プロンプトを組み立てる
//  5. （Generateのみ）生成サービスを呼ぶ
//
// 【なぜ順番に取得するか】
//   対象サイトへのリクエストレートを抑えるため。
//   1リクエスト内で同時に取得中の記事は常に1件以下。
//
// =============================================================================
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Assembler は複数記事から生成プロンプトを組み立てる
type Assembler struct {
	scraper     *Scraper
	generator   Generator
	interval    time.Duration
	temperature float64
	logger      *zap.Logger
}

// NewAssembler はAssemblerを作る
//
// generatorはGenerateを使う場合のみ必要（Assembleだけならnilでよい）。
func NewAssembler(scraper *Scraper, generator Generator, cfg *Config, logger *zap.Logger) *Assembler {
	return &Assembler{
		scraper:     scraper,
		generator:   generator,
		interval:    cfg.Assembly.Interval,
		temperature: cfg.LLM.Temperature,
		logger:      nopIfNil(logger),
	}
}

// Validate はリクエストの形を検証する
//
// 空白だけのリンクは取り除き、文体が空ならneutralにした正規化済みの
// リクエストを返す。
func (r GenerationRequest) Validate() (GenerationRequest, error) {
	links := make([]string, 0, len(r.Links))
	for _, l := range r.Links {
		if l = strings.TrimSpace(l); l != "" {
			links = append(links, l)
		}
	}
	if len(links) == 0 {
		return r, newError(KindBadInput, nil, "Please select at least one link")
	}
	if r.WordCount < MinWordCount || r.WordCount > MaxWordCount {
		return r, newError(KindBadInput, nil, "Word count must be between %d-%d", MinWordCount, MaxWordCount)
	}

	tone := Tone(strings.ToLower(strings.TrimSpace(string(r.Tone))))
	if tone == "" {
		tone = ToneNeutral
	}
	if !tone.Valid() {
		return r, newError(KindBadInput, nil, "Tone must be one of %s, %s, %s", ToneNeutral, ToneSensational, ToneAcademic)
	}

	out := r
	out.Links = links
	out.Tone = tone
	out.Headline = strings.TrimSpace(r.Headline)
	return out, nil
}

// collection は全リンク分の集計
type collection struct {
	corpus strings.Builder
	quotes []Quote
	failed int
}

// Assemble はリクエストのリンクを取得して生成プロンプトを返す
func (a *Assembler) Assemble(ctx context.Context, req GenerationRequest) (string, error) {
	req, err := req.Validate()
	if err != nil {
		return "", err
	}
	log := withRequestID(a.logger, "assemble")

	col, err := a.collect(ctx, req.Links, log)
	if err != nil {
		return "", err
	}

	log.Info("collected articles",
		zap.Int("links", len(req.Links)),
		zap.Int("failed", col.failed),
		zap.Int("quotes", len(col.quotes)),
	)

	if len(col.quotes) < MinQuotes {
		return "", newError(KindInsufficientQuotes, nil,
			"Only found %d quotes. Need at least %d.", len(col.quotes), MinQuotes)
	}

	return buildPrompt(req, col.corpus.String(), col.quotes), nil
}

// collect はリンクを順番に取得し、本文と引用を集める
func (a *Assembler) collect(ctx context.Context, links []string, log *zap.Logger) (*collection, error) {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if a.interval > 0 {
		limiter = rate.NewLimiter(rate.Every(a.interval), 1)
	}

	col := &collection{quotes: []Quote{}}
	for _, link := range links {
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting to fetch %s: %w", link, err)
		}

		res := a.scraper.extractArticle(ctx, link, log)
		if res.Failed() {
			col.failed++
		}
		col.corpus.WriteString(res.Extraction.Text)
		col.corpus.WriteString("\n\n")
		col.quotes = append(col.quotes, res.Extraction.Quotes...)
	}
	return col, nil
}

// Generate はプロンプトを組み立てて生成サービスに記事を書かせる
func (a *Assembler) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	prompt, err := a.Assemble(ctx, req)
	if err != nil {
		return "", err
	}
	if a.generator == nil {
		return "", newError(KindUpstream, nil, "Failed to generate article")
	}

	article, err := a.generator.Generate(ctx, prompt, GenerateOptions{Temperature: a.temperature})
	if err != nil {
		a.logger.Error("generation error", zap.Error(err))
		return "", newError(KindUpstream, err, "Failed to generate article")
	}
	return article, nil
}
