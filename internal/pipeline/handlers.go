// =============================================================================
// handlers.go - 2つのAPI操作
// =============================================================================
//
// 【このファイルで提供する機能】
//   - HandleGetLinks: {subject} -> {links}
//   - HandleGenerate: {links, wordCount, headline?, tone} -> {article}
//
// CLI（cmd/pipeline）とLambda（cmd/lambda/*）の両方から使う。
// エラーは *PipelineError で返り、StatusCode / UserMessage で
// HTTPステータスとメッセージに変換できる。
//
// =============================================================================
package pipeline

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Service はリンク検索と記事生成をまとめたもの
type Service struct {
	scraper   *Scraper
	assembler *Assembler
	logger    *zap.Logger
}

// NewService はServiceを作る
func NewService(cfg *Config, translator Translator, generator Generator, logger *zap.Logger) *Service {
	logger = nopIfNil(logger)
	scraper := NewScraper(cfg, translator, logger)
	return &Service{
		scraper:   scraper,
		assembler: NewAssembler(scraper, generator, cfg, logger),
		logger:    logger,
	}
}

// Scraper は内部のScraperを返す
func (s *Service) Scraper() *Scraper { return s.scraper }

// Assembler は内部のAssemblerを返す
func (s *Service) Assembler() *Assembler { return s.assembler }

// HandleGetLinks は検索語から記事候補を返す
//
// 1件も見つからない場合は KindNotFound。
func (s *Service) HandleGetLinks(ctx context.Context, subject string) (*LinksResponse, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, newError(KindBadInput, nil, "Subject is required")
	}

	links := s.scraper.DiscoverLinks(ctx, subject)
	if len(links) == 0 {
		return nil, newError(KindNotFound, nil, "No articles found")
	}
	return &LinksResponse{Links: links}, nil
}

// HandleGenerate はリンクから記事を生成する
func (s *Service) HandleGenerate(ctx context.Context, req GenerationRequest) (*GenerationResponse, error) {
	article, err := s.assembler.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	return &GenerationResponse{Article: article}, nil
}
