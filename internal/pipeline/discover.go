// =============================================================================
// discover.go - Link Discoverer（記事候補の検索）
// =============================================================================
//
// 検索語からWordPressサイトの検索結果ページを取得し、記事候補を返します。
//
// 【処理の流れ】
//  1. 検索URLの構築（{SiteURL}?s={検索語}）
//  2. 検索ページの取得とパース
//  3. <article> ごとに最初の <a href> と最初の <h2> を取り出す
//     （どちらかが無い記事は捨てる）
//  4. 見出しを並行して英訳（全件の完了を待つ）
//  5. ドキュメント順のまま最大5件に切り詰め
//
// 【エラー方針】
//   検索ページの取得・パースに失敗しても空のスライスを返す（ログのみ）。
//   翻訳に失敗した記事はその1件だけを落とし、残りは返す。
//
// =============================================================================
package pipeline

import (
	"context"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Scraper はリンク検索と記事抽出を行う
//
// リクエスト間で共有する可変状態は持たない（HTTPクライアントの接続プールのみ）。
type Scraper struct {
	fetch      FetchConfig
	discovery  DiscoveryConfig
	translator Translator
	logger     *zap.Logger
}

// NewScraper はScraperを作る
//
// translatorがnilの場合、見出しは翻訳せずそのまま使う。
func NewScraper(cfg *Config, translator Translator, logger *zap.Logger) *Scraper {
	return &Scraper{
		fetch:      cfg.Fetch,
		discovery:  cfg.Discovery,
		translator: translator,
		logger:     nopIfNil(logger),
	}
}

// searchEntry は翻訳前の検索結果1件
type searchEntry struct {
	Link     string
	Headline string
}

// searchURL は検索語を埋め込んだ検索URLを返す
//
// feedがtrueの場合はWordPressの検索フィード（feed=rss2）を指す。
func searchURL(siteURL, subject string, feed bool) (string, error) {
	u, err := url.Parse(siteURL)
	if err != nil {
		return "", fmt.Errorf("invalid site url %q: %w", siteURL, err)
	}
	q := u.Query()
	q.Set("s", subject)
	if feed {
		q.Set("feed", "rss2")
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// DiscoverLinks は検索語に一致する記事候補を最大5件返す
//
// 失敗時も含めて常に非nilのスライスを返す。
func (s *Scraper) DiscoverLinks(ctx context.Context, subject string) []CandidateLink {
	log := withRequestID(s.logger, "discover_links").With(zap.String("subject", subject))

	var (
		entries []searchEntry
		err     error
	)
	switch s.discovery.Mode {
	case DiscoveryFeed:
		entries, err = s.discoverFromFeed(ctx, subject)
	default:
		entries, err = s.discoverFromHTML(ctx, subject)
	}
	if err != nil {
		log.Warn("scraping search results failed", zap.Error(err))
		return []CandidateLink{}
	}

	entries = uniqueEntries(entries)
	links := s.translateEntries(ctx, entries, log)
	if len(links) > MaxCandidateLinks {
		links = links[:MaxCandidateLinks]
	}

	log.Info("discovered links",
		zap.Int("entries", len(entries)),
		zap.Int("links", len(links)),
	)
	return links
}

// discoverFromHTML は検索結果ページから記事候補を取り出す
func (s *Scraper) discoverFromHTML(ctx context.Context, subject string) ([]searchEntry, error) {
	u, err := searchURL(s.discovery.SiteURL, subject, false)
	if err != nil {
		return nil, err
	}
	doc, err := fetchDoc(ctx, u, s.fetch)
	if err != nil {
		return nil, err
	}
	return parseSearchEntries(doc), nil
}

// parseSearchEntries は <article> から (リンク, 見出し) を取り出す
//
// リンクはページURLを基準に絶対URLへ解決する。
func parseSearchEntries(doc *goquery.Document) []searchEntry {
	base := ""
	if doc.Url != nil {
		base = doc.Url.String()
	}

	var entries []searchEntry
	doc.Find("article").Each(func(_ int, art *goquery.Selection) {
		href, ok := firstAttr(art, "a", "href")
		if !ok {
			return
		}
		headline, ok := firstText(art, "h2")
		if !ok {
			return
		}
		link := resolveURL(base, href)
		if link == "" {
			return
		}
		entries = append(entries, searchEntry{Link: link, Headline: headline})
	})
	return entries
}

// translateEntries は見出しを並行して翻訳する
//
// 同時実行数は TranslateWorkers で制限する。結果は入力と同じ順序。
func (s *Scraper) translateEntries(ctx context.Context, entries []searchEntry, log *zap.Logger) []CandidateLink {
	results := make([]*CandidateLink, len(entries))

	var g errgroup.Group
	if s.discovery.TranslateWorkers > 0 {
		g.SetLimit(s.discovery.TranslateWorkers)
	}
	for i, e := range entries {
		i, e := i, e
		g.Go(func() error {
			translated := e.Headline
			if s.translator != nil {
				out, err := s.translator.Translate(ctx, e.Headline)
				if err != nil {
					log.Warn("headline translation failed, dropping article",
						zap.String("url", e.Link),
						zap.Error(err),
					)
					return nil
				}
				translated = out
			}
			results[i] = &CandidateLink{
				Link:               e.Link,
				OriginalHeadline:   e.Headline,
				TranslatedHeadline: translated,
			}
			return nil
		})
	}
	_ = g.Wait() // 各タスクはエラーを返さない

	links := make([]CandidateLink, 0, len(results))
	for _, r := range results {
		if r != nil {
			links = append(links, *r)
		}
	}
	return links
}

// uniqueEntries はリンクの重複を除去する（最初の出現を残す）
func uniqueEntries(in []searchEntry) []searchEntry {
	seen := make(map[string]bool, len(in))
	out := make([]searchEntry, 0, len(in))
	for _, e := range in {
		if seen[e.Link] {
			continue
		}
		seen[e.Link] = true
		out = append(out, e)
	}
	return out
}
