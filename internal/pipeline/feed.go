// =============================================================================
// feed.go - 検索フィードによるリンク検索
// =============================================================================
//
// WordPressサイトは検索結果をRSSとしても返す（?s=検索語&feed=rss2）。
// HTMLのテーマ構造に依存しないので、検索ページの <article> 構造が
// 崩れているサイトではこちらを使う（-discovery=feed）。
//
// 手法: RSS Feed (gofeed)
// 取得後の翻訳・重複除去・5件への切り詰めはHTML版と共通。
//
// =============================================================================
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

// discoverFromFeed は検索フィードから記事候補を取り出す
func (s *Scraper) discoverFromFeed(ctx context.Context, subject string) ([]searchEntry, error) {
	u, err := searchURL(s.discovery.SiteURL, subject, true)
	if err != nil {
		return nil, err
	}
	page, err := fetchPage(ctx, u, s.fetch)
	if err != nil {
		return nil, err
	}

	fp := gofeed.NewParser()
	feed, err := fp.Parse(bytes.NewReader(page.Body))
	if err != nil {
		return nil, fmt.Errorf("RSS parse failed: %w", err)
	}
	return feedEntries(feed, u), nil
}

// feedEntries はフィードの各itemを (リンク, 見出し) に変換する
//
// リンクまたはタイトルが空のitemは捨てる。
func feedEntries(feed *gofeed.Feed, base string) []searchEntry {
	entries := make([]searchEntry, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		link := resolveURL(base, item.Link)
		title := strings.TrimSpace(item.Title)
		if link == "" || title == "" {
			continue
		}
		entries = append(entries, searchEntry{Link: link, Headline: title})
	}
	return entries
}
