// =============================================================================
// quotes.go - Quote Extractor（引用と本文の抽出）
// =============================================================================
//
// 記事ページから次の2つを取り出します。
//
//   1. 引用: <p> / <blockquote> のテキストに正規表現を1回だけ当てる
//   2. 本文: 記事コンテナ内の <p> のうち50文字を超えるものを空行で連結
//
// 【引用パターン】
//
//	"引用文"  または “引用文”
//	  → 任意のカンマ
//	  → — / said / told / according to（大文字小文字を区別しない）
//	  → 発言者（カンマ・ピリオドの手前まで）
//	  → 任意の「, 肩書き」
//
//	例: "Markets will recover," said Jane Doe.
//	    → Text="Markets will recover"  Speaker="Jane Doe"
//
// 1要素につき最初の一致だけを使う。列挙していない動詞・入れ子の引用符・
// 1段落に複数の引用がある場合は取りこぼしや誤帰属が起きるが、
// 単一パターンのベストエフォート抽出として受け入れている。
//
// =============================================================================
package pipeline

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// quoteSelector は引用を探す要素
const quoteSelector = "p, blockquote"

// bodySelector は本文段落として扱う要素
const bodySelector = "article p, .entry-content p"

// reQuoteAttribution は引用と発言者を取り出すパターン
//
//	グループ1: "..." の中身
//	グループ2: “...” の中身
//	グループ3: 発言者
//
// 空白には &nbsp; (U+00A0) などのUnicode空白も含める。
var reQuoteAttribution = regexp.MustCompile(`(?i)(?:"(.*?)"|“(.*?)”),?[\s\p{Z}]*(?:—|said|told|according to)[\s\p{Z}]*([^,.<]+)(?:,[\s\p{Z}]*(?:[A-Z][^,.]+))?`)

// ExtractArticle は記事を取得して本文と引用を返す
//
// 取得・解析に失敗した場合は空の抽出結果を返す（ログのみ）。
// 失敗と「引用なし」を区別したい場合は ExtractArticleResult を使う。
func (s *Scraper) ExtractArticle(ctx context.Context, link string) ArticleExtraction {
	return s.ExtractArticleResult(ctx, link).Extraction
}

// ExtractArticleResult は成否のタグ付きで抽出結果を返す
func (s *Scraper) ExtractArticleResult(ctx context.Context, link string) ExtractionResult {
	return s.extractArticle(ctx, link, s.logger)
}

func (s *Scraper) extractArticle(ctx context.Context, link string, log *zap.Logger) ExtractionResult {
	log = log.With(zap.String("url", link))

	page, err := fetchPage(ctx, link, s.fetch)
	if err != nil {
		log.Warn("failed to scrape article", zap.Error(err))
		return failedExtraction(err)
	}

	var ext ArticleExtraction
	if page.IsPDF() {
		paragraphs, err := extractPDFParagraphs(page.Body)
		if err != nil {
			log.Warn("failed to read PDF article", zap.Error(err))
			return failedExtraction(err)
		}
		ext = extractFromParagraphs(paragraphs, DefaultSourceName, link)
	} else {
		doc, err := parseDoc(page)
		if err != nil {
			log.Warn("failed to parse article", zap.Error(err))
			return failedExtraction(err)
		}
		ext = extractFromDocument(doc, link)
	}

	log.Debug("extracted article",
		zap.Int("quotes", len(ext.Quotes)),
		zap.Int("text_chars", runeLen(ext.Text)),
	)
	return ExtractionResult{Status: ExtractionOK, Extraction: ext}
}

func failedExtraction(err error) ExtractionResult {
	if err == nil {
		err = errors.New("extraction failed")
	}
	return ExtractionResult{
		Status:     ExtractionFailed,
		Extraction: ArticleExtraction{Text: "", Quotes: []Quote{}},
		Reason:     err,
	}
}

// extractFromDocument はHTMLドキュメントから本文と引用を取り出す
func extractFromDocument(doc *goquery.Document, link string) ArticleExtraction {
	source := siteName(doc)

	quotes := []Quote{}
	doc.Find(quoteSelector).Each(func(_ int, el *goquery.Selection) {
		if q, ok := matchQuote(strings.TrimSpace(el.Text()), source, link); ok {
			quotes = append(quotes, q)
		}
	})

	var paragraphs []string
	doc.Find(bodySelector).Each(func(_ int, p *goquery.Selection) {
		paragraphs = append(paragraphs, p.Text())
	})

	return ArticleExtraction{
		Text:   joinBodyParagraphs(paragraphs),
		Quotes: quotes,
	}
}

// extractFromParagraphs はプレーンテキストの段落列から本文と引用を取り出す（PDF用）
func extractFromParagraphs(paragraphs []string, source, link string) ArticleExtraction {
	quotes := []Quote{}
	for _, p := range paragraphs {
		if q, ok := matchQuote(strings.TrimSpace(p), source, link); ok {
			quotes = append(quotes, q)
		}
	}
	return ArticleExtraction{
		Text:   joinBodyParagraphs(paragraphs),
		Quotes: quotes,
	}
}

// siteName は og:site_name を返す（無ければデフォルトの媒体名）
func siteName(doc *goquery.Document) string {
	if v, ok := firstAttr(doc.Selection, `meta[property="og:site_name"]`, "content"); ok {
		return v
	}
	return DefaultSourceName
}

// matchQuote は1段落のテキストから最初の引用を取り出す
func matchQuote(text, source, link string) (Quote, bool) {
	m := reQuoteAttribution.FindStringSubmatch(text)
	if m == nil {
		return Quote{}, false
	}

	quoted := m[1]
	if quoted == "" {
		quoted = m[2]
	}
	// 引用符内の末尾カンマ（"...," said X）は落とす。プロンプト側で付け直す。
	quoted = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(quoted), ","))
	speaker := strings.TrimSpace(m[3])
	if quoted == "" || speaker == "" {
		return Quote{}, false
	}

	return Quote{
		Text:    quoted,
		Speaker: speaker,
		Source:  source,
		URL:     link,
	}, true
}

// joinBodyParagraphs はトリムして50文字を超える段落だけを空行で連結する
func joinBodyParagraphs(paragraphs []string) string {
	kept := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if runeLen(p) > MinParagraphChars {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}
