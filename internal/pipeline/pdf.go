// =============================================================================
// pdf.go - PDF記事のテキスト抽出
// =============================================================================
//
// プレスリリースはPDFで配布されることがある。PDFのリンクが選ばれた場合、
// ページのプレーンテキストを取り出し、空行区切りのブロックを段落として
// HTMLの <p> と同じように引用抽出・本文抽出にかける。
//
// =============================================================================
package pipeline

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

var reBlankLines = regexp.MustCompile(`\n\s*\n`)

// extractPDFParagraphs はPDFから段落（空白正規化済み）を取り出す
//
// 読めないページは飛ばす。PDFとして開けない場合のみエラー。
// ledongthuc/pdf は壊れたファイルでpanicすることがあるので、エラーに変換する。
func extractPDFParagraphs(data []byte) (paragraphs []string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			paragraphs, err = nil, fmt.Errorf("failed to parse PDF: %v", rec)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse PDF: %w", err)
	}

	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		paragraphs = append(paragraphs, splitParagraphs(text)...)
	}
	return paragraphs, nil
}

// splitParagraphs は空行でテキストを段落に分ける
func splitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, block := range reBlankLines.Split(text, -1) {
		if p := normalizeWhitespace(block); p != "" {
			out = append(out, p)
		}
	}
	return out
}
