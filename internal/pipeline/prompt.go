// =============================================================================
// prompt.go - 記事生成プロンプトの組み立て
// =============================================================================
//
// 【プロンプトの構成】
//   1. 語数の指示
//   2. SOURCES:   集めた本文（先頭5000文字）
//   3. QUOTES:    全引用を1行ずつ
//                 - "*引用*," 発言者 told <a href="URL" target="_blank">媒体名</a>
//   4. STRUCTURE: 5段落構成（リード/背景/詳細/詳細/結び）
//   5. RULES:     引用の帰属ルールと文体
//   6. 見出し（指定があればそれを、無ければ提案を依頼）
//
// =============================================================================
package pipeline

import (
	"fmt"
	"html"
	"strings"
)

const promptTemplate = `Write a %d-word news article in English USING ONLY the information below.
---
SOURCES:
%s
---
QUOTES (use at least 3):
%s
---
STRUCTURE:
1. FIRST PARAGRAPH: Who, what, where, when (lead with key fact)
2. SECOND PARAGRAPH: Why this matters (context/impact)
3. PARAGRAPHS 3-4: Key details with quotes
4. FIFTH PARAGRAPH: Conclusion (future actions/predictions)
---
RULES:
- Always attribute quotes EXACTLY as shown above
- Include speaker titles/organizations when available
- Never add unverified information
- Tone: %s
%s
`

// formatQuoteLine は引用1件をプロンプト用の1行にする
func formatQuoteLine(q Quote) string {
	return fmt.Sprintf(`- "*%s*," %s told <a href="%s" target="_blank">%s</a>`,
		q.Text, q.Speaker, html.EscapeString(q.URL), html.EscapeString(q.Source))
}

// buildPrompt は生成サービスに渡すプロンプトを組み立てる
//
// corpus はここで MaxCorpusChars 文字に切り詰める。
func buildPrompt(req GenerationRequest, corpus string, quotes []Quote) string {
	lines := make([]string, 0, len(quotes))
	for _, q := range quotes {
		lines = append(lines, formatQuoteLine(q))
	}

	headline := "Suggest a concise headline"
	if h := strings.TrimSpace(req.Headline); h != "" {
		headline = "Headline: " + h
	}

	return fmt.Sprintf(promptTemplate,
		req.WordCount,
		truncateRunes(corpus, MaxCorpusChars),
		strings.Join(lines, "\n"),
		req.Tone,
		headline,
	)
}
