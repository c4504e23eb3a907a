// =============================================================================
// utils.go - ユーティリティ関数
// =============================================================================
//
// このファイルはパッケージ全体で使用する汎用的なヘルパー関数を提供します。
//
// 【このファイルで提供する機能】
//   - 文字列操作: 空白正規化、文字数での切り詰め
//   - URL操作: 相対URLの解決
//   - JSON操作: ファイル・標準出力への書き出し
//
// =============================================================================
package pipeline

import (
	"encoding/json"
	"io"
	"net/url"
	"os"
	"strings"
	"unicode/utf8"
)

// -----------------------------------------------------------------------------
// 文字列操作関数
// -----------------------------------------------------------------------------

// normalizeWhitespace は文字列内の連続する空白を単一スペースに正規化する
//
//	normalizeWhitespace("  hello   world  ")  // "hello world"
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateRunes は文字列を先頭maxLen文字（rune単位）に切り詰める
//
// 日本語などのマルチバイト文字を途中で切らないようにruneで数える。
// 省略記号は付けない。
func truncateRunes(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen])
}

// runeLen は文字数（rune数）を返す
func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// -----------------------------------------------------------------------------
// URL操作関数
// -----------------------------------------------------------------------------

// resolveURL は相対URLを絶対URLに変換
//
// 既に絶対URLの場合はそのまま返す。解決できない場合は空文字列。
func resolveURL(baseURL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return u.String()
	}
	return base.ResolveReference(u).String()
}

// -----------------------------------------------------------------------------
// JSON操作関数
// -----------------------------------------------------------------------------

// WriteJSON は任意のデータを2スペースインデントのJSONで書き出す
//
// pathが空なら標準出力、そうでなければファイル（0o644）に書く。
func WriteJSON(path string, v any) error {
	if path == "" {
		return encodeJSON(os.Stdout, v)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := encodeJSON(f, v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false) // プロンプト中の <a> タグをそのまま出す
	return enc.Encode(v)
}
