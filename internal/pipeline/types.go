// =============================================================================
// types.go - データ構造定義
// =============================================================================
//
// このファイルはQuote Relayシステム全体で使用するデータ構造（型）を定義します。
//
// 【このファイルで定義している型】
//   - CandidateLink:      検索結果から見つかった記事候補（見出し翻訳付き）
//   - Quote:              記事本文から抽出した引用（発言者・出典付き）
//   - ArticleExtraction:  1記事分の本文テキストと引用
//   - ExtractionResult:   抽出の成否を区別するタグ付き結果
//   - GenerationRequest:  記事生成リクエスト
//   - GenerationResponse: 記事生成レスポンス
//
// 【ライフサイクル】
//   どの値も1リクエストの処理中だけ存在し、キャッシュや永続化は行わない
//
// =============================================================================
package pipeline

// -----------------------------------------------------------------------------
// CandidateLink - 記事候補
// -----------------------------------------------------------------------------
//
// Link Discoverer（discover.go）が検索ページから生成する候補記事。
// 1回の検索で最大5件、ドキュメント順、Linkで一意。
//
// 【フィールドの説明】
//   Link:               記事URL（絶対URL）
//   OriginalHeadline:   検索ページ上の見出し（原文）
//   TranslatedHeadline: 英語に翻訳した見出し
type CandidateLink struct {
	Link               string `json:"link"`
	OriginalHeadline   string `json:"originalHeadline"`
	TranslatedHeadline string `json:"translatedHeadline"`
}

// -----------------------------------------------------------------------------
// Quote - 引用
// -----------------------------------------------------------------------------
//
// Quote Extractor（quotes.go）が段落テキストから正規表現で抽出する。
// TextとSpeakerはトリム後に空でないことが保証される。
// 段落をまたいだ重複除去は行わない。
type Quote struct {
	Text    string `json:"text"`    // 引用文（引用符の内側）
	Speaker string `json:"speaker"` // 発言者
	Source  string `json:"source"`  // 媒体名（og:site_name またはデフォルト）
	URL     string `json:"url"`     // 抽出元の記事URL
}

// ArticleExtraction は1記事分の抽出結果
//
// Textは50文字を超える段落を空行（"\n\n"）で連結したもの。
type ArticleExtraction struct {
	Text   string  `json:"text"`
	Quotes []Quote `json:"quotes"`
}

// -----------------------------------------------------------------------------
// ExtractionResult - タグ付き抽出結果
// -----------------------------------------------------------------------------
//
// 外部向けの契約では「取得失敗」も「引用なし」も空の抽出として扱うが、
// テストやログで両者を区別できるように内部ではステータスを保持する。
// Assembler境界で Extraction だけに畳み込まれる。

// ExtractionStatus は抽出の成否
type ExtractionStatus string

const (
	ExtractionOK     ExtractionStatus = "ok"
	ExtractionFailed ExtractionStatus = "failed"
)

// ExtractionResult は ExtractArticleResult の戻り値
type ExtractionResult struct {
	Status     ExtractionStatus
	Extraction ArticleExtraction
	Reason     error // Status == ExtractionFailed のときのみ非nil
}

// Failed は取得・解析に失敗した結果かどうかを返す
func (r ExtractionResult) Failed() bool {
	return r.Status == ExtractionFailed
}

// -----------------------------------------------------------------------------
// GenerationRequest - 記事生成リクエスト
// -----------------------------------------------------------------------------
//
// 【バリデーション】（Validate、ネットワークアクセス前に実行）
//   - Links が1件以上
//   - WordCount が 100〜2000
//   - Tone が neutral / sensational / academic のいずれか（空はneutral扱い）
//
// 引用数（3件以上）のチェックは抽出後に Assembler が行う。
type GenerationRequest struct {
	Links     []string `json:"links"`
	WordCount int      `json:"wordCount"`
	Headline  string   `json:"headline,omitempty"`
	Tone      Tone     `json:"tone"`
}

// GenerationResponse は生成された記事
type GenerationResponse struct {
	Article string `json:"article"`
}

// LinksResponse はリンク検索のレスポンス
type LinksResponse struct {
	Links []CandidateLink `json:"links"`
}

// ErrorResponse はエラー時のレスポンス
type ErrorResponse struct {
	Error string `json:"error"`
}

// Tone は生成記事の文体
type Tone string

const (
	ToneNeutral     Tone = "neutral"
	ToneSensational Tone = "sensational"
	ToneAcademic    Tone = "academic"
)

// Valid は既知のToneかどうかを返す
func (t Tone) Valid() bool {
	switch t {
	case ToneNeutral, ToneSensational, ToneAcademic:
		return true
	}
	return false
}
