// =============================================================================
// errors.go - エラー分類
// =============================================================================
//
// 【エラーの種類】
//   - FetchError:    HTTP取得の失敗（通信エラー・非2xxステータス）
//   - PipelineError: 呼び出し元に返すエラー（Kindでステータスを決める）
//
// 【Kind と HTTPステータスの対応】
//   KindBadInput            -> 400（入力不正。ネットワークアクセス前に検出）
//   KindNotFound            -> 404（記事が見つからない）
//   KindInsufficientQuotes  -> 400（引用が3件未満）
//   KindUpstream            -> 500（生成サービスなど外部サービスの失敗）
//
// =============================================================================
package pipeline

import (
	"errors"
	"fmt"
	"net/http"
)

// FetchError はHTTP取得の失敗を表す
//
// StatusCodeは通信エラー（接続失敗・タイムアウトなど）の場合は0。
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 && (e.StatusCode < 200 || e.StatusCode >= 300) {
		return fmt.Sprintf("GET %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("GET %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ErrorKind はPipelineErrorの分類
type ErrorKind int

const (
	KindUpstream ErrorKind = iota
	KindBadInput
	KindNotFound
	KindInsufficientQuotes
)

func (k ErrorKind) String() string {
	switch k {
	case KindBadInput:
		return "bad_input"
	case KindNotFound:
		return "not_found"
	case KindInsufficientQuotes:
		return "insufficient_quotes"
	default:
		return "upstream"
	}
}

// PipelineError はユーザーに見せるメッセージと分類を持つエラー
type PipelineError struct {
	Kind    ErrorKind
	Message string // そのままレスポンスの error フィールドに入る
	Err     error  // 原因（ログ用、任意）
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *PipelineError) Unwrap() error { return e.Err }

func newError(kind ErrorKind, err error, format string, args ...any) *PipelineError {
	return &PipelineError{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf はエラーの分類を返す（PipelineError以外はKindUpstream）
func KindOf(err error) ErrorKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUpstream
}

// UserMessage はレスポンスに載せるメッセージを返す
//
// PipelineError以外の内部エラーは詳細を出さずに汎用メッセージにする。
func UserMessage(err error) string {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Message
	}
	return "Internal server error"
}

// StatusCode はエラーに対応するHTTPステータスコードを返す
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch KindOf(err) {
	case KindBadInput, KindInsufficientQuotes:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
