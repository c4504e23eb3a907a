// =============================================================================
// fetch.go - HTML取得とパース
// =============================================================================
//
// 【このファイルで提供する機能】
//   - fetchPage: URLをGETしてボディとContent-Typeを返す
//   - parseDoc:  HTMLをgoquery.Documentに変換（壊れたHTMLでもエラーにしない）
//   - fetchDoc:  fetchPage + parseDoc
//
// 【エラー】
//   通信エラー・非2xxステータス・MaxBodyBytes 超過は *FetchError として返す。
//   リトライはしない。呼び出し側（リンク単位）で握りつぶす。
//
// =============================================================================
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrBodyTooLarge はレスポンスボディが MaxBodyBytes を超えた場合のエラー
var ErrBodyTooLarge = errors.New("response body too large")

// Page は取得したページ
type Page struct {
	URL         string
	ContentType string // メディアタイプのみ（例: "text/html"）
	Body        []byte
}

// IsPDF はPDFかどうかを返す（Content-Typeまたは拡張子で判定）
func (p *Page) IsPDF() bool {
	if p.ContentType == "application/pdf" {
		return true
	}
	u, err := url.Parse(p.URL)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Path), ".pdf")
}

// fetchPage は指定URLをGETしてボディを返す
//
// ブロッキング回避のため、ブラウザ風のUser-Agentを設定する。
// タイムアウトは cfg.Timeout とctxの早い方。
func fetchPage(ctx context.Context, u string, cfg FetchConfig) (*Page, error) {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &FetchError{URL: u, Err: err}
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/pdf;q=0.9,*/*;q=0.8")

	client := cfg.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: u, Err: err}
	}
	defer resp.Body.Close()

	// HTTPステータスコードチェック（200番台以外はエラー）
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{
			URL:        u,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status: %s", resp.Status),
		}
	}

	// 上限+1バイトまで読み、上限を超えたら途中までのボディは使わない
	var body io.Reader = resp.Body
	if cfg.MaxBodyBytes > 0 {
		body = io.LimitReader(resp.Body, cfg.MaxBodyBytes+1)
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return nil, &FetchError{URL: u, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	if cfg.MaxBodyBytes > 0 && int64(len(b)) > cfg.MaxBodyBytes {
		return nil, &FetchError{URL: u, StatusCode: resp.StatusCode, Err: fmt.Errorf("%w (limit %d bytes)", ErrBodyTooLarge, cfg.MaxBodyBytes)}
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	return &Page{URL: u, ContentType: mediaType, Body: b}, nil
}

// parseDoc はページをgoqueryでパースする
//
// x/net/html のパーサは壊れたHTMLも補完して木を作るので、
// ここでエラーになるのは読み込み自体の失敗だけ。
func parseDoc(p *Page) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(p.Body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", p.URL, err)
	}
	if base, err := url.Parse(p.URL); err == nil {
		doc.Url = base
	}
	return doc, nil
}

// fetchDoc は指定URLからHTMLドキュメントを取得してgoqueryでパース
func fetchDoc(ctx context.Context, u string, cfg FetchConfig) (*goquery.Document, error) {
	p, err := fetchPage(ctx, u, cfg)
	if err != nil {
		return nil, err
	}
	return parseDoc(p)
}

// firstAttr はセレクタに一致する最初の要素の属性値を返す
//
// 要素または属性が無い場合、あるいはトリム後に空の場合は ok=false。
func firstAttr(s *goquery.Selection, selector, attr string) (string, bool) {
	v, ok := s.Find(selector).First().Attr(attr)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// firstText はセレクタに一致する最初の要素のトリム済みテキストを返す
func firstText(s *goquery.Selection, selector string) (string, bool) {
	sel := s.Find(selector).First()
	if sel.Length() == 0 {
		return "", false
	}
	t := strings.TrimSpace(sel.Text())
	return t, t != ""
}
