// =============================================================================
// config.go - パイプライン設定
// =============================================================================
//
// このファイルはCLIフラグ・環境変数の解析と設定管理を行います。
//
// 【設定グループ】
//   - InputConfig:     CLIの入力（検索語・記事リンク・語数など）
//   - FetchConfig:     HTTP取得設定（User-Agent・タイムアウト）
//   - DiscoveryConfig: 検索対象サイト・検索方式
//   - AssemblyConfig:  記事取得の間隔
//   - LLMConfig:       翻訳・生成に使うOpenAI設定
//   - OutputConfig:    出力設定（JSON出力先・Notion）
//   - LogConfig:       ログ設定
//
// 【設定の読み込み元】
//   - CLI (cmd/pipeline):    ParseFlags（.envはmain側でgodotenvが読み込む）
//   - Lambda (cmd/lambda/*): LoadEnvConfig
//
// =============================================================================
package pipeline

import (
	"flag"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// 固定値
// =============================================================================

const (
	// DefaultSiteURL は記事を検索するWordPressサイト
	DefaultSiteURL = "https://journalistpressservices.wordpress.com/"

	// DefaultSourceName は og:site_name が無い場合の媒体名
	DefaultSourceName = "Journalist Press Services"

	// MaxCandidateLinks は DiscoverLinks が返す最大件数
	MaxCandidateLinks = 5

	// MinQuotes は記事生成に必要な引用の最小件数
	MinQuotes = 3

	// MaxCorpusChars はプロンプトに埋め込む本文の最大文字数
	MaxCorpusChars = 5000

	// MinParagraphChars を超える長さの段落だけを本文として採用する
	MinParagraphChars = 50

	// MinWordCount / MaxWordCount は生成記事の語数範囲
	MinWordCount = 100
	MaxWordCount = 2000
)

// 検索方式
const (
	DiscoveryHTML = "html" // 検索結果ページ（?s=）をスクレイピング
	DiscoveryFeed = "feed" // 検索フィード（?s=&feed=rss2）をgofeedで解析
)

// =============================================================================
// 設定構造体
// =============================================================================

// Config はパイプラインの全設定を保持する
type Config struct {
	Input     InputConfig
	Fetch     FetchConfig
	Discovery DiscoveryConfig
	Assembly  AssemblyConfig
	LLM       LLMConfig
	Output    OutputConfig
	Log       LogConfig
}

// InputConfig はCLIから渡される処理対象
type InputConfig struct {
	// Subject が指定された場合、リンク検索モードで動く
	Subject string

	// LinksRaw はカンマ区切りの記事URL（-links フラグの値）
	LinksRaw string

	WordCount int
	Headline  string
	Tone      string
}

// Links はLinksRawをパースしてスライスで返す
func (c *InputConfig) Links() []string {
	var result []string
	for _, s := range strings.Split(c.LinksRaw, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			result = append(result, s)
		}
	}
	return result
}

// Request はInputConfigからGenerationRequestを組み立てる
func (c *InputConfig) Request() GenerationRequest {
	return GenerationRequest{
		Links:     c.Links(),
		WordCount: c.WordCount,
		Headline:  c.Headline,
		Tone:      Tone(c.Tone),
	}
}

// FetchConfig はHTTP取得時の設定を保持
type FetchConfig struct {
	UserAgent    string        // HTTPリクエスト時のUser-Agentヘッダー
	Timeout      time.Duration // 1回の取得のタイムアウト
	MaxBodyBytes int64         // レスポンスボディの読み込み上限
	Client       *http.Client  // 共有HTTPクライアント（コネクションプーリング有効）
}

// DefaultFetchConfig はデフォルトの取得設定を返す
func DefaultFetchConfig() FetchConfig {
	timeout := 10 * time.Second // 応答しないホストでバッチ全体が止まらないように
	return FetchConfig{
		UserAgent:    "Mozilla/5.0",
		Timeout:      timeout,
		MaxBodyBytes: 10 << 20,
		Client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// DiscoveryConfig はリンク検索の設定
type DiscoveryConfig struct {
	// SiteURL は検索対象サイトのURL（?s=検索語 を付けて取得する）
	SiteURL string

	// Mode は "html" または "feed"
	Mode string

	// TranslateWorkers は同時に実行する見出し翻訳の上限
	TranslateWorkers int
}

// AssemblyConfig は記事取得の設定
type AssemblyConfig struct {
	// Interval は連続する記事取得の最小間隔（0で間隔なし）
	Interval time.Duration
}

// LLMConfig は翻訳・生成サービスの設定
type LLMConfig struct {
	APIKey         string
	BaseURL        string // 例: https://api.openai.com/v1
	TranslateModel string
	GenerateModel  string
	Temperature    float64
	Timeout        time.Duration
}

// OutputConfig は出力に関する設定
type OutputConfig struct {
	// OutFile が指定された場合、ファイルに出力（空の場合はstdout）
	OutFile string

	// PromptOnly がtrueの場合、生成を呼ばずにプロンプトだけ出力
	PromptOnly bool

	// NotionClip がtrueの場合、生成記事をNotionに保存
	NotionClip bool

	// NotionPageID は新規データベース作成時の親ページID
	NotionPageID string

	// NotionDatabaseID は既存のデータベースID
	NotionDatabaseID string
}

// LogConfig はログ設定
type LogConfig struct {
	Level  string // debug | info | warn | error
	Format string // console | json
}

// DefaultConfig はデフォルト設定を返す
func DefaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			WordCount: 500,
			Tone:      string(ToneNeutral),
		},
		Fetch: DefaultFetchConfig(),
		Discovery: DiscoveryConfig{
			SiteURL:          DefaultSiteURL,
			Mode:             DiscoveryHTML,
			TranslateWorkers: 8,
		},
		Assembly: AssemblyConfig{
			Interval: time.Second,
		},
		LLM: LLMConfig{
			BaseURL:        "https://api.openai.com/v1",
			TranslateModel: "gpt-3.5-turbo",
			GenerateModel:  "gpt-4-turbo",
			Temperature:    0.7,
			Timeout:        120 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// =============================================================================
// フラグ解析
// =============================================================================

// ParseFlags はCLIフラグを解析してConfigを返す
//
// APIキーはフラグではなく環境変数 OPENAI_API_KEY から読む。
func ParseFlags(args []string) (*Config, error) {
	cfg := DefaultConfig()
	fs := flag.NewFlagSet("pipeline", flag.ContinueOnError)

	// Input flags
	fs.StringVar(&cfg.Input.Subject, "subject", "", "search subject; prints candidate links as JSON")
	fs.StringVar(&cfg.Input.LinksRaw, "links", "", "comma-separated article URLs to build an article from")
	fs.IntVar(&cfg.Input.WordCount, "wordCount", cfg.Input.WordCount, "target word count (100-2000)")
	fs.StringVar(&cfg.Input.Headline, "headline", "", "optional: headline for the generated article")
	fs.StringVar(&cfg.Input.Tone, "tone", cfg.Input.Tone, "tone: neutral|sensational|academic")

	// Fetch / discovery flags
	fs.StringVar(&cfg.Fetch.UserAgent, "userAgent", cfg.Fetch.UserAgent, "User-Agent header for page fetches")
	fs.DurationVar(&cfg.Fetch.Timeout, "fetchTimeout", cfg.Fetch.Timeout, "per-fetch timeout")
	fs.StringVar(&cfg.Discovery.SiteURL, "site", cfg.Discovery.SiteURL, "WordPress site to search")
	fs.StringVar(&cfg.Discovery.Mode, "discovery", cfg.Discovery.Mode, "discovery mode: html|feed")
	fs.DurationVar(&cfg.Assembly.Interval, "interval", cfg.Assembly.Interval, "minimum delay between article fetches")

	// LLM flags
	fs.StringVar(&cfg.LLM.BaseURL, "openaiBaseURL", cfg.LLM.BaseURL, "OpenAI-compatible API base URL")
	fs.StringVar(&cfg.LLM.TranslateModel, "translateModel", cfg.LLM.TranslateModel, "model used for headline translation")
	fs.StringVar(&cfg.LLM.GenerateModel, "generateModel", cfg.LLM.GenerateModel, "model used for article generation")

	// Output flags
	fs.StringVar(&cfg.Output.OutFile, "out", "", "optional: write JSON output to this path (default: stdout)")
	fs.BoolVar(&cfg.Output.PromptOnly, "promptOnly", false, "print the assembled prompt instead of generating")
	fs.BoolVar(&cfg.Output.NotionClip, "notionClip", false, "clip the generated article to a Notion database")
	fs.StringVar(&cfg.Output.NotionPageID, "notionPageID", "", "parent page ID for creating a new Notion database")
	fs.StringVar(&cfg.Output.NotionDatabaseID, "notionDatabaseID", "", "existing Notion database ID")

	// Log flags
	fs.StringVar(&cfg.Log.Level, "logLevel", envOr("LOG_LEVEL", cfg.Log.Level), "log level: debug|info|warn|error")
	fs.StringVar(&cfg.Log.Format, "logFormat", envOr("LOG_FORMAT", cfg.Log.Format), "log format: console|json")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.Fetch.Client.Timeout = cfg.Fetch.Timeout
	cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	return cfg, nil
}

// LoadEnvConfig は環境変数から設定を読み込む（Lambda用）
//
// 環境変数:
//   - OPENAI_API_KEY:   OpenAI APIキー
//   - OPENAI_BASE_URL:  APIのベースURL（任意）
//   - SITE_URL:         検索対象サイト（任意）
//   - DISCOVERY_MODE:   html | feed（任意）
//   - FETCH_TIMEOUT:    取得タイムアウト、例: 10s（任意）
//   - FETCH_INTERVAL:   記事取得間隔、例: 1s（任意）
//   - LOG_LEVEL / LOG_FORMAT
func LoadEnvConfig() *Config {
	cfg := DefaultConfig()

	cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	cfg.LLM.BaseURL = envOr("OPENAI_BASE_URL", cfg.LLM.BaseURL)
	cfg.LLM.TranslateModel = envOr("TRANSLATE_MODEL", cfg.LLM.TranslateModel)
	cfg.LLM.GenerateModel = envOr("GENERATE_MODEL", cfg.LLM.GenerateModel)
	cfg.Discovery.SiteURL = envOr("SITE_URL", cfg.Discovery.SiteURL)
	cfg.Discovery.Mode = envOr("DISCOVERY_MODE", cfg.Discovery.Mode)
	cfg.Log.Level = envOr("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = envOr("LOG_FORMAT", "json")

	if d, ok := envDuration("FETCH_TIMEOUT"); ok {
		cfg.Fetch.Timeout = d
		cfg.Fetch.Client.Timeout = d
	}
	if d, ok := envDuration("FETCH_INTERVAL"); ok {
		cfg.Assembly.Interval = d
	}
	if v := os.Getenv("TRANSLATE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Discovery.TranslateWorkers = n
		}
	}
	return cfg
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envDuration(key string) (time.Duration, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, false
	}
	return d, true
}
