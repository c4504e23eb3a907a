package pipeline

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAssembler(cfg *Config, gen Generator) *Assembler {
	return NewAssembler(NewScraper(cfg, nil, nil), gen, cfg, nil)
}

func TestGenerationRequestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     GenerationRequest
		wantErr string
	}{
		{
			name:    "no links",
			req:     GenerationRequest{WordCount: 300},
			wantErr: "Please select at least one link",
		},
		{
			name:    "blank links only",
			req:     GenerationRequest{Links: []string{" ", ""}, WordCount: 300},
			wantErr: "Please select at least one link",
		},
		{
			name:    "word count below range",
			req:     GenerationRequest{Links: []string{"https://example.com/a"}, WordCount: 50},
			wantErr: "Word count must be between 100-2000",
		},
		{
			name:    "word count above range",
			req:     GenerationRequest{Links: []string{"https://example.com/a"}, WordCount: 2001},
			wantErr: "Word count must be between 100-2000",
		},
		{
			name:    "unknown tone",
			req:     GenerationRequest{Links: []string{"https://example.com/a"}, WordCount: 300, Tone: "sarcastic"},
			wantErr: "Tone must be one of neutral, sensational, academic",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := tt.req.Validate()
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, UserMessage(err))
			assert.Equal(t, KindBadInput, KindOf(err))
			assert.Equal(t, http.StatusBadRequest, StatusCode(err))
		})
	}
}

func TestGenerationRequestValidate_Normalizes(t *testing.T) {
	t.Parallel()

	req, err := GenerationRequest{
		Links:     []string{"  https://example.com/a ", "", "https://example.com/b"},
		WordCount: MinWordCount,
		Headline:  "  Storm hits coast  ",
	}.Validate()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://example.com/a", "https://example.com/b"}, req.Links)
	assert.Equal(t, ToneNeutral, req.Tone)
	assert.Equal(t, "Storm hits coast", req.Headline)

	req, err = GenerationRequest{Links: []string{"x"}, WordCount: MaxWordCount, Tone: " Academic "}.Validate()
	require.NoError(t, err)
	assert.Equal(t, ToneAcademic, req.Tone)
}

func TestAssemble_InvalidRequestMakesNoRequests(t *testing.T) {
	t.Parallel()

	srv := newSiteServer(t, map[string]string{"/a": articleHTML("", nil, nil)})
	a := newTestAssembler(newTestConfig(srv.URL), nil)

	_, err := a.Assemble(context.Background(), GenerationRequest{
		Links:     []string{srv.URL + "/a"},
		WordCount: 50,
	})

	require.Error(t, err)
	assert.Equal(t, KindBadInput, KindOf(err))
	assert.Empty(t, srv.requests())
}

func TestAssemble_InsufficientQuotes(t *testing.T) {
	t.Parallel()

	srv := newSiteServer(t, map[string]string{
		"/none": articleHTML("", []string{longParagraph("A paragraph without quotes ", 80)}, nil),
		"/two": articleHTML("Daily Planet", nil, []string{
			`"First," said Ann Lee.`,
			`"Second," said Ben Cole.`,
		}),
	})
	var called bool
	gen := GeneratorFunc(func(context.Context, string, GenerateOptions) (string, error) {
		called = true
		return "article", nil
	})
	a := newTestAssembler(newTestConfig(srv.URL), gen)

	_, err := a.Generate(context.Background(), GenerationRequest{
		Links:     []string{srv.URL + "/none", srv.URL + "/two"},
		WordCount: 300,
	})

	require.Error(t, err)
	assert.Equal(t, "Only found 2 quotes. Need at least 3.", UserMessage(err))
	assert.Equal(t, KindInsufficientQuotes, KindOf(err))
	assert.Equal(t, http.StatusBadRequest, StatusCode(err))
	assert.False(t, called)
	assert.Len(t, srv.requests(), 2)
}

func TestAssemble_FailedLinkCountsAsEmpty(t *testing.T) {
	t.Parallel()

	srv := newSiteServer(t, map[string]string{
		"/ok": articleHTML("", nil, []string{`"Only one," said Ann Lee.`}),
	})
	a := newTestAssembler(newTestConfig(srv.URL), nil)

	_, err := a.Assemble(context.Background(), GenerationRequest{
		Links:     []string{srv.URL + "/missing", srv.URL + "/ok"},
		WordCount: 300,
	})

	assert.Equal(t, "Only found 1 quotes. Need at least 3.", UserMessage(err))
	assert.Len(t, srv.requests(), 2)
}

func TestAssemble_BuildsPrompt(t *testing.T) {
	t.Parallel()

	body1 := longParagraph("Storm damage reported across the coastal towns ", 90)
	body2 := longParagraph("Relief crews arrived in the region on Tuesday ", 90)
	srv := newSiteServer(t, map[string]string{
		"/one": articleHTML("Daily Planet", []string{body1}, []string{
			`"Roads are closed," said Ann Lee, the mayor.`,
			`"We need help," said Ben Cole.`,
		}),
		"/two": articleHTML("", []string{body2}, []string{
			`“Power is back” — Cara Diaz, Grid Co.`,
			`"Schools reopen Monday," according to Dan Roe.`,
		}),
	})
	a := newTestAssembler(newTestConfig(srv.URL), nil)

	prompt, err := a.Assemble(context.Background(), GenerationRequest{
		Links:     []string{srv.URL + "/one", srv.URL + "/two"},
		WordCount: 300,
		Tone:      ToneSensational,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(prompt, "Write a 300-word news article in English USING ONLY"))
	assert.Contains(t, prompt, "SOURCES:\n"+body1+"\n\n"+body2+"\n\n\n---")
	assert.Contains(t, prompt, "QUOTES (use at least 3):\n")
	for _, line := range []string{
		`- "*Roads are closed*," Ann Lee told <a href="` + srv.URL + `/one" target="_blank">Daily Planet</a>`,
		`- "*We need help*," Ben Cole told <a href="` + srv.URL + `/one" target="_blank">Daily Planet</a>`,
		`- "*Power is back*," Cara Diaz told <a href="` + srv.URL + `/two" target="_blank">` + DefaultSourceName + `</a>`,
		`- "*Schools reopen Monday*," Dan Roe told <a href="` + srv.URL + `/two" target="_blank">` + DefaultSourceName + `</a>`,
	} {
		assert.Contains(t, prompt, line)
	}
	assert.Less(t, strings.Index(prompt, "Roads are closed"), strings.Index(prompt, "Schools reopen Monday"))
	assert.Contains(t, prompt, "- Tone: sensational\n")
	assert.Contains(t, prompt, "Suggest a concise headline")
}

func TestAssemble_TruncatesCorpus(t *testing.T) {
	t.Parallel()

	var body []string
	for i := 0; i < 4; i++ {
		body = append(body, longParagraph("Long body paragraph ", 3000))
	}
	srv := newSiteServer(t, map[string]string{
		"/long": articleHTML("", body, []string{
			`"One," said Ann Lee.`,
			`"Two," said Ben Cole.`,
			`"Three," said Cara Diaz.`,
		}),
	})
	a := newTestAssembler(newTestConfig(srv.URL), nil)

	prompt, err := a.Assemble(context.Background(), GenerationRequest{
		Links:     []string{srv.URL + "/long"},
		WordCount: 500,
		Headline:  "Long read",
	})
	require.NoError(t, err)

	start := strings.Index(prompt, "SOURCES:\n") + len("SOURCES:\n")
	end := strings.Index(prompt, "\n---\nQUOTES")
	require.Greater(t, end, start)
	assert.Equal(t, MaxCorpusChars, utf8.RuneCountInString(prompt[start:end]))
	assert.Contains(t, prompt, "Headline: Long read")
}

func TestAssemble_FetchesSequentiallyWithInterval(t *testing.T) {
	t.Parallel()

	quote := []string{`"Fine," said Ann Lee.`}
	srv := newSiteServer(t, map[string]string{
		"/1": articleHTML("", nil, quote),
		"/2": articleHTML("", nil, quote),
		"/3": articleHTML("", nil, quote),
	})
	cfg := newTestConfig(srv.URL)
	cfg.Assembly.Interval = 50 * time.Millisecond
	a := newTestAssembler(cfg, nil)

	start := time.Now()
	_, err := a.Assemble(context.Background(), GenerationRequest{
		Links:     []string{srv.URL + "/1", srv.URL + "/2", srv.URL + "/3"},
		WordCount: 300,
	})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, []string{"/1", "/2", "/3"}, srv.requests())
	assert.Equal(t, 1, srv.maxInflight())
	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
}

func TestAssemble_CancelledContext(t *testing.T) {
	t.Parallel()

	srv := newSiteServer(t, map[string]string{"/a": articleHTML("", nil, nil)})
	a := newTestAssembler(newTestConfig(srv.URL), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Assemble(ctx, GenerationRequest{Links: []string{srv.URL + "/a"}, WordCount: 300})

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
	assert.Empty(t, srv.requests())
}

func threeQuoteServer(t *testing.T) *siteServer {
	t.Helper()
	return newSiteServer(t, map[string]string{
		"/a": articleHTML("", nil, []string{
			`"One," said Ann Lee.`,
			`"Two," said Ben Cole.`,
			`"Three," said Cara Diaz.`,
		}),
	})
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	srv := threeQuoteServer(t)
	var gotPrompt string
	var gotOpts GenerateOptions
	gen := GeneratorFunc(func(_ context.Context, prompt string, opts GenerateOptions) (string, error) {
		gotPrompt = prompt
		gotOpts = opts
		return "Generated article", nil
	})
	cfg := newTestConfig(srv.URL)
	a := newTestAssembler(cfg, gen)

	article, err := a.Generate(context.Background(), GenerationRequest{Links: []string{srv.URL + "/a"}, WordCount: 300})

	require.NoError(t, err)
	assert.Equal(t, "Generated article", article)
	assert.Contains(t, gotPrompt, `- "*Three*," Cara Diaz told`)
	assert.Equal(t, cfg.LLM.Temperature, gotOpts.Temperature)
}

func TestGenerate_GeneratorFailure(t *testing.T) {
	t.Parallel()

	srv := threeQuoteServer(t)
	gen := GeneratorFunc(func(context.Context, string, GenerateOptions) (string, error) {
		return "", errors.New("rate limited")
	})
	a := newTestAssembler(newTestConfig(srv.URL), gen)

	_, err := a.Generate(context.Background(), GenerationRequest{Links: []string{srv.URL + "/a"}, WordCount: 300})

	require.Error(t, err)
	assert.Equal(t, KindUpstream, KindOf(err))
	assert.Equal(t, "Failed to generate article", UserMessage(err))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
	assert.ErrorContains(t, err, "rate limited")
}

func TestDiscoverThenAssemble(t *testing.T) {
	t.Parallel()

	pages := map[string]string{
		"/": searchPage(
			searchArticle("/2024/cambio-climatico/", "Cambio climático"),
			searchArticle("/2024/klimawandel/", "Klimawandel"),
			searchArticle("/2024/changement/", "Changement climatique"),
		),
		"/2024/cambio-climatico/": articleHTML("Diario Verde", []string{longParagraph("Temperatures rose across the region this summer ", 90)}, []string{
			`"The heat is unprecedented," said Lucia Gomez, a climatologist.`,
			`"We must act now," said Pedro Ruiz.`,
		}),
		"/2024/klimawandel/": articleHTML("Klima Zeitung", []string{longParagraph("Glaciers in the Alps shrank again this year ", 90)}, []string{
			`"Glaciers are vanishing," said Anna Weber.`,
			`“Funding is coming” — Jonas Keller, ministry spokesman.`,
		}),
	}
	srv := newSiteServer(t, pages)
	cfg := newTestConfig(srv.URL + "/")
	svc := NewService(cfg, prefixTranslator("EN: "), nil, nil)
	ctx := context.Background()

	links := svc.Scraper().DiscoverLinks(ctx, "climate change")
	require.Len(t, links, 3)
	assert.Equal(t, "EN: Cambio climático", links[0].TranslatedHeadline)

	prompt, err := svc.Assembler().Assemble(ctx, GenerationRequest{
		Links:     []string{links[0].Link, links[1].Link},
		WordCount: 300,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(prompt, "Write a 300-word news article in English USING ONLY"))
	first, second := links[0].Link, links[1].Link
	for _, line := range []string{
		`- "*The heat is unprecedented*," Lucia Gomez told <a href="` + first + `" target="_blank">Diario Verde</a>`,
		`- "*We must act now*," Pedro Ruiz told <a href="` + first + `" target="_blank">Diario Verde</a>`,
		`- "*Glaciers are vanishing*," Anna Weber told <a href="` + second + `" target="_blank">Klima Zeitung</a>`,
		`- "*Funding is coming*," Jonas Keller told <a href="` + second + `" target="_blank">Klima Zeitung</a>`,
	} {
		assert.Contains(t, prompt, line)
	}
	assert.NotContains(t, srv.requests(), "/2024/changement/")
}
