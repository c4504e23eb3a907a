package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/jomei/notionapi"
)

// notionTextLimit is the max content length of one rich text object.
const notionTextLimit = 2000

// ArticleClip is a generated article with the request that produced it.
type ArticleClip struct {
	Headline  string
	Article   string
	Links     []string
	Tone      Tone
	WordCount int
}

// NotionClipper handles clipping generated articles to Notion
type NotionClipper struct {
	client *notionapi.Client
	dbID   notionapi.DatabaseID
}

// NewNotionClipper creates a new Notion clipper
func NewNotionClipper(token string, databaseID string) (*NotionClipper, error) {
	if token == "" {
		return nil, fmt.Errorf("NOTION_TOKEN is required")
	}

	nc := &NotionClipper{
		client: notionapi.NewClient(notionapi.Token(token)),
	}
	if databaseID != "" {
		nc.dbID = notionapi.DatabaseID(databaseID)
	}
	return nc, nil
}

// DatabaseID returns the database articles are clipped to.
func (nc *NotionClipper) DatabaseID() string {
	return string(nc.dbID)
}

// CreateDatabase creates a new Notion database for generated articles
func (nc *NotionClipper) CreateDatabase(ctx context.Context, pageID string) error {
	if pageID == "" {
		return fmt.Errorf("NOTION_PAGE_ID is required to create a new database")
	}

	dbRequest := &notionapi.DatabaseCreateRequest{
		Parent: notionapi.Parent{
			Type:   notionapi.ParentTypePageID,
			PageID: notionapi.PageID(pageID),
		},
		Title: []notionapi.RichText{
			{Text: &notionapi.Text{Content: "Quote Relay Articles"}},
		},
		Properties: notionapi.PropertyConfigs{
			"Title": notionapi.TitlePropertyConfig{
				Type: notionapi.PropertyConfigTypeTitle,
			},
			"Sources": notionapi.RichTextPropertyConfig{
				Type: notionapi.PropertyConfigTypeRichText,
			},
			"Tone": notionapi.SelectPropertyConfig{
				Type: notionapi.PropertyConfigTypeSelect,
				Select: notionapi.Select{
					Options: []notionapi.Option{
						{Name: string(ToneNeutral), Color: notionapi.ColorBlue},
						{Name: string(ToneSensational), Color: notionapi.ColorRed},
						{Name: string(ToneAcademic), Color: notionapi.ColorGreen},
					},
				},
			},
			"Word Count": notionapi.NumberPropertyConfig{
				Type: notionapi.PropertyConfigTypeNumber,
				Number: notionapi.NumberFormat{
					Format: notionapi.FormatNumber,
				},
			},
		},
	}

	db, err := nc.client.Database.Create(ctx, dbRequest)
	if err != nil {
		return fmt.Errorf("failed to create Notion database: %w", err)
	}
	nc.dbID = notionapi.DatabaseID(db.ID)
	return nil
}

// ClipArticle stores a generated article as a page in the database
func (nc *NotionClipper) ClipArticle(ctx context.Context, clip ArticleClip) error {
	if nc.dbID == "" {
		return fmt.Errorf("database ID not set")
	}

	pageRequest := &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: nc.dbID,
		},
		Properties: clipProperties(clip),
		Children:   articleBlocks(clip.Article),
	}

	if _, err := nc.client.Page.Create(ctx, pageRequest); err != nil {
		return fmt.Errorf("failed to clip article: %w", err)
	}
	return nil
}

func clipProperties(clip ArticleClip) notionapi.Properties {
	return notionapi.Properties{
		"Title": notionapi.TitleProperty{
			Type:  notionapi.PropertyTypeTitle,
			Title: richText(clipTitle(clip)),
		},
		"Sources": notionapi.RichTextProperty{
			Type:     notionapi.PropertyTypeRichText,
			RichText: richText(strings.Join(clip.Links, "\n")),
		},
		"Tone": notionapi.SelectProperty{
			Type:   notionapi.PropertyTypeSelect,
			Select: notionapi.Option{Name: string(clip.Tone)},
		},
		"Word Count": notionapi.NumberProperty{
			Type:   notionapi.PropertyTypeNumber,
			Number: float64(clip.WordCount),
		},
	}
}

// clipTitle uses the requested headline, or the first line of the article.
func clipTitle(clip ArticleClip) string {
	if clip.Headline != "" {
		return clip.Headline
	}
	for _, line := range strings.Split(clip.Article, "\n") {
		line = strings.Trim(strings.TrimSpace(line), "#* ")
		line = strings.TrimPrefix(line, "Headline:")
		if line = strings.TrimSpace(line); line != "" {
			return truncateRunes(line, 200)
		}
	}
	return "Untitled article"
}

// articleBlocks splits the article into paragraph blocks.
func articleBlocks(article string) []notionapi.Block {
	var blocks []notionapi.Block
	for _, p := range splitParagraphs(article) {
		blocks = append(blocks, notionapi.ParagraphBlock{
			BasicBlock: notionapi.BasicBlock{
				Object: notionapi.ObjectTypeBlock,
				Type:   notionapi.BlockTypeParagraph,
			},
			Paragraph: notionapi.Paragraph{
				RichText: richText(p),
			},
		})
	}
	return blocks
}

// richText chunks s so each text object stays under the Notion limit.
func richText(s string) []notionapi.RichText {
	runes := []rune(s)
	var out []notionapi.RichText
	for len(runes) > 0 {
		n := min(len(runes), notionTextLimit)
		out = append(out, notionapi.RichText{
			Text: &notionapi.Text{Content: string(runes[:n])},
		})
		runes = runes[n:]
	}
	if out == nil {
		out = []notionapi.RichText{{Text: &notionapi.Text{Content: ""}}}
	}
	return out
}
