// Package gate rejects feed items that must not reach the raw store:
// duplicates of already recorded items, automation authors, and items
// with no text.
package gate

import (
	"context"
	"strings"

	"golang.org/x/text/cases"

	"github.com/feedlens/aspect-miner/internal/core/domain"
)

// Rejection reasons. These are counted, not treated as errors.
const (
	ReasonDuplicate = "duplicate"
	ReasonBotAuthor = "bot_author"
	ReasonEmptyBody = "empty_body"
)

const botNameSuffix = "bot"

// Repository is the uniqueness lookup the gate runs against the raw store.
type Repository interface {
	ReviewExists(ctx context.Context, source domain.Source, sourceID string) (bool, error)
}

// Gate applies the three ingestion checks in order: duplicate, bot
// author, empty body. The first failing check short-circuits.
type Gate struct {
	database   Repository
	botAuthors map[string]struct{}
	caser      cases.Caser
}

func New(database Repository, botAuthors []string) *Gate {
	caser := cases.Fold()
	known := make(map[string]struct{}, len(botAuthors))

	for _, a := range botAuthors {
		a = strings.TrimSpace(caser.String(a))
		if a != "" {
			known[a] = struct{}{}
		}
	}

	return &Gate{
		database:   database,
		botAuthors: known,
		caser:      caser,
	}
}

// Check returns ("", nil) when the item may be stored, or a rejection
// reason. Errors from the store lookup propagate to the caller.
func (g *Gate) Check(ctx context.Context, c *domain.Comment) (string, error) {
	exists, err := g.database.ReviewExists(ctx, c.Source, c.SourceID)
	if err != nil {
		return "", err
	}

	if exists {
		return ReasonDuplicate, nil
	}

	if g.isBotAuthor(c.Author) {
		return ReasonBotAuthor, nil
	}

	if strings.TrimSpace(c.Text) == "" {
		return ReasonEmptyBody, nil
	}

	return "", nil
}

func (g *Gate) isBotAuthor(author string) bool {
	name := strings.TrimSpace(g.caser.String(author))
	if name == "" {
		return false
	}

	if strings.HasSuffix(name, botNameSuffix) {
		return true
	}

	_, known := g.botAuthors[name]

	return known
}
