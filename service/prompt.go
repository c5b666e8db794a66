package service

import (
	"fmt"
	"strings"

	"github.com/campuslib/backend/models"
)

const (
	maxCatalogRows    = 50
	maxSnippetLength  = 100
	maxHistoryEntries = 10
)

// HistoryEntry is one reading-history row rendered into the prompt.
type HistoryEntry struct {
	Title  string
	Author string
	Status string
	Rating *int
}

// ReaderContext is what we know about the caller when assembling a
// personalized prompt. Either field may be empty.
type ReaderContext struct {
	History     []HistoryEntry
	Preferences *models.UserPreferences
}

// SimilarBooksPrompt builds the system prompt for the currentBook variant.
func SimilarBooksPrompt(title, author string) string {
	return fmt.Sprintf(`You are a book recommendation assistant. The user is currently reading or interested in: %q by %s.

Recommend 3-5 similar books that they might enjoy. For each recommendation:
1. Include the book title and author
2. Explain why it's similar or complementary
3. Mention the genre
4. Keep it concise and engaging

Format: Use clear paragraphs with book titles in quotes.`, title, author)
}

// GeneralPrompt builds the system prompt for a free-form query, optionally
// enriched with the caller's reading history and preferences plus a
// snapshot of the catalog so the model favors in-catalog titles.
func GeneralPrompt(reader *ReaderContext, catalog []models.Book) string {
	var b strings.Builder
	b.WriteString(`You are a book recommendation assistant. Provide personalized book suggestions based on the user's query.

For each recommendation:
1. Include the book title and author
2. Brief description (2-3 sentences)
3. Why it matches their request
4. Genre information

Be conversational and enthusiastic. Format with clear paragraphs.`)

	if reader != nil {
		if len(reader.History) > 0 {
			b.WriteString("\n\nThe user's recent reading history:\n")
			history := reader.History
			if len(history) > maxHistoryEntries {
				history = history[:maxHistoryEntries]
			}
			for _, h := range history {
				b.WriteString("- ")
				b.WriteString(h.Title)
				if h.Author != "" {
					b.WriteString(" by " + h.Author)
				}
				if h.Status != "" {
					b.WriteString(" (" + h.Status)
					if h.Rating != nil {
						fmt.Fprintf(&b, ", rated %d/5", *h.Rating)
					}
					b.WriteString(")")
				} else if h.Rating != nil {
					fmt.Fprintf(&b, " (rated %d/5)", *h.Rating)
				}
				b.WriteString("\n")
			}
		}
		if p := reader.Preferences; p != nil {
			b.WriteString("\nThe user's stated preferences:\n")
			if len(p.FavoriteGenres) > 0 {
				b.WriteString("- Favorite genres: " + strings.Join(p.FavoriteGenres, ", ") + "\n")
			}
			if len(p.Interests) > 0 {
				b.WriteString("- Interests: " + strings.Join(p.Interests, ", ") + "\n")
			}
			if p.PreferredLength != "" {
				b.WriteString("- Preferred length: " + p.PreferredLength + "\n")
			}
			if p.ReadingPace != "" {
				b.WriteString("- Reading pace: " + p.ReadingPace + "\n")
			}
		}
	}

	if len(catalog) > 0 {
		b.WriteString("\nWhen relevant, prefer recommending titles from the library catalog below:\n")
		b.WriteString(RenderCatalog(catalog))
	}
	return b.String()
}

// RenderCatalog formats catalog rows as a truncated bullet list: at most 50
// rows, descriptions cut to 100 characters.
func RenderCatalog(books []models.Book) string {
	if len(books) > maxCatalogRows {
		books = books[:maxCatalogRows]
	}
	var b strings.Builder
	for _, book := range books {
		b.WriteString("- " + book.Title)
		if book.Author != "" {
			b.WriteString(" by " + book.Author)
		}
		if book.Genre != "" {
			b.WriteString(" [" + book.Genre + "]")
		}
		if book.Rating != nil {
			fmt.Fprintf(&b, " rated %.1f", *book.Rating)
		}
		if book.PublishedYear > 0 {
			fmt.Fprintf(&b, " (%d)", book.PublishedYear)
		}
		if book.Description != "" {
			b.WriteString(": " + snippet(book.Description, maxSnippetLength))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func snippet(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
