package service

import (
	"strings"
	"testing"

	"github.com/campuslib/backend/models"
	"github.com/stretchr/testify/assert"
)

func TestSimilarBooksPrompt(t *testing.T) {
	prompt := SimilarBooksPrompt("Dune", "Frank Herbert")
	assert.Contains(t, prompt, `"Dune"`)
	assert.Contains(t, prompt, "Frank Herbert")
	assert.Contains(t, prompt, "3-5 similar books")
}

func TestGeneralPromptIncludesReaderContext(t *testing.T) {
	rating := 5
	reader := &ReaderContext{
		History: []HistoryEntry{
			{Title: "Dune", Author: "Frank Herbert", Status: "completed", Rating: &rating},
			{Title: "Foundation", Author: "Isaac Asimov", Status: "reading"},
		},
		Preferences: &models.UserPreferences{
			FavoriteGenres: []string{"Sci-Fi", "Fantasy"},
			ReadingPace:    "fast",
		},
	}
	prompt := GeneralPrompt(reader, []models.Book{{Title: "Hyperion", Author: "Dan Simmons", Genre: "Sci-Fi"}})

	assert.Contains(t, prompt, "Dune by Frank Herbert (completed, rated 5/5)")
	assert.Contains(t, prompt, "Foundation by Isaac Asimov (reading)")
	assert.Contains(t, prompt, "Favorite genres: Sci-Fi, Fantasy")
	assert.Contains(t, prompt, "Reading pace: fast")
	assert.Contains(t, prompt, "Hyperion by Dan Simmons [Sci-Fi]")
}

func TestGeneralPromptWithoutContext(t *testing.T) {
	prompt := GeneralPrompt(nil, nil)
	assert.Contains(t, prompt, "book recommendation assistant")
	assert.NotContains(t, prompt, "reading history")
	assert.NotContains(t, prompt, "library catalog")
}

func TestGeneralPromptCapsHistory(t *testing.T) {
	reader := &ReaderContext{}
	for i := 0; i < 25; i++ {
		reader.History = append(reader.History, HistoryEntry{Title: "Book"})
	}
	prompt := GeneralPrompt(reader, nil)
	assert.Equal(t, maxHistoryEntries, strings.Count(prompt, "- Book"))
}

func TestRenderCatalogTruncation(t *testing.T) {
	longDesc := strings.Repeat("x", 300)
	books := make([]models.Book, 60)
	for i := range books {
		books[i] = models.Book{Title: "T", Author: "A", Description: longDesc}
	}
	out := RenderCatalog(books)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, maxCatalogRows)
	for _, line := range lines {
		// 100-char snippet plus ellipsis, never the full description.
		assert.Contains(t, line, strings.Repeat("x", maxSnippetLength)+"...")
		assert.NotContains(t, line, strings.Repeat("x", maxSnippetLength+1))
	}
}

func TestSnippetKeepsShortStrings(t *testing.T) {
	assert.Equal(t, "short", snippet("short", 100))
}
