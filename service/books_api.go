package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// booksAPIClient has a short timeout so slow/hung responses don't block requests.
var booksAPIClient = &http.Client{Timeout: 15 * time.Second}

// BooksAPI queries the Google Books volumes API for free-text search and
// by-id lookup.
type BooksAPI struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewBooksAPI(baseURL string) *BooksAPI {
	return &BooksAPI{BaseURL: baseURL, HTTPClient: booksAPIClient}
}

// Volume is the normalized search-result shape returned to clients.
type Volume struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors,omitempty"`
	Description   string   `json:"description,omitempty"`
	Categories    []string `json:"categories,omitempty"`
	Thumbnail     string   `json:"thumbnail,omitempty"`
	SmallThumb    string   `json:"smallThumbnail,omitempty"`
	PublishedDate string   `json:"publishedDate,omitempty"`
	PageCount     int      `json:"pageCount,omitempty"`
	AverageRating float64  `json:"averageRating,omitempty"`
	PreviewLink   string   `json:"previewLink,omitempty"`
	InfoLink      string   `json:"infoLink,omitempty"`
	PDFAvailable  bool     `json:"pdfAvailable"`
	EpubAvailable bool     `json:"epubAvailable"`
	ISBN          string   `json:"isbn,omitempty"`
}

type volumeJSON struct {
	ID         string `json:"id"`
	VolumeInfo struct {
		Title         string   `json:"title"`
		Subtitle      string   `json:"subtitle"`
		Authors       []string `json:"authors"`
		PublishedDate string   `json:"publishedDate"`
		Description   string   `json:"description"`
		PageCount     int      `json:"pageCount"`
		Categories    []string `json:"categories"`
		AverageRating float64  `json:"averageRating"`
		PreviewLink   string   `json:"previewLink"`
		InfoLink      string   `json:"infoLink"`
		ImageLinks    struct {
			SmallThumbnail string `json:"smallThumbnail"`
			Thumbnail      string `json:"thumbnail"`
		} `json:"imageLinks"`
		IndustryIdentifiers []struct {
			Type       string `json:"type"`
			Identifier string `json:"identifier"`
		} `json:"industryIdentifiers"`
	} `json:"volumeInfo"`
	AccessInfo struct {
		PDF struct {
			IsAvailable bool `json:"isAvailable"`
		} `json:"pdf"`
		Epub struct {
			IsAvailable bool `json:"isAvailable"`
		} `json:"epub"`
	} `json:"accessInfo"`
}

type volumesResp struct {
	TotalItems int          `json:"totalItems"`
	Items      []volumeJSON `json:"items"`
}

func (v volumeJSON) normalize() Volume {
	out := Volume{
		ID:            v.ID,
		Title:         v.VolumeInfo.Title,
		Authors:       v.VolumeInfo.Authors,
		Description:   v.VolumeInfo.Description,
		Categories:    v.VolumeInfo.Categories,
		Thumbnail:     strings.Replace(v.VolumeInfo.ImageLinks.Thumbnail, "http:", "https:", 1),
		SmallThumb:    strings.Replace(v.VolumeInfo.ImageLinks.SmallThumbnail, "http:", "https:", 1),
		PublishedDate: v.VolumeInfo.PublishedDate,
		PageCount:     v.VolumeInfo.PageCount,
		AverageRating: v.VolumeInfo.AverageRating,
		PreviewLink:   v.VolumeInfo.PreviewLink,
		InfoLink:      v.VolumeInfo.InfoLink,
		PDFAvailable:  v.AccessInfo.PDF.IsAvailable,
		EpubAvailable: v.AccessInfo.Epub.IsAvailable,
	}
	if v.VolumeInfo.Subtitle != "" {
		out.Title = out.Title + ": " + v.VolumeInfo.Subtitle
	}
	for _, id := range v.VolumeInfo.IndustryIdentifiers {
		if id.Type == "ISBN_13" || id.Type == "ISBN_10" {
			out.ISBN = id.Identifier
			break
		}
	}
	return out
}

// Search runs a free-text query, capped at maxResults.
func (a *BooksAPI) Search(ctx context.Context, query string, maxResults int) ([]Volume, error) {
	if maxResults <= 0 || maxResults > 40 {
		maxResults = 40
	}
	q := url.Values{}
	q.Set("q", query)
	q.Set("maxResults", strconv.Itoa(maxResults))
	q.Set("orderBy", "relevance")
	data, err := a.getVolumes(ctx, a.BaseURL+"?"+q.Encode())
	if err != nil {
		return nil, err
	}
	volumes := make([]Volume, 0, len(data.Items))
	for _, item := range data.Items {
		volumes = append(volumes, item.normalize())
	}
	return volumes, nil
}

// ByID looks up one volume.
func (a *BooksAPI) ByID(ctx context.Context, id string) (*Volume, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.BaseURL+"/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("books api returned %d", resp.StatusCode)
	}
	var item volumeJSON
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return nil, err
	}
	vol := item.normalize()
	return &vol, nil
}

// ByISBN fetches metadata for one ISBN, used to prefill admin book forms.
func (a *BooksAPI) ByISBN(ctx context.Context, isbn string) (*Volume, error) {
	isbn = strings.ReplaceAll(strings.TrimSpace(isbn), "-", "")
	if isbn == "" {
		return nil, fmt.Errorf("isbn is required")
	}
	q := url.Values{}
	q.Set("q", "isbn:"+isbn)
	data, err := a.getVolumes(ctx, a.BaseURL+"?"+q.Encode())
	if err != nil {
		return nil, err
	}
	if data.TotalItems == 0 || len(data.Items) == 0 {
		return nil, fmt.Errorf("no volume found for isbn %s", isbn)
	}
	vol := data.Items[0].normalize()
	if vol.ISBN == "" {
		vol.ISBN = isbn
	}
	return &vol, nil
}

func (a *BooksAPI) getVolumes(ctx context.Context, u string) (*volumesResp, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("books api returned %d", resp.StatusCode)
	}
	var data volumesResp
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
