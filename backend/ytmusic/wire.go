package ytmusic

import (
	"github.com/goccy/go-json"
	"github.com/poiesic/quickplay/core"
)

type authResponse struct {
	AccessToken string `json:"accessToken"`
}

type searchRequest struct {
	Query string `json:"query"`
}

type queueRequest struct {
	VideoID        string `json:"videoId"`
	InsertPosition string `json:"insertPosition"`
}

// searchResponse mirrors the part of the renderer tree that holds the top card.
type searchResponse struct {
	Contents struct {
		TabbedSearchResultsRenderer struct {
			Tabs []struct {
				TabRenderer struct {
					Content struct {
						SectionListRenderer struct {
							Contents []struct {
								MusicCardShelfRenderer *cardShelf `json:"musicCardShelfRenderer"`
							} `json:"contents"`
						} `json:"sectionListRenderer"`
					} `json:"content"`
				} `json:"tabRenderer"`
			} `json:"tabs"`
		} `json:"tabbedSearchResultsRenderer"`
	} `json:"contents"`
}

type cardShelf struct {
	Thumbnail struct {
		MusicThumbnailRenderer struct {
			Thumbnail struct {
				Thumbnails []struct {
					URL string `json:"url"`
				} `json:"thumbnails"`
			} `json:"thumbnail"`
		} `json:"musicThumbnailRenderer"`
	} `json:"thumbnail"`
	Title struct {
		Runs []struct {
			Text               string `json:"text"`
			NavigationEndpoint struct {
				WatchEndpoint struct {
					VideoID string `json:"videoId"`
				} `json:"watchEndpoint"`
			} `json:"navigationEndpoint"`
		} `json:"runs"`
	} `json:"title"`
	Subtitle struct {
		Accessibility struct {
			AccessibilityData struct {
				Label string `json:"label"`
			} `json:"accessibilityData"`
		} `json:"accessibility"`
	} `json:"subtitle"`
}

// parseSearchResponse extracts the first tab's first card shelf.
// Returns ErrMalformedResponse when any part of the path is missing.
func parseSearchResponse(body []byte) (*core.SearchResult, error) {
	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}

	tabs := resp.Contents.TabbedSearchResultsRenderer.Tabs
	if len(tabs) == 0 {
		return nil, ErrMalformedResponse
	}
	sections := tabs[0].TabRenderer.Content.SectionListRenderer.Contents
	if len(sections) == 0 || sections[0].MusicCardShelfRenderer == nil {
		return nil, ErrMalformedResponse
	}
	card := sections[0].MusicCardShelfRenderer

	thumbnails := card.Thumbnail.MusicThumbnailRenderer.Thumbnail.Thumbnails
	if len(thumbnails) == 0 || len(card.Title.Runs) == 0 {
		return nil, ErrMalformedResponse
	}
	run := card.Title.Runs[0]

	result := &core.SearchResult{
		Title:              run.Text,
		VideoID:            run.NavigationEndpoint.WatchEndpoint.VideoID,
		ThumbnailURL:       thumbnails[0].URL,
		AccessibilityLabel: card.Subtitle.Accessibility.AccessibilityData.Label,
	}
	if err := core.ValidateSearchResult(result); err != nil {
		return nil, ErrMalformedResponse
	}
	return result, nil
}
