package tmdb

import "fmt"

// Image size tokens accepted by the TMDB CDN.
const (
	SizePoster   = "w500"
	SizeBackdrop = "w780"
	SizeProfile  = "w185"
	SizeLogo     = "w92"
	SizeOriginal = "original"
)

// ImageURL returns a full CDN URL for a relative image path and size token.
// An empty path resolves to the configured placeholder asset, never an
// empty string a client would render broken.
func (c *Client) ImageURL(path, size string) string {
	if path == "" {
		return c.config.PlaceholderURL
	}
	return fmt.Sprintf("%s/%s%s", c.config.ImageBaseURL, size, path)
}

// ImagePathURL is the same resolution for optional paths from list records.
func (c *Client) ImagePathURL(path *string, size string) string {
	if path == nil {
		return c.config.PlaceholderURL
	}
	return c.ImageURL(*path, size)
}
