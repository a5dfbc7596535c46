package normalize

import (
	"strings"

	"github.com/mmcdole/gofeed"

	"feedagg/internal/domain"
)

// FromGofeedItem adapts a parsed feed entry into the normalizer's
// RawItem shape. Fields gofeed doesn't expose natively (media:thumbnail,
// media:content, and the urlToImage/image keys some JSON-style sources
// carry) are pulled from its generic extension and custom-element maps.
func FromGofeedItem(item *gofeed.Item) domain.RawItem {
	raw := domain.RawItem{
		Title:         item.Title,
		Link:          item.Link,
		Updated:       item.Updated,
		Published:     item.Published,
		Summary:       item.Description,
		Content:       item.Content,
		ContentIsHTML: true,
		Category:      strings.Join(item.Categories, ", "),
		Description:   item.Description,
	}

	if len(item.Links) > 0 {
		raw.URL = item.Links[0]
	} else {
		raw.URL = item.Link
	}

	if item.Image != nil {
		raw.Image = item.Image.URL
	}
	raw.URLToImage = item.Custom["urlToImage"]
	if raw.Image == "" {
		raw.Image = item.Custom["image"]
	}

	for _, enc := range item.Enclosures {
		raw.Enclosures = append(raw.Enclosures, domain.Enclosure{
			URL:    enc.URL,
			Type:   enc.Type,
			Length: enc.Length,
		})
	}

	raw.MediaThumbnail = firstMediaExtensionURL(item, "thumbnail")
	raw.MediaContent = firstMediaExtensionURL(item, "content")

	return raw
}

// firstMediaExtensionURL pulls the url attribute off the first
// media:thumbnail or media:content extension element, if the feed
// carries the MediaRSS namespace.
func firstMediaExtensionURL(item *gofeed.Item, child string) string {
	if item.Extensions == nil {
		return ""
	}
	media, ok := item.Extensions["media"]
	if !ok {
		return ""
	}
	elems, ok := media[child]
	if !ok || len(elems) == 0 {
		return ""
	}
	return elems[0].Attrs["url"]
}
