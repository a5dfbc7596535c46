package normalize

import "feedagg/internal/domain"

// discoverImage implements the fixed image-discovery priority order: the
// first non-empty candidate wins.
func discoverImage(raw domain.RawItem) string {
	if raw.MediaThumbnail != "" {
		return raw.MediaThumbnail
	}
	if raw.MediaContent != "" {
		return raw.MediaContent
	}
	if src := FirstImgSrc(raw.Summary); src != "" {
		return src
	}
	if raw.URLToImage != "" {
		return raw.URLToImage
	}
	if raw.Image != "" {
		return raw.Image
	}
	if raw.ContentIsHTML {
		if src := FirstImgSrc(raw.Content); src != "" {
			return src
		}
	}
	return ""
}
