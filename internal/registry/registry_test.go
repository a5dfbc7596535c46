package registry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedagg/internal/domain"
)

const sampleCSV = `publisher_domain,feed_url,publisher_name,category,default_enabled,score,og_images,content_type,creative_instance_id,destination_domains
example.test,https://example.test/rss,Example,Tech,Enabled,10,On,,creative-1,example.test;m.example.test
other.test,http://other.test/feed,Other,News,Disabled,5,Off,product,creative-2,
`

func TestLoadCSV_ParsesRows(t *testing.T) {
	byID, sorted, err := LoadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, sorted, 2)

	var example domain.PublisherRecord
	for _, p := range sorted {
		if p.PublisherDomain == "example.test" {
			example = p
		}
	}

	assert.Equal(t, "https://example.test/rss", example.FeedURL)
	assert.Equal(t, "article", example.ContentType)
	assert.True(t, example.OGImages)
	assert.True(t, example.Enabled)
	assert.Equal(t, defaultMaxEntries, example.MaxEntries)
	assert.Equal(t, []string{"example.test", "m.example.test"}, example.DestinationDomains)
	assert.Equal(t, PublisherID("https://example.test/rss"), example.PublisherID)
	assert.Contains(t, byID, example.PublisherID)
}

func TestLoadCSV_DefaultsContentTypeAndUpgradesScheme(t *testing.T) {
	_, sorted, err := LoadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	var other domain.PublisherRecord
	for _, p := range sorted {
		if p.PublisherDomain == "other.test" {
			other = p
		}
	}

	assert.Equal(t, "https://other.test/feed", other.FeedURL)
	assert.Equal(t, "product", other.ContentType)
	assert.False(t, other.Enabled)
	assert.False(t, other.OGImages)
	assert.Equal(t, []string{"other.test"}, other.DestinationDomains)
}

func TestLoadCSV_SortsByPublisherName(t *testing.T) {
	// zzz.test sorts last by domain but its publisher_name ("Alpha")
	// sorts first; the returned slice must follow publisher_name.
	csvData := `publisher_domain,feed_url,publisher_name,category,default_enabled,score,og_images,content_type,creative_instance_id,destination_domains
zzz.test,https://zzz.test/rss,Alpha,Tech,Enabled,10,On,,creative-1,zzz.test
aaa.test,https://aaa.test/feed,Zulu,News,Enabled,5,Off,,creative-2,aaa.test
`
	_, sorted, err := LoadCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, sorted, 2)

	names := make([]string, len(sorted))
	for i, p := range sorted {
		names[i] = p.PublisherName
	}
	assert.Equal(t, []string{"Alpha", "Zulu"}, names)
}

func TestCanonicalFeedURL(t *testing.T) {
	assert.Equal(t, "https://a.test/f", CanonicalFeedURL("http://a.test/f"))
	assert.Equal(t, "https://a.test/f", CanonicalFeedURL("https://a.test/f"))
	assert.Equal(t, "https://a.test/f", CanonicalFeedURL("a.test/f"))
}

func TestWriteFeedJSON_OnlyIncludesEnabled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feed.json")

	publishers := []domain.PublisherRecord{
		{PublisherID: "1", Enabled: true},
		{PublisherID: "2", Enabled: false},
	}
	require.NoError(t, WriteFeedJSON(path, publishers))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	loaded, err := LoadFeedJSON(f)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "1", loaded[0].PublisherID)
}
