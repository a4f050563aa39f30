package youtube

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePlayerMetadata(t *testing.T) {
	// Raw string keeps the JSON escapes literal, as they arrive in the page.
	page := []byte(`<html><script>var ytInitialPlayerResponse = {"videoDetails":` +
		`{"videoId":"abc","lengthSeconds":"213","shortDescription":` +
		`"First line.\nSecond \"quoted\" line.","author":"Chan"}};</script></html>`)

	desc, secs := parsePlayerMetadata(page)

	assert.Equal(t, "First line.\nSecond \"quoted\" line.", desc)
	assert.Equal(t, 213, secs)
}

func TestParsePlayerMetadataAbsent(t *testing.T) {
	desc, secs := parsePlayerMetadata([]byte("<html><body>no player data</body></html>"))

	assert.Empty(t, desc)
	assert.Zero(t, secs)
}

func TestPickTrack(t *testing.T) {
	tracks := []track{
		{LangCode: "de", Kind: ""},
		{LangCode: "en", Kind: "asr"},
		{LangCode: "en-US", Kind: ""},
	}

	assert.Equal(t, "en-US", pickTrack(tracks).LangCode)

	// No manual English: auto-generated English beats other languages.
	tracks = tracks[:2]
	chosen := pickTrack(tracks)
	assert.Equal(t, "en", chosen.LangCode)
	assert.Equal(t, "asr", chosen.Kind)

	// No English at all: first track wins.
	assert.Equal(t, "de", pickTrack(tracks[:1]).LangCode)
}
