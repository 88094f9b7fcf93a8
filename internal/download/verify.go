package download

import (
	"log/slog"
	"strings"

	"github.com/bogem/id3v2"
)

// VerifyTags reads the ID3 tags of a downloaded file and logs when they do
// not resemble the requested track. Tag mismatch is advisory only: plenty
// of legitimate uploads carry sloppy metadata, so the duration gate in the
// fallback chain stays the sole acceptance criterion.
func VerifyTags(path, artist, trackName string) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true, ParseFrames: []string{"Artist", "Title"}})
	if err != nil {
		slog.Debug("could not read id3 tags", "path", path, "error", err)
		return
	}
	defer tag.Close()

	tagArtist := tag.Artist()
	tagTitle := tag.Title()
	if tagArtist == "" && tagTitle == "" {
		return
	}

	if !tagsResemble(tagArtist, artist) && !tagsResemble(tagTitle, trackName) {
		slog.Warn("downloaded file tags do not match request",
			"path", path,
			"tag_artist", tagArtist,
			"tag_title", tagTitle,
			"want_artist", artist,
			"want_title", trackName,
		)
	}
}

// tagsResemble reports whether either string contains the other,
// case-insensitively.
func tagsResemble(tag, want string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	want = strings.ToLower(strings.TrimSpace(want))
	if tag == "" || want == "" {
		return false
	}
	return strings.Contains(tag, want) || strings.Contains(want, tag)
}
