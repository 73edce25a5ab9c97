package mkvtoolnix

import (
	"regexp"
	"strconv"
	"strings"
)

// trackLine matches one entry of `mkvmerge -i` output, for example:
//
//	Track ID 2: subtitles (SubStationAlpha)
var trackLine = regexp.MustCompile(`^Track ID (\d+):(.*)$`)

const subtitleMarker = "subtitles"

// SubtitleTrackID returns the identifier of the first subtitle track listed in
// an `mkvmerge -i` inventory. Only the first subtitle track is ever selected.
func SubtitleTrackID(output string) (int, bool) {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		match := trackLine.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		if !strings.Contains(match[2], subtitleMarker) {
			continue
		}
		id, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		return id, true
	}
	return 0, false
}
