package audio

import "github.com/gabriel-vasile/mimetype"

type container int

const (
	containerUnknown container = iota
	containerWAV
	containerFLAC
	containerMP3
)

func (c container) String() string {
	switch c {
	case containerWAV:
		return "wav"
	case containerFLAC:
		return "flac"
	case containerMP3:
		return "mp3"
	default:
		return "unknown"
	}
}

// headerSize is how many leading bytes sniff inspects, matching mimetype's default read limit
const headerSize = 3072

// sniff identifies containers the in-process decoders handle. Everything else goes to ffmpeg.
// mimetype only reports audio/mpeg for Layer III frame sync or an ID3 tag, which is what go-mp3 decodes.
func sniff(header []byte) container {
	mime := mimetype.Detect(header)
	switch {
	case mime.Is("audio/wav"):
		return containerWAV
	case mime.Is("audio/flac"):
		return containerFLAC
	case mime.Is("audio/mpeg"):
		return containerMP3
	default:
		return containerUnknown
	}
}
