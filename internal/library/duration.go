package library

import (
	"io"
	"strings"

	"github.com/mewkiz/flac"
	"github.com/tcolgate/mp3"
)

// probeLength reads the stream length in seconds and the average bit rate in bits per second.
//
// Only MP3 and FLAC are measured; other formats report zero.
func probeLength(r io.Reader, format string, size int64) (float64, int) {
	switch strings.ToLower(format) {
	case "mp3":
		return mp3Length(r)
	case "flac":
		return flacLength(r, size)
	default:
		return 0, 0
	}
}

// mp3Length sums frame durations, so VBR files are measured exactly.
func mp3Length(r io.Reader) (float64, int) {
	var (
		dec     = mp3.NewDecoder(r)
		frame   mp3.Frame
		skipped int
		seconds float64
		rates   int64
		frames  int64
	)
	for {
		if err := dec.Decode(&frame, &skipped); err != nil {
			break
		}
		seconds += frame.Duration().Seconds()
		rates += int64(frame.Header().BitRate())
		frames++
	}
	if frames == 0 {
		return 0, 0
	}
	return seconds, int(rates / frames)
}

// flacLength reads the sample count from the StreamInfo block.
func flacLength(r io.Reader, size int64) (float64, int) {
	stream, err := flac.New(r)
	if err != nil || stream.Info == nil || stream.Info.SampleRate == 0 {
		return 0, 0
	}
	seconds := float64(stream.Info.NSamples) / float64(stream.Info.SampleRate)
	if seconds == 0 {
		return 0, 0
	}
	return seconds, int(float64(size*8) / seconds)
}
