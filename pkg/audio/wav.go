// Package audio reads recorded utterances from RIFF/WAV containers and
// validates their shape against the configured audio contract before any
// acoustic processing happens.
//
// Only integer PCM is supported. Samples are returned normalized to
// [-1.0, 1.0] as float64, which is the representation the acoustic provider
// contract expects.
package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// Shape is the audio contract an utterance must satisfy: the sample rate,
// channel count, and sample format the acoustic model was trained on.
type Shape struct {
	// SampleRate in Hz, e.g. 16000.
	SampleRate int

	// Channels must be 1 for scoring (the model consumes mono audio).
	Channels int

	// BitsPerSample is the PCM sample width, e.g. 16.
	BitsPerSample int
}

// Clip is a decoded utterance.
type Clip struct {
	// Samples are normalized mono samples in [-1.0, 1.0].
	Samples []float64

	// SampleRate is the rate the samples were recorded at.
	SampleRate int
}

// Duration returns the clip length in seconds.
func (c Clip) Duration() float64 {
	if c.SampleRate == 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate)
}

// header holds the parsed fmt-chunk fields.
type header struct {
	audioFormat   uint16
	numChannels   uint16
	sampleRate    uint32
	bitsPerSample uint16
}

// ReadWAV parses a WAV stream, checks it against the expected shape, and
// returns the normalized samples. A shape mismatch (wrong rate, channels, or
// bit depth) is reported as an error naming the offending field, so callers
// can surface "re-record at 16kHz mono" style messages.
func ReadWAV(r io.ReadSeeker, want Shape) (Clip, error) {
	var clip Clip

	if err := expectTag(r, "RIFF"); err != nil {
		return clip, err
	}
	var fileSize uint32
	if err := binary.Read(r, binary.LittleEndian, &fileSize); err != nil {
		return clip, fmt.Errorf("audio: read RIFF size: %w", err)
	}
	if err := expectTag(r, "WAVE"); err != nil {
		return clip, err
	}

	var (
		hdr      header
		fmtFound bool
		samples  []float64
	)

	for samples == nil {
		var chunkID [4]byte
		if err := binary.Read(r, binary.LittleEndian, &chunkID); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return clip, fmt.Errorf("audio: read chunk ID: %w", err)
		}
		var chunkSize uint32
		if err := binary.Read(r, binary.LittleEndian, &chunkSize); err != nil {
			return clip, fmt.Errorf("audio: read chunk size: %w", err)
		}

		switch string(chunkID[:]) {
		case "fmt ":
			if err := readFmtChunk(r, chunkSize, &hdr); err != nil {
				return clip, err
			}
			fmtFound = true

		case "data":
			if !fmtFound {
				return clip, errors.New("audio: data chunk before fmt chunk")
			}
			if err := validateShape(hdr, want); err != nil {
				return clip, err
			}
			var err error
			samples, err = readDataChunk(r, chunkSize, hdr)
			if err != nil {
				return clip, err
			}

		default:
			// Skip unknown chunks; RIFF chunks are aligned to even offsets.
			skip := int64(chunkSize)
			if chunkSize%2 != 0 {
				skip++
			}
			if _, err := r.Seek(skip, io.SeekCurrent); err != nil {
				return clip, fmt.Errorf("audio: skip chunk %q: %w", chunkID, err)
			}
		}
	}

	if samples == nil {
		return clip, errors.New("audio: missing data chunk")
	}
	clip.Samples = samples
	clip.SampleRate = int(hdr.sampleRate)
	return clip, nil
}

// ReadWAVFile is a convenience wrapper around [ReadWAV] for file paths.
func ReadWAVFile(path string, want Shape) (Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return Clip{}, fmt.Errorf("audio: open %q: %w", path, err)
	}
	defer f.Close()

	clip, err := ReadWAV(f, want)
	if err != nil {
		return Clip{}, fmt.Errorf("audio: %q: %w", path, err)
	}
	return clip, nil
}

func expectTag(r io.Reader, tag string) error {
	var got [4]byte
	if err := binary.Read(r, binary.LittleEndian, &got); err != nil {
		return fmt.Errorf("audio: read %s tag: %w", tag, err)
	}
	if string(got[:]) != tag {
		return fmt.Errorf("audio: not a %s stream (got %q)", tag, got)
	}
	return nil
}

func readFmtChunk(r io.ReadSeeker, size uint32, hdr *header) error {
	if size < 16 {
		return fmt.Errorf("audio: fmt chunk too small: %d bytes", size)
	}
	var raw struct {
		AudioFormat   uint16
		NumChannels   uint16
		SampleRate    uint32
		ByteRate      uint32
		BlockAlign    uint16
		BitsPerSample uint16
	}
	if err := binary.Read(r, binary.LittleEndian, &raw); err != nil {
		return fmt.Errorf("audio: read fmt chunk: %w", err)
	}
	// Skip any fmt extension bytes.
	if size > 16 {
		if _, err := r.Seek(int64(size-16), io.SeekCurrent); err != nil {
			return fmt.Errorf("audio: skip fmt extension: %w", err)
		}
	}
	hdr.audioFormat = raw.AudioFormat
	hdr.numChannels = raw.NumChannels
	hdr.sampleRate = raw.SampleRate
	hdr.bitsPerSample = raw.BitsPerSample
	return nil
}

func validateShape(hdr header, want Shape) error {
	const pcmFormat = 1
	var errs []error
	if hdr.audioFormat != pcmFormat {
		errs = append(errs, fmt.Errorf("audio format %d is not integer PCM", hdr.audioFormat))
	}
	if want.SampleRate > 0 && int(hdr.sampleRate) != want.SampleRate {
		errs = append(errs, fmt.Errorf("sample rate %d Hz, want %d Hz", hdr.sampleRate, want.SampleRate))
	}
	if want.Channels > 0 && int(hdr.numChannels) != want.Channels {
		errs = append(errs, fmt.Errorf("%d channels, want %d", hdr.numChannels, want.Channels))
	}
	if want.BitsPerSample > 0 && int(hdr.bitsPerSample) != want.BitsPerSample {
		errs = append(errs, fmt.Errorf("%d bits per sample, want %d", hdr.bitsPerSample, want.BitsPerSample))
	}
	return errors.Join(errs...)
}

func readDataChunk(r io.Reader, size uint32, hdr header) ([]float64, error) {
	switch hdr.bitsPerSample {
	case 16:
		n := int(size) / 2
		raw := make([]int16, n)
		if err := binary.Read(r, binary.LittleEndian, &raw); err != nil {
			return nil, fmt.Errorf("audio: read samples: %w", err)
		}
		samples := make([]float64, n)
		for i, s := range raw {
			samples[i] = float64(s) / 32768.0
		}
		return samples, nil
	case 8:
		raw := make([]uint8, size)
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, fmt.Errorf("audio: read samples: %w", err)
		}
		samples := make([]float64, len(raw))
		for i, s := range raw {
			samples[i] = (float64(s) - 128.0) / 128.0
		}
		return samples, nil
	default:
		return nil, fmt.Errorf("audio: unsupported bit depth %d", hdr.bitsPerSample)
	}
}
