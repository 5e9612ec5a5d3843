package player

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/gopxl/beep"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

const int16Scale = 1 << 15

// audioDecoder is implemented by all format-specific decoders. Positions and
// lengths are in sample frames at the decoder's own rate.
type audioDecoder interface {
	beep.StreamSeeker
	SampleRate() beep.SampleRate
}

// newDecoder detects format by file extension and returns the appropriate decoder.
func newDecoder(f *os.File) (audioDecoder, error) {
	ext := strings.ToLower(filepath.Ext(f.Name()))
	switch ext {
	case ".mp3":
		return newMP3Decoder(f)
	case ".wav":
		return newWAVDecoder(f)
	case ".flac":
		return newFLACDecoder(f)
	case ".ogg", ".oga":
		return newOGGDecoder(f)
	default:
		return nil, fmt.Errorf("unsupported format: %s", ext)
	}
}

func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// --- MP3 decoder ---

// go-mp3 always yields 16-bit stereo.
const mp3FrameSize = 4

type mp3Decoder struct {
	dec *mp3.Decoder
	buf []byte
	pos int
	err error
}

func newMP3Decoder(f *os.File) (*mp3Decoder, error) {
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("decoding MP3: %w", err)
	}
	return &mp3Decoder{dec: dec}, nil
}

func (d *mp3Decoder) Stream(samples [][2]float64) (int, bool) {
	if d.err != nil {
		return 0, false
	}
	need := len(samples) * mp3FrameSize
	if cap(d.buf) < need {
		d.buf = make([]byte, need)
	}
	n, err := io.ReadFull(d.dec, d.buf[:need])
	frames := n / mp3FrameSize
	for i := range frames {
		off := i * mp3FrameSize
		samples[i][0] = float64(int16(binary.LittleEndian.Uint16(d.buf[off:]))) / int16Scale
		samples[i][1] = float64(int16(binary.LittleEndian.Uint16(d.buf[off+2:]))) / int16Scale
	}
	d.pos += frames
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		d.err = err
	}
	return frames, frames > 0
}

func (d *mp3Decoder) Err() error                  { return d.err }
func (d *mp3Decoder) Len() int                    { return int(d.dec.Length() / mp3FrameSize) }
func (d *mp3Decoder) Position() int               { return d.pos }
func (d *mp3Decoder) SampleRate() beep.SampleRate { return beep.SampleRate(d.dec.SampleRate()) }

func (d *mp3Decoder) Seek(p int) error {
	if _, err := d.dec.Seek(int64(p)*mp3FrameSize, io.SeekStart); err != nil {
		return fmt.Errorf("seeking MP3: %w", err)
	}
	d.pos = p
	return nil
}

// --- WAV decoder ---

type wavDecoder struct {
	file      *os.File
	pcmStart  int64 // byte offset in file where PCM data begins
	frames    int
	pos       int
	rate      int
	channels  int
	bitDepth  int
	frameSize int // bytes per sample frame in the file
	buf       []byte
	err       error
}

func newWAVDecoder(f *os.File) (*wavDecoder, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}
	// FwdToPCM positions the reader at the start of PCM data
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}

	channels := int(dec.NumChans)
	bitDepth := int(dec.BitDepth)
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("unsupported WAV bit depth: %d", bitDepth)
	}
	if channels < 1 {
		return nil, fmt.Errorf("unsupported WAV channel count: %d", channels)
	}
	frameSize := channels * bitDepth / 8

	pcmStart, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("getting PCM start position: %w", err)
	}

	return &wavDecoder{
		file:      f,
		pcmStart:  pcmStart,
		frames:    int(dec.PCMLen() / int64(frameSize)),
		rate:      int(dec.SampleRate),
		channels:  channels,
		bitDepth:  bitDepth,
		frameSize: frameSize,
	}, nil
}

func (d *wavDecoder) Stream(samples [][2]float64) (int, bool) {
	if d.err != nil {
		return 0, false
	}
	want := min(len(samples), d.frames-d.pos)
	if want <= 0 {
		return 0, false
	}
	need := want * d.frameSize
	if cap(d.buf) < need {
		d.buf = make([]byte, need)
	}
	n, err := io.ReadFull(d.file, d.buf[:need])
	frames := n / d.frameSize
	bytesPerSample := d.bitDepth / 8
	for i := range frames {
		off := i * d.frameSize
		left := d.sample(d.buf[off:])
		right := left
		if d.channels > 1 {
			right = d.sample(d.buf[off+bytesPerSample:])
		}
		samples[i] = [2]float64{left, right}
	}
	d.pos += frames
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		d.err = err
	}
	return frames, frames > 0
}

func (d *wavDecoder) sample(b []byte) float64 {
	switch d.bitDepth {
	case 8:
		// 8-bit WAV is unsigned
		return float64(int(b[0])-128) / 128
	case 16:
		return float64(int16(binary.LittleEndian.Uint16(b))) / int16Scale
	case 24:
		s := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
		if s&0x800000 != 0 {
			s |= ^0xFFFFFF // sign extend
		}
		return float64(s) / (1 << 23)
	default:
		return float64(int32(binary.LittleEndian.Uint32(b))) / (1 << 31)
	}
}

func (d *wavDecoder) Err() error                  { return d.err }
func (d *wavDecoder) Len() int                    { return d.frames }
func (d *wavDecoder) Position() int               { return d.pos }
func (d *wavDecoder) SampleRate() beep.SampleRate { return beep.SampleRate(d.rate) }

func (d *wavDecoder) Seek(p int) error {
	p = max(0, min(p, d.frames))
	if _, err := d.file.Seek(d.pcmStart+int64(p*d.frameSize), io.SeekStart); err != nil {
		return fmt.Errorf("seeking WAV: %w", err)
	}
	d.pos = p
	return nil
}

// --- FLAC decoder ---

type flacDecoder struct {
	stream  *flac.Stream
	frames  int
	pos     int
	bps     uint
	pending [][2]float64 // decoded but not yet streamed
	err     error
}

func newFLACDecoder(f *os.File) (*flacDecoder, error) {
	stream, err := flac.NewSeek(f)
	if err != nil {
		return nil, fmt.Errorf("decoding FLAC: %w", err)
	}
	return &flacDecoder{
		stream: stream,
		frames: int(stream.Info.NSamples),
		bps:    uint(stream.Info.BitsPerSample),
	}, nil
}

func (d *flacDecoder) Stream(samples [][2]float64) (int, bool) {
	n := 0
	for n < len(samples) && d.err == nil {
		if len(d.pending) == 0 {
			if err := d.decodeFrame(); err != nil {
				if !errors.Is(err, io.EOF) {
					d.err = err
				}
				break
			}
		}
		c := copy(samples[n:], d.pending)
		d.pending = d.pending[c:]
		n += c
	}
	d.pos += n
	return n, n > 0
}

func (d *flacDecoder) decodeFrame() error {
	frame, err := d.stream.ParseNext()
	if err != nil {
		return err
	}
	scale := float64(int64(1) << (d.bps - 1))
	count := int(frame.Subframes[0].NSamples)
	out := make([][2]float64, count)
	for i := range count {
		left := float64(frame.Subframes[0].Samples[i]) / scale
		right := left
		if len(frame.Subframes) > 1 {
			right = float64(frame.Subframes[1].Samples[i]) / scale
		}
		out[i] = [2]float64{clampUnit(left), clampUnit(right)}
	}
	d.pending = out
	return nil
}

func (d *flacDecoder) Err() error                  { return d.err }
func (d *flacDecoder) Len() int                    { return d.frames }
func (d *flacDecoder) Position() int               { return d.pos }
func (d *flacDecoder) SampleRate() beep.SampleRate { return beep.SampleRate(d.stream.Info.SampleRate) }

// Seek lands on the frame containing p and discards samples up to p.
func (d *flacDecoder) Seek(p int) error {
	p = max(0, min(p, d.frames))
	at, err := d.stream.Seek(uint64(p))
	if err != nil {
		return fmt.Errorf("seeking FLAC: %w", err)
	}
	d.pending = nil
	d.err = nil
	d.pos = int(at)
	if skip := p - int(at); skip > 0 {
		discard := make([][2]float64, skip)
		d.Stream(discard)
	}
	return nil
}

// --- OGG Vorbis decoder ---

type oggDecoder struct {
	reader *oggvorbis.Reader
	buf    []float32
	err    error
}

func newOGGDecoder(f *os.File) (*oggDecoder, error) {
	reader, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decoding OGG: %w", err)
	}
	return &oggDecoder{reader: reader}, nil
}

func (d *oggDecoder) Stream(samples [][2]float64) (int, bool) {
	if d.err != nil {
		return 0, false
	}
	channels := d.reader.Channels()
	need := len(samples) * channels
	if cap(d.buf) < need {
		d.buf = make([]float32, need)
	}

	// Vorbis packets can end mid-request; keep reading until full.
	n := 0
	for n < need {
		got, err := d.reader.Read(d.buf[n:need])
		n += got
		if err != nil {
			if !errors.Is(err, io.EOF) {
				d.err = err
			}
			break
		}
		if got == 0 {
			break
		}
	}

	frames := n / channels
	for i := range frames {
		left := float64(d.buf[i*channels])
		right := left
		if channels > 1 {
			right = float64(d.buf[i*channels+1])
		}
		samples[i] = [2]float64{clampUnit(left), clampUnit(right)}
	}
	return frames, frames > 0
}

func (d *oggDecoder) Err() error                  { return d.err }
func (d *oggDecoder) Len() int                    { return int(d.reader.Length()) }
func (d *oggDecoder) Position() int               { return int(d.reader.Position()) }
func (d *oggDecoder) SampleRate() beep.SampleRate { return beep.SampleRate(d.reader.SampleRate()) }

func (d *oggDecoder) Seek(p int) error {
	if err := d.reader.SetPosition(int64(p)); err != nil {
		return fmt.Errorf("seeking OGG: %w", err)
	}
	d.err = nil
	return nil
}
