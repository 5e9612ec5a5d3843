package player

import (
	"encoding/binary"
	"io"
	"sync"

	"github.com/gopxl/beep"
)

// pcmReader encodes a stereo streamer as s16le bytes for the audio device,
// copying every frame it hands out into a Tap and counting frames played.
type pcmReader struct {
	mu     sync.Mutex
	src    beep.Streamer
	tap    *Tap
	frames int64 // output frames handed to the device
	eof    bool
	buf    [][2]float64
}

func newPCMReader(src beep.Streamer, tap *Tap) *pcmReader {
	return &pcmReader{src: src, tap: tap}
}

func (r *pcmReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.eof {
		return 0, io.EOF
	}
	want := len(p) / outputFrameSize
	if want == 0 {
		return 0, nil
	}
	if cap(r.buf) < want {
		r.buf = make([][2]float64, want)
	}
	frames := r.buf[:want]

	n, ok := r.src.Stream(frames)
	if !ok || n == 0 {
		r.eof = true
		return 0, io.EOF
	}
	for i := range n {
		off := i * outputFrameSize
		binary.LittleEndian.PutUint16(p[off:], uint16(toInt16(frames[i][0])))
		binary.LittleEndian.PutUint16(p[off+2:], uint16(toInt16(frames[i][1])))
	}
	if r.tap != nil {
		r.tap.Write(frames[:n])
	}
	r.frames += int64(n)
	return n * outputFrameSize, nil
}

// seek repositions the source with reads blocked. move seeks the underlying
// decoder and returns the streamer to continue from and its output frame.
func (r *pcmReader) seek(move func() (beep.Streamer, int64, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	src, frame, err := move()
	if err != nil {
		return err
	}
	r.src = src
	r.frames = frame
	r.eof = false
	return nil
}

func (r *pcmReader) position() (frames int64, eof bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames, r.eof
}

func toInt16(v float64) int16 {
	v = clampUnit(v) * (int16Scale - 1)
	return int16(v)
}
