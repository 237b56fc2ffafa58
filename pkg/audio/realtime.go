package audio

import (
	"encoding/binary"

	"github.com/ebitengine/oto/v3"
)

// RealtimeOutput manages real-time audio playback of a SampleSource.
type RealtimeOutput struct {
	source     SampleSource
	sampleRate int
	otoCtx     *oto.Context
	otoPlayer  *oto.Player
	buffer     []float64
	running    bool
}

// NewRealtimeOutput creates a real-time audio output rendering source at
// sampleRate Hz. On failure (e.g. no audio device present) it returns a
// nil output and an error rather than panicking, matching the graceful
// degradation expected at this collaborator boundary.
func NewRealtimeOutput(source SampleSource, sampleRate int) (*RealtimeOutput, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	}

	otoCtx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	rt := &RealtimeOutput{
		source:     source,
		sampleRate: sampleRate,
		otoCtx:     otoCtx,
		buffer:     make([]float64, 512),
		running:    true,
	}

	rt.otoPlayer = otoCtx.NewPlayer(&audioStream{rt: rt})
	rt.otoPlayer.SetBufferSize(sampleRate / 10)
	rt.otoPlayer.Play()

	return rt, nil
}

// Close stops the audio output.
func (rt *RealtimeOutput) Close() {
	rt.running = false
	if rt.otoPlayer != nil {
		rt.otoPlayer.Close()
	}
}

// audioStream implements io.Reader for oto.
type audioStream struct {
	rt *RealtimeOutput
}

func (s *audioStream) Read(buf []byte) (int, error) {
	if !s.rt.running {
		for i := range buf {
			buf[i] = 0
		}
		return len(buf), nil
	}

	samples := len(buf) / 2
	if samples > len(s.rt.buffer) {
		s.rt.buffer = make([]float64, samples)
	}

	s.rt.source.Render(s.rt.buffer[:samples])

	for i := 0; i < samples; i++ {
		sample := s.rt.buffer[i]
		if sample > 1.0 {
			sample = 1.0
		}
		if sample < -1.0 {
			sample = -1.0
		}
		s16 := int16(sample * 32767)
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s16))
	}

	return samples * 2, nil
}
