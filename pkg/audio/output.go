// Package audio bridges a sample-producing voice bank (synth/fm.Chip) to
// real playback (oto) and to file export (WAV), keeping the teacher's
// io.Reader-based streaming shape.
package audio

import (
	"encoding/binary"
	"io"
	"sync"
)

// SampleSource is anything that can render mono float64 PCM into a buffer
// in -1..1 — satisfied by synth/fm.Chip.Render.
type SampleSource interface {
	Render(buf []float64)
}

// Output manages audio output from a SampleSource.
type Output struct {
	Source     SampleSource
	SampleRate int
	BufferSize int

	mu      sync.Mutex
	running bool
}

// NewOutput creates a new audio output at sampleRate Hz, reading from
// source.
func NewOutput(source SampleSource, sampleRate int) *Output {
	return &Output{
		Source:     source,
		SampleRate: sampleRate,
		BufferSize: 4096,
	}
}

// AudioReader implements io.Reader, pulling PCM from an Output's source.
type AudioReader struct {
	output *Output
	buffer []float64
	pos    int
}

// NewAudioReader creates an io.Reader that generates audio.
func (o *Output) NewAudioReader() *AudioReader {
	return &AudioReader{
		output: o,
		buffer: make([]float64, o.BufferSize),
	}
}

// Read implements io.Reader - generates audio samples as 16-bit PCM.
func (ar *AudioReader) Read(p []byte) (n int, err error) {
	if ar.pos >= len(ar.buffer) {
		ar.output.Source.Render(ar.buffer)
		ar.pos = 0
	}

	for n = 0; n+2 <= len(p) && ar.pos < len(ar.buffer); n += 2 {
		sample := ar.buffer[ar.pos]
		ar.pos++

		if sample > 1.0 {
			sample = 1.0
		}
		if sample < -1.0 {
			sample = -1.0
		}

		s16 := int16(sample * 32767)
		binary.LittleEndian.PutUint16(p[n:], uint16(s16))
	}

	return n, nil
}

// WAVWriter writes audio to WAV format.
type WAVWriter struct {
	writer      io.Writer
	sampleRate  int
	channels    int
	dataWritten int
}

// NewWAVWriter creates a WAV writer.
func NewWAVWriter(w io.Writer, sampleRate, channels int) *WAVWriter {
	return &WAVWriter{
		writer:     w,
		sampleRate: sampleRate,
		channels:   channels,
	}
}

// WriteHeader writes the WAV header.
func (w *WAVWriter) WriteHeader(dataSize int) error {
	w.writer.Write([]byte("RIFF"))
	binary.Write(w.writer, binary.LittleEndian, uint32(dataSize+36))
	w.writer.Write([]byte("WAVE"))

	w.writer.Write([]byte("fmt "))
	binary.Write(w.writer, binary.LittleEndian, uint32(16))
	binary.Write(w.writer, binary.LittleEndian, uint16(1))
	binary.Write(w.writer, binary.LittleEndian, uint16(w.channels))
	binary.Write(w.writer, binary.LittleEndian, uint32(w.sampleRate))
	byteRate := w.sampleRate * w.channels * 2
	binary.Write(w.writer, binary.LittleEndian, uint32(byteRate))
	blockAlign := w.channels * 2
	binary.Write(w.writer, binary.LittleEndian, uint16(blockAlign))
	binary.Write(w.writer, binary.LittleEndian, uint16(16))

	w.writer.Write([]byte("data"))
	binary.Write(w.writer, binary.LittleEndian, uint32(dataSize))

	return nil
}

// WriteSamples writes float samples as 16-bit PCM.
func (w *WAVWriter) WriteSamples(samples []float64) error {
	for _, s := range samples {
		if s > 1.0 {
			s = 1.0
		}
		if s < -1.0 {
			s = -1.0
		}
		s16 := int16(s * 32767)
		if err := binary.Write(w.writer, binary.LittleEndian, s16); err != nil {
			return err
		}
		w.dataWritten += 2
	}
	return nil
}

// ExportWAV renders durationSeconds of source's output to writer as a
// 16-bit mono WAV file.
func ExportWAV(source SampleSource, sampleRate int, writer io.Writer, durationSeconds float64) error {
	totalSamples := int(durationSeconds * float64(sampleRate))
	dataSize := totalSamples * 2

	wavWriter := NewWAVWriter(writer, sampleRate, 1)
	if err := wavWriter.WriteHeader(dataSize); err != nil {
		return err
	}

	chunkSize := 4096
	buffer := make([]float64, chunkSize)
	for written := 0; written < totalSamples; {
		remaining := totalSamples - written
		if remaining < chunkSize {
			buffer = buffer[:remaining]
		}
		source.Render(buffer)
		if err := wavWriter.WriteSamples(buffer); err != nil {
			return err
		}
		written += len(buffer)
	}

	return nil
}
