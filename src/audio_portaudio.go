package malamute

/*------------------------------------------------------------------
 *
 * Purpose:	Live sound device input and output through portaudio.
 *
 * Description:	The rest of the system only sees the byte-stream
 *		interfaces; format conversion to and from the device's
 *		int16 frames happens here.
 *
 *------------------------------------------------------------------*/

import (
	"github.com/gordonklaus/portaudio"
	"github.com/pkg/errors"
)

type pa_source_s struct {
	stream *portaudio.Stream
	frames []int16
	buf    []byte
	next   int
}

func audio_portaudio_source(samples_per_sec int, num_channels int) (audio_byte_source, error) {

	if err := portaudio.Initialize(); err != nil {
		return nil, errors.Wrap(err, "initialize portaudio")
	}

	var s = &pa_source_s{
		frames: make([]int16, 1024*num_channels),
	}

	var stream, err = portaudio.OpenDefaultStream(num_channels, 0, float64(samples_per_sec), len(s.frames)/num_channels, s.frames)
	if err != nil {
		return nil, errors.Wrap(err, "open audio input stream")
	}
	s.stream = stream

	if err := stream.Start(); err != nil {
		return nil, errors.Wrap(err, "start audio input stream")
	}

	return s, nil
}

func (s *pa_source_s) audio_get() int {
	for s.next >= len(s.buf) {
		if shutdown_requested() {
			return -1
		}
		if err := s.stream.Read(); err != nil {
			dw_log.Error("Audio input error.", "err", err)
			return -1
		}
		s.buf = s.buf[:0]
		for _, f := range s.frames {
			s.buf = append(s.buf, byte(f&0xff), byte((f>>8)&0xff))
		}
		s.next = 0
	}
	var b = s.buf[s.next]
	s.next++
	return int(b)
}

type pa_sink_s struct {
	stream *portaudio.Stream
	frames []int16
	fill   int
	lsb    int
	have   bool
}

func audio_portaudio_sink(samples_per_sec int, num_channels int) (audio_byte_sink, error) {

	if err := portaudio.Initialize(); err != nil {
		return nil, errors.Wrap(err, "initialize portaudio")
	}

	var s = &pa_sink_s{
		frames: make([]int16, 1024*num_channels),
	}

	var stream, err = portaudio.OpenDefaultStream(0, num_channels, float64(samples_per_sec), len(s.frames)/num_channels, &s.frames)
	if err != nil {
		return nil, errors.Wrap(err, "open audio output stream")
	}
	s.stream = stream

	if err := stream.Start(); err != nil {
		return nil, errors.Wrap(err, "start audio output stream")
	}

	return s, nil
}

/* Pairs of bytes, little endian, become output frames. */

func (s *pa_sink_s) audio_put(a int, b byte) {
	if !s.have {
		s.lsb = int(b)
		s.have = true
		return
	}
	s.have = false

	s.frames[s.fill] = int16(uint16(s.lsb) | uint16(b)<<8)
	s.fill++

	if s.fill == len(s.frames) {
		s.audio_flush(a)
	}
}

func (s *pa_sink_s) audio_flush(a int) {
	if s.fill == 0 {
		return
	}
	for i := s.fill; i < len(s.frames); i++ {
		s.frames[i] = 0
	}
	if err := s.stream.Write(); err != nil {
		dw_log.Error("Audio output error.", "err", err)
	}
	s.fill = 0
}
