package malamute

/*------------------------------------------------------------------
 *
 * Purpose:	Read and write .wav audio files.
 *
 * Description:	The reader accepts RIFF/WAVE with the usual fmt and
 *		data chunks, skipping over an optional LIST chunk, and
 *		hands the PCM data to the demodulators as a byte
 *		stream.  1 or 2 channels, 8 or 16 bits per sample, any
 *		reasonable rate from 8k to 192k.
 *
 *------------------------------------------------------------------*/

import (
	"bytes"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/pkg/errors"
)

type wav_reader_s struct {
	samples_per_sec int
	bits_per_sample int
	num_channels    int

	data []byte /* Raw PCM bytes, as they would arrive from a device. */
	next int
}

/*------------------------------------------------------------------
 *
 * Name:	wav_open_read
 *
 * Purpose:	Open a .wav file, or standard input for "-", and
 *		validate the format.
 *
 *------------------------------------------------------------------*/

func wav_open_read(fname string) (*wav_reader_s, error) {

	var raw []byte
	var err error

	if fname == "-" {
		raw, err = io.ReadAll(os.Stdin)
		if err != nil {
			return nil, errors.Wrap(err, "read standard input")
		}
	} else {
		raw, err = os.ReadFile(fname)
		if err != nil {
			return nil, errors.Wrap(err, "open audio file")
		}
	}

	var dec = wav.NewDecoder(bytes.NewReader(raw))
	dec.ReadInfo()
	if dec.Err() != nil {
		return nil, errors.Wrap(dec.Err(), "not a .WAV format file")
	}

	if dec.WavAudioFormat != 1 {
		return nil, errors.Errorf("only audio format 1 (PCM) is understood, this file has %d", dec.WavAudioFormat)
	}
	if dec.NumChans != 1 && dec.NumChans != 2 {
		return nil, errors.Errorf("only 1 or 2 channels are understood, this file has %d", dec.NumChans)
	}
	if dec.BitDepth != 8 && dec.BitDepth != 16 {
		return nil, errors.Errorf("only 8 or 16 bits per sample are understood, this file has %d", dec.BitDepth)
	}
	if dec.SampleRate < 8000 || dec.SampleRate > 192000 {
		return nil, errors.Errorf("unreasonable sample rate %d", dec.SampleRate)
	}

	var r = &wav_reader_s{
		samples_per_sec: int(dec.SampleRate),
		bits_per_sample: int(dec.BitDepth),
		num_channels:    int(dec.NumChans),
	}

	/*
	 * Pull out all the PCM data and keep it as the byte stream the
	 * rest of the receive path expects.
	 */
	var buf = &audio.IntBuffer{Data: make([]int, 8192)}
	for {
		var n, rerr = dec.PCMBuffer(buf)
		if rerr != nil {
			return nil, errors.Wrap(rerr, "read audio data")
		}
		if n == 0 {
			break
		}
		for _, sam := range buf.Data[:n] {
			if r.bits_per_sample == 8 {
				r.data = append(r.data, byte(sam))
			} else {
				r.data = append(r.data, byte(sam&0xff), byte((sam>>8)&0xff))
			}
		}
		if n < len(buf.Data) {
			break
		}
	}

	return r, nil
}

func (r *wav_reader_s) audio_get() int {
	if r.next >= len(r.data) {
		return -1
	}
	var b = r.data[r.next]
	r.next++
	return int(b)
}

/* Total number of audio bytes, for the duration display. */

func (r *wav_reader_s) data_size() int {
	return len(r.data)
}

/*------------------------------------------------------------------
 *
 * Name:	wav_writer_s
 *
 * Purpose:	Byte sink which accumulates generated audio and writes
 *		it out as a .wav file when finished.
 *
 *------------------------------------------------------------------*/

type wav_writer_s struct {
	fname           string
	samples_per_sec int
	bits_per_sample int
	num_channels    int

	data []byte
}

func wav_open_write(fname string, samples_per_sec int, bits_per_sample int, num_channels int) *wav_writer_s {
	return &wav_writer_s{
		fname:           fname,
		samples_per_sec: samples_per_sec,
		bits_per_sample: bits_per_sample,
		num_channels:    num_channels,
	}
}

func (w *wav_writer_s) audio_put(a int, b byte) {
	w.data = append(w.data, b)
}

func (w *wav_writer_s) audio_flush(a int) {}

func (w *wav_writer_s) byte_count() int {
	return len(w.data)
}

/* Convert the byte stream back to samples and let the encoder do the
 * header bookkeeping. */

func (w *wav_writer_s) wav_close() error {

	var out, err = os.Create(w.fname)
	if err != nil {
		return errors.Wrap(err, "create output file")
	}
	defer out.Close()

	var enc = wav.NewEncoder(out, w.samples_per_sec, w.bits_per_sample, w.num_channels, 1)

	var samples []int
	if w.bits_per_sample == 8 {
		samples = make([]int, len(w.data))
		for i, b := range w.data {
			samples[i] = int(b)
		}
	} else {
		samples = make([]int, len(w.data)/2)
		for i := range samples {
			samples[i] = int(int16(uint16(w.data[2*i]) | uint16(w.data[2*i+1])<<8))
		}
	}

	var buf = &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: w.num_channels,
			SampleRate:  w.samples_per_sec,
		},
		Data:           samples,
		SourceBitDepth: w.bits_per_sample,
	}

	if err := enc.Write(buf); err != nil {
		return errors.Wrap(err, "write audio data")
	}
	return errors.Wrap(enc.Close(), "finish output file")
}
