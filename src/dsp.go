package malamute

/*------------------------------------------------------------------
 *
 * Purpose:     Generate the filters used by the demodulators.
 *
 *----------------------------------------------------------------*/

import (
	"math"

	"gonum.org/v1/gonum/dsp/window"
)

/*------------------------------------------------------------------
 *
 * Name:        gen_window
 *
 * Purpose:     Filter window shape.
 *
 * Inputs:   	wtype	- BP_WINDOW_HAMMING, etc.
 *		size	- Number of filter taps.
 *
 * Returns:     Multipliers for the window shape, one per tap.
 *
 *----------------------------------------------------------------*/

func gen_window(wtype bp_window_t, size int) []float64 {

	var w = make([]float64, size)
	for j := range w {
		w[j] = 1.0
	}

	switch wtype {

	case BP_WINDOW_COSINE:
		var center = 0.5 * float64(size-1)
		for j := range w {
			w[j] = math.Cos((float64(j) - center) / float64(size) * math.Pi)
		}

	case BP_WINDOW_HAMMING:
		window.Hamming(w)

	case BP_WINDOW_BLACKMAN:
		window.BlackmanNuttall(w)

	case BP_WINDOW_FLATTOP:
		window.FlatTop(w)

	case BP_WINDOW_TRUNCATED:
		// Leave it rectangular.
	}

	return w
}

/*------------------------------------------------------------------
 *
 * Name:        gen_lowpass
 *
 * Purpose:     Generate low pass filter kernel, normalized for unity
 *		gain at DC.
 *
 * Inputs:   	fc		- Cutoff frequency as fraction of sampling frequency.
 *		filter_size	- Number of filter taps.
 *		wtype		- Window type.
 *
 * Outputs:     lp_filter
 *
 *----------------------------------------------------------------*/

func gen_lowpass(fc float64, lp_filter []float64, filter_size int, wtype bp_window_t) {

	var shape = gen_window(wtype, filter_size)
	var center = 0.5 * float64(filter_size-1)

	for j := 0; j < filter_size; j++ {
		var sinc float64
		if float64(j)-center == 0 {
			sinc = 2 * fc
		} else {
			sinc = math.Sin(2*math.Pi*fc*(float64(j)-center)) / (math.Pi * (float64(j) - center))
		}
		lp_filter[j] = sinc * shape[j]
	}

	var G float64
	for j := 0; j < filter_size; j++ {
		G += lp_filter[j]
	}
	for j := 0; j < filter_size; j++ {
		lp_filter[j] /= G
	}
}

/*------------------------------------------------------------------
 *
 * Name:        gen_bandpass
 *
 * Purpose:     Generate band pass filter kernel for the prefilter,
 *		normalized for a gain of 1/2 in the middle of the passband.
 *
 * Inputs:   	f1, f2		- Cutoff frequencies as fraction of
 *				  sampling frequency.
 *
 * Reference:	http://www.labbookpages.co.uk/audio/firWindowing.html
 *
 *----------------------------------------------------------------*/

func gen_bandpass(f1 float64, f2 float64, bp_filter []float64, filter_size int, wtype bp_window_t) {

	var shape = gen_window(wtype, filter_size)
	var center = 0.5 * float64(filter_size-1)

	for j := 0; j < filter_size; j++ {
		var sinc float64
		if float64(j)-center == 0 {
			sinc = 2 * (f2 - f1)
		} else {
			sinc = math.Sin(2*math.Pi*f2*(float64(j)-center))/(math.Pi*(float64(j)-center)) -
				math.Sin(2*math.Pi*f1*(float64(j)-center))/(math.Pi*(float64(j)-center))
		}
		bp_filter[j] = sinc * shape[j]
	}

	var w = 2 * math.Pi * (f1 + f2) / 2
	var G float64
	for j := 0; j < filter_size; j++ {
		G += 2 * bp_filter[j] * math.Cos((float64(j)-center)*w)
	}
	for j := 0; j < filter_size; j++ {
		bp_filter[j] /= G
	}
}

/*------------------------------------------------------------------
 *
 * Name:        rrc
 *
 * Purpose:     Root Raised Cosine function: mostly the sinc function
 *		with cos windowing to taper off edges faster.
 *
 * Inputs:      t	- Time in units of symbol duration.
 *
 *		a	- Roll off factor, between 0 and 1.
 *
 * Returns:	1 for t = 0 and 0 at all other integer values of t.
 *
 *----------------------------------------------------------------*/

func rrc(t float64, a float64) float64 {

	var sinc, win float64

	if t > -0.001 && t < 0.001 {
		sinc = 1
	} else {
		sinc = math.Sin(math.Pi*t) / (math.Pi * t)
	}

	if math.Abs(a*t) > 0.499 && math.Abs(a*t) < 0.501 {
		win = math.Pi / 4
	} else {
		win = math.Cos(math.Pi*a*t) / (1 - math.Pow(2*a*t, 2))
	}

	return sinc * win
}

/* The RRC low pass filter is supposed to minimize intersymbol interference. */

func gen_rrc_lowpass(pfilter []float64, filter_taps int, rolloff float64, samples_per_symbol float64) {

	for k := 0; k < filter_taps; k++ {
		var t = (float64(k) - (float64(filter_taps)-1.0)/2.0) / samples_per_symbol
		pfilter[k] = rrc(t, rolloff)
	}

	var G float64
	for k := 0; k < filter_taps; k++ {
		G += pfilter[k]
	}
	for k := 0; k < filter_taps; k++ {
		pfilter[k] /= G
	}
}

/* Add sample to buffer and shift the rest down. */

func push_sample(val float64, buff []float64, size int) {
	copy(buff[1:size], buff[:size-1])
	buff[0] = val
}

/* FIR filter kernel. */

func convolve(data []float64, filter []float64, filter_size int) float64 {
	var sum float64
	for j := 0; j < filter_size; j++ {
		sum += filter[j] * data[j]
	}
	return sum
}
