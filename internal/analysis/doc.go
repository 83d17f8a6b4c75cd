// Package analysis extracts musical features from mono audio: note onsets
// (spectral flux), pitch (YIN) and block levels. The commands use it to
// report on material before and after time-stretching.
package analysis
