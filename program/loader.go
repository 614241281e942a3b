package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mjibson/go-dsp/wav"
	"github.com/parquet-go/parquet-go"
	"github.com/tidwall/gjson"
)

// Channel is one exported recording channel.
type Channel struct {
	Title    string
	Units    string
	Values   []float64
	Interval float64 // seconds between samples
	Start    float64 // time of the first sample, seconds
}

// RawData maps channel names to channels, as exported by the analysis
// environment.
type RawData map[string]Channel

// Names returns the channel names in sorted order.
func (r RawData) Names() []string {
	names := make([]string, 0, len(r))
	for k := range r {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Lookup finds a channel by exact name, then case-insensitively. An empty
// name selects the first channel in sorted order.
func (r RawData) Lookup(name string) (string, Channel, bool) {
	if name == "" {
		names := r.Names()
		if len(names) == 0 {
			return "", Channel{}, false
		}
		return names[0], r[names[0]], true
	}
	if ch, ok := r[name]; ok {
		return name, ch, true
	}
	for _, k := range r.Names() {
		if strings.EqualFold(k, name) {
			return k, r[k], true
		}
	}
	return "", Channel{}, false
}

// Trace converts the named channel into a Trace.
func (r RawData) Trace(name string) (*Trace, error) {
	key, ch, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("channel %q not found (have %s)", name, strings.Join(r.Names(), ", "))
	}
	if !(ch.Interval > 0) {
		return nil, fmt.Errorf("channel %q: interval must be > 0 (got %v)", key, ch.Interval)
	}
	tr, err := NewUniformTrace(ch.Values, 1/ch.Interval, ch.Start)
	if err != nil {
		return nil, fmt.Errorf("channel %q: %w", key, err)
	}
	tr.Title = ch.Title
	tr.Units = ch.Units
	return tr, nil
}

// LoadTrace loads one channel of a recording export. The format follows the
// file extension: .json, .wav or .parquet. Every failure is a *LoadError.
func LoadTrace(path, channel string) (*Trace, error) {
	raw, err := LoadRawData(path)
	if err != nil {
		return nil, err
	}
	tr, err := raw.Trace(channel)
	if err != nil {
		return nil, &LoadError{Path: path, Channel: channel, Err: err}
	}
	return tr, nil
}

// LoadTraceReader loads one channel of a JSON export from r. name is only
// used in errors.
func LoadTraceReader(r io.Reader, name, channel string) (*Trace, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &LoadError{Path: name, Err: err}
	}
	raw, err := decodeJSONRawData(data)
	if err != nil {
		return nil, &LoadError{Path: name, Err: err}
	}
	tr, err := raw.Trace(channel)
	if err != nil {
		return nil, &LoadError{Path: name, Channel: channel, Err: err}
	}
	return tr, nil
}

func LoadRawData(path string) (RawData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	var raw RawData
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		var data []byte
		if data, err = io.ReadAll(f); err == nil {
			raw, err = decodeJSONRawData(data)
		}
	case ".wav":
		raw, err = decodeWAVRawData(f)
	case ".parquet":
		raw, err = decodeParquetRawData(f)
	default:
		err = fmt.Errorf("unsupported file type %q (want .json, .wav or .parquet)", ext)
	}
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	if len(raw) == 0 {
		return nil, loadErrorf(path, "", "no channels")
	}
	return raw, nil
}

// decodeJSONRawData reads {"raw_data": {"<name>": {"title", "units",
// "interval", "start", "values"}}}.
func decodeJSONRawData(data []byte) (RawData, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid JSON")
	}
	root := gjson.GetBytes(data, "raw_data")
	if !root.IsObject() {
		return nil, errors.New(`missing "raw_data" object`)
	}
	raw := make(RawData)
	var err error
	root.ForEach(func(key, value gjson.Result) bool {
		var ch Channel
		ch, err = decodeJSONChannel(value)
		if err != nil {
			err = fmt.Errorf("raw_data.%s: %w", key.String(), err)
			return false
		}
		raw[key.String()] = ch
		return true
	})
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func decodeJSONChannel(v gjson.Result) (Channel, error) {
	if !v.IsObject() {
		return Channel{}, errors.New("not an object")
	}
	title := v.Get("title")
	if title.Type != gjson.String {
		return Channel{}, errors.New(`missing "title" string`)
	}
	values := v.Get("values")
	if !values.IsArray() {
		return Channel{}, errors.New(`missing "values" array`)
	}
	interval := v.Get("interval")
	if interval.Type != gjson.Number {
		return Channel{}, errors.New(`missing "interval" number`)
	}
	ch := Channel{
		Title:    title.String(),
		Units:    v.Get("units").String(),
		Interval: interval.Float(),
		Start:    v.Get("start").Float(),
	}
	for i, x := range values.Array() {
		if x.Type != gjson.Number {
			return Channel{}, fmt.Errorf("values[%d] is not a number", i)
		}
		ch.Values = append(ch.Values, x.Float())
	}
	return ch, nil
}

const wavFormatPCM = 1

// decodeWAVRawData exposes each interleaved WAV channel as Ch1..ChN.
func decodeWAVRawData(r io.Reader) (RawData, error) {
	w, err := wav.New(r)
	if err != nil {
		return nil, err
	}
	channels := int(w.NumChannels)
	if channels < 1 || w.SampleRate == 0 {
		return nil, fmt.Errorf("wav: %d channels at %d Hz", channels, w.SampleRate)
	}
	samples, err := w.ReadFloats(w.Samples)
	if err != nil {
		return nil, err
	}
	// PCM samples come back in [0, 1].
	scale, offset := 1.0, 0.0
	if w.AudioFormat == wavFormatPCM {
		scale, offset = 2, -1
	}
	raw := make(RawData, channels)
	for c := 0; c < channels; c++ {
		values := make([]float64, 0, len(samples)/channels)
		for i := c; i < len(samples); i += channels {
			values = append(values, float64(samples[i])*scale+offset)
		}
		raw[fmt.Sprintf("Ch%d", c+1)] = Channel{
			Title:    fmt.Sprintf("wav channel %d", c+1),
			Values:   values,
			Interval: 1 / float64(w.SampleRate),
		}
	}
	return raw, nil
}

// parquetSample is one row of a long-format parquet export.
type parquetSample struct {
	Channel  string  `parquet:"channel"`
	Title    string  `parquet:"title"`
	Units    string  `parquet:"units"`
	Interval float64 `parquet:"interval"`
	Start    float64 `parquet:"start"`
	Value    float64 `parquet:"value"`
}

func decodeParquetRawData(f *os.File) (RawData, error) {
	rows, err := readParquetRows[parquetSample](f)
	if err != nil {
		return nil, err
	}
	raw := make(RawData)
	for i, row := range rows {
		if row.Channel == "" {
			return nil, fmt.Errorf("row %d: empty channel", i)
		}
		ch, ok := raw[row.Channel]
		if !ok {
			ch = Channel{Title: row.Title, Units: row.Units, Interval: row.Interval, Start: row.Start}
		} else if ch.Interval != row.Interval {
			return nil, fmt.Errorf("row %d: channel %q changes interval from %g to %g", i, row.Channel, ch.Interval, row.Interval)
		}
		ch.Values = append(ch.Values, row.Value)
		raw[row.Channel] = ch
	}
	return raw, nil
}

func readParquetRows[T any](ra io.ReaderAt) ([]T, error) {
	gr := parquet.NewGenericReader[T](ra)
	defer gr.Close()

	out := make([]T, 0, 1024)
	batch := make([]T, 1024)
	for {
		n, err := gr.Read(batch)
		if n > 0 {
			out = append(out, batch[:n]...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
