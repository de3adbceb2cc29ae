package sse

import (
	"bytes"
	"errors"
	"strings"
)

// MaxFrameSize - предел незавершенного кадра в буфере декодера
const MaxFrameSize = 1 << 20

var ErrFrameTooLarge = errors.New("sse: frame exceeds size limit")

var boundary = []byte("\n\n")

// Decoder собирает кадры из произвольно нарезанных кусков потока. Кадр
// отдается только когда пришла завершающая пустая строка, поэтому кадр,
// разрезанный между чтениями (в том числе посередине разделителя),
// разбирается так же, как целый.
//
// Если хвост без разделителя превышает MaxFrameSize, буфер сбрасывается,
// а Err возвращает ErrFrameTooLarge. После этого Feed ничего не разбирает.
//
// Decoder не потокобезопасен.
type Decoder struct {
	buf   []byte
	limit int
	err   error
}

func NewDecoder() *Decoder {
	return &Decoder{limit: MaxFrameSize}
}

// Err возвращает ErrFrameTooLarge, если поток прислал слишком длинный кадр.
func (d *Decoder) Err() error {
	return d.err
}

// Feed добавляет кусок потока и возвращает все кадры, которые стали полными.
func (d *Decoder) Feed(chunk []byte) []Frame {
	if d.err != nil {
		return nil
	}

	for _, b := range chunk {
		if b != '\r' {
			d.buf = append(d.buf, b)
		}
	}

	var frames []Frame

	for {
		idx := bytes.Index(d.buf, boundary)
		if idx < 0 {
			break
		}

		block := string(d.buf[:idx])
		d.buf = d.buf[idx+len(boundary):]

		if frame, ok := parseBlock(block); ok {
			frames = append(frames, frame)
		}
	}

	// Прочитанная часть массива больше не нужна
	if len(d.buf) == 0 {
		d.buf = d.buf[:0:0]
	}

	if len(d.buf) > d.limit {
		d.buf = nil
		d.err = ErrFrameTooLarge
	}

	return frames
}

// Flush разбирает незавершенный хвост в конце потока.
func (d *Decoder) Flush() (Frame, bool) {
	block := strings.TrimRight(string(d.buf), "\n")
	d.buf = nil

	return parseBlock(block)
}

// Buffered возвращает количество байт незавершенного кадра.
func (d *Decoder) Buffered() int {
	return len(d.buf)
}

func parseBlock(block string) (Frame, bool) {
	var (
		event    string
		data     strings.Builder
		hasField bool
	)

	for _, line := range strings.Split(block, "\n") {
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")

		switch field {
		case "event":
			event = value
			hasField = true
		case "data":
			data.WriteString(value)
			data.WriteByte('\n')
			hasField = true
		}
	}

	if !hasField {
		return Frame{}, false
	}

	if event == "" {
		event = DefaultEvent
	}

	return Frame{
		Event: event,
		Data:  strings.TrimSuffix(data.String(), "\n"),
	}, true
}
