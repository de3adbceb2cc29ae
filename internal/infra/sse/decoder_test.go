package sse

import (
	"errors"
	"reflect"
	"testing"
)

func TestDecoderMultipleFramesInOneChunk(t *testing.T) {
	t.Parallel()

	input := "event: connected\ndata: {\"ok\":true}\n\ndata: 1\n\nevent: heartbeat\ndata: {}\n\n"

	frames := NewDecoder().Feed([]byte(input))
	want := []Frame{
		{Event: "connected", Data: `{"ok":true}`},
		{Event: "message", Data: "1"},
		{Event: "heartbeat", Data: "{}"},
	}

	if !reflect.DeepEqual(frames, want) {
		t.Fatalf("frames = %#v, want %#v", frames, want)
	}
}

func TestDecoderSplitAtEveryOffset(t *testing.T) {
	t.Parallel()

	first, _ := Encode("connected", map[string]string{"room": "r1"})
	second, _ := Encode("message", "multi\nline")
	input := append(append([]byte{}, first...), second...)

	want := NewDecoder().Feed(input)
	if len(want) != 2 {
		t.Fatalf("whole input decoded to %d frames, want 2", len(want))
	}

	for offset := 0; offset <= len(input); offset++ {
		decoder := NewDecoder()

		var got []Frame
		got = append(got, decoder.Feed(input[:offset])...)
		got = append(got, decoder.Feed(input[offset:])...)

		if !reflect.DeepEqual(got, want) {
			t.Fatalf("split at %d: frames = %#v, want %#v", offset, got, want)
		}
		if decoder.Buffered() != 0 {
			t.Fatalf("split at %d: %d bytes left in buffer", offset, decoder.Buffered())
		}
	}
}

func TestDecoderByteByByte(t *testing.T) {
	t.Parallel()

	input := []byte("event: a\ndata: 1\n\nevent: b\ndata: 2\n\n")
	decoder := NewDecoder()

	var got []Frame
	for i := range input {
		got = append(got, decoder.Feed(input[i:i+1])...)
	}

	want := []Frame{{Event: "a", Data: "1"}, {Event: "b", Data: "2"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("frames = %#v, want %#v", got, want)
	}
}

func TestDecoderIgnoresCommentsAndUnknownFields(t *testing.T) {
	t.Parallel()

	input := ": keep-alive\n\nid: 7\nretry: 1000\nevent: ping\ndata:{}\n\n"

	frames := NewDecoder().Feed([]byte(input))
	want := []Frame{{Event: "ping", Data: "{}"}}

	if !reflect.DeepEqual(frames, want) {
		t.Fatalf("frames = %#v, want %#v", frames, want)
	}
}

func TestDecoderCarriageReturns(t *testing.T) {
	t.Parallel()

	decoder := NewDecoder()

	var frames []Frame
	frames = append(frames, decoder.Feed([]byte("event: test\r\ndata: hello\r"))...)
	frames = append(frames, decoder.Feed([]byte("\n\r\n"))...)

	want := []Frame{{Event: "test", Data: "hello"}}
	if !reflect.DeepEqual(frames, want) {
		t.Fatalf("frames = %#v, want %#v", frames, want)
	}
}

func TestDecoderFlush(t *testing.T) {
	t.Parallel()

	decoder := NewDecoder()
	if frames := decoder.Feed([]byte("event: final\ndata: last\n")); len(frames) != 0 {
		t.Fatalf("incomplete frame decoded early: %#v", frames)
	}

	frame, ok := decoder.Flush()
	if !ok {
		t.Fatal("Flush returned no frame")
	}
	if frame.Event != "final" || frame.Data != "last" {
		t.Fatalf("Flush = %#v", frame)
	}

	if _, ok := decoder.Flush(); ok {
		t.Fatal("second Flush returned a frame")
	}
}

func TestDecoderRejectsOversizedFrame(t *testing.T) {
	t.Parallel()

	decoder := NewDecoder()
	decoder.limit = 16

	frames := decoder.Feed([]byte("data: ok\n\ndata: 0123456789abcdef"))
	if len(frames) != 1 || frames[0].Data != "ok" {
		t.Fatalf("frames before overflow = %#v", frames)
	}
	if !errors.Is(decoder.Err(), ErrFrameTooLarge) {
		t.Fatalf("Err = %v, want ErrFrameTooLarge", decoder.Err())
	}
	if decoder.Buffered() != 0 {
		t.Fatalf("Buffered = %d after overflow", decoder.Buffered())
	}

	if frames := decoder.Feed([]byte("\n\ndata: next\n\n")); len(frames) != 0 {
		t.Fatalf("decoder kept parsing after overflow: %#v", frames)
	}
}

func TestDecoderAcceptsFrameAtLimit(t *testing.T) {
	t.Parallel()

	decoder := NewDecoder()
	decoder.limit = 16

	// 16 байт без разделителя еще допустимы
	decoder.Feed([]byte("data: 0123456789"))
	if err := decoder.Err(); err != nil {
		t.Fatalf("Err = %v", err)
	}

	frames := decoder.Feed([]byte("\n\n"))
	if len(frames) != 1 || frames[0].Data != "0123456789" {
		t.Fatalf("frames = %#v", frames)
	}
}
