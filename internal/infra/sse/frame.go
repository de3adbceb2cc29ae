// Package sse кодирует и разбирает кадры server-sent events поверх
// обычного тела HTTP ответа.
//
// Кадр на проводе:
//
//	event: <name>\n      (не пишется для имени по умолчанию "message")
//	data: <line>\n       (по строке на каждую строку полезной нагрузки)
//	\n                   (пустая строка завершает кадр)
package sse

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const DefaultEvent = "message"

type Frame struct {
	Event string
	Data  string
}

// Payload возвращает данные кадра, разобранные как JSON. Если данные не
// JSON, возвращается сама строка.
func (f Frame) Payload() any {
	var v any
	if err := json.Unmarshal([]byte(f.Data), &v); err != nil {
		return f.Data
	}

	return v
}

// Decode разбирает данные кадра в v.
func (f Frame) Decode(v any) error {
	if err := json.Unmarshal([]byte(f.Data), v); err != nil {
		return fmt.Errorf("decode %s frame: %w", f.Event, err)
	}

	return nil
}

// Encode сериализует payload в JSON и упаковывает в кадр. json.RawMessage
// передается как есть.
func Encode(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", event, err)
	}

	return EncodeFrame(Frame{Event: event, Data: string(data)}), nil
}

// EncodeFrame упаковывает уже готовые данные. Переводы строк в Data
// разбиваются на несколько строк data:.
func EncodeFrame(f Frame) []byte {
	var buf bytes.Buffer

	if f.Event != "" && f.Event != DefaultEvent {
		buf.WriteString("event: ")
		buf.WriteString(f.Event)
		buf.WriteByte('\n')
	}

	for _, line := range strings.Split(f.Data, "\n") {
		buf.WriteString("data: ")
		buf.WriteString(line)
		buf.WriteByte('\n')
	}

	buf.WriteByte('\n')

	return buf.Bytes()
}
