package sseclient

import (
	"encoding/json"
	"fmt"

	"github.com/qrave1/RoomSignal/internal/infra/sse"
)

type Kind int

const (
	// KindOpen - синтетическое событие: ответ 2xx получен, поток открыт
	KindOpen Kind = iota
	// KindError - синтетическое событие: попытка закончилась ошибкой
	KindError
	// KindMessage - кадр с именем по умолчанию "message"
	KindMessage
	// KindCustom - кадр с любым другим именем
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindOpen:
		return "open"
	case KindError:
		return "error"
	case KindMessage:
		return "message"
	case KindCustom:
		return "custom"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Event - то, что получают обработчики. Для кадров заполнены Name, Data
// и Raw, для KindError - Err.
type Event struct {
	Kind Kind
	Name string
	Data any
	Raw  string
	Err  error
}

type Handler func(Event)

// Decode разбирает данные кадра в v.
func (e Event) Decode(v any) error {
	if err := json.Unmarshal([]byte(e.Raw), v); err != nil {
		return fmt.Errorf("decode %s event: %w", e.Name, err)
	}

	return nil
}

func frameEvent(f sse.Frame) Event {
	kind := KindCustom
	if f.Event == sse.DefaultEvent {
		kind = KindMessage
	}

	return Event{
		Kind: kind,
		Name: f.Event,
		Data: f.Payload(),
		Raw:  f.Data,
	}
}
