package sseclient

import (
	"time"

	"github.com/sethvargo/go-retry"
)

const DefaultRetryDelay = 3 * time.Second

// RetryPolicy задает паузы между переподключениями. Нулевое значение -
// постоянная пауза DefaultRetryDelay без ограничения числа попыток.
type RetryPolicy struct {
	Delay time.Duration

	// MaxAttempts - сколько раз подряд можно переподключиться после
	// ошибки. 0 - без ограничения.
	MaxAttempts uint64

	// Exponential удваивает паузу после каждой неудачи, начиная с Delay.
	Exponential bool

	// MaxDelay ограничивает паузу сверху. 0 - без ограничения.
	MaxDelay time.Duration
}

// backoff создает новую последовательность пауз. Счетчик сбрасывается
// созданием нового backoff после успешного подключения.
func (p RetryPolicy) backoff() retry.Backoff {
	delay := p.Delay
	if delay <= 0 {
		delay = DefaultRetryDelay
	}

	var b retry.Backoff
	if p.Exponential {
		b = retry.NewExponential(delay)
	} else {
		b = retry.NewConstant(delay)
	}

	if p.MaxDelay > 0 {
		b = retry.WithCappedDuration(p.MaxDelay, b)
	}

	if p.MaxAttempts > 0 {
		b = retry.WithMaxRetries(p.MaxAttempts, b)
	}

	return b
}
