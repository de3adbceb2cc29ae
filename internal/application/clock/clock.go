// Package clock абстрагирует таймеры, чтобы продюсеры потоков, реконнект и
// watchdog можно было тестировать без реального ожидания. В проде
// используется Real(), в тестах Fake().
package clock

import "time"

type Clock interface {
	Now() time.Time

	// AfterFunc вызывает f через d. У возвращаемого Timer можно отменить вызов через Stop.
	AfterFunc(d time.Duration, f func()) *Timer

	// NewTicker паникует при d <= 0, как time.NewTicker.
	NewTicker(d time.Duration) *Ticker
}

// Ticker - обертка над периодическим таймером. Канал C с буфером 1,
// если читатель отстает, тики теряются.
type Ticker struct {
	C <-chan time.Time

	stop func()
}

func (t *Ticker) Stop() { t.stop() }

type Timer struct {
	stop  func() bool
	reset func(time.Duration) bool
}

// Stop возвращает true, если вызов был отменен до срабатывания.
func (t *Timer) Stop() bool { return t.stop() }

// Reset перезапускает таймер на d. Возвращает true, если таймер был активен.
func (t *Timer) Reset(d time.Duration) bool { return t.reset(d) }
