package clock

import (
	"sort"
	"sync"
	"time"
)

// FakeClock - детерминированные часы для тестов. Время двигается только
// через Advance. Колбэки AfterFunc вызываются синхронно внутри Advance
// в порядке дедлайнов, поэтому вызывать Advance из колбэка нельзя.
type FakeClock struct {
	mu      sync.Mutex
	changed *sync.Cond
	current time.Time
	waiters []*fakeWaiter
}

type fakeWaiter struct {
	deadline time.Time
	callback func()
	channel  chan time.Time
	interval time.Duration
	stopped  bool
	fired    bool
}

func Fake(initial time.Time) *FakeClock {
	c := &FakeClock{current: initial}
	c.changed = sync.NewCond(&c.mu)
	return c
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *FakeClock) AfterFunc(d time.Duration, f func()) *Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	waiter := &fakeWaiter{deadline: c.current.Add(d), callback: f}
	c.addLocked(waiter)

	return &Timer{
		stop: func() bool {
			c.mu.Lock()
			defer c.mu.Unlock()
			if waiter.stopped || waiter.fired {
				return false
			}
			waiter.stopped = true
			c.removeLocked(waiter)
			return true
		},
		reset: func(d time.Duration) bool {
			c.mu.Lock()
			defer c.mu.Unlock()
			wasActive := !waiter.stopped && !waiter.fired
			waiter.deadline = c.current.Add(d)
			waiter.stopped = false
			waiter.fired = false
			if !wasActive {
				c.addLocked(waiter)
			}
			return wasActive
		},
	}
}

func (c *FakeClock) NewTicker(d time.Duration) *Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for NewTicker")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	channel := make(chan time.Time, 1)
	waiter := &fakeWaiter{deadline: c.current.Add(d), channel: channel, interval: d}
	c.addLocked(waiter)

	return &Ticker{
		C: channel,
		stop: func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			waiter.stopped = true
			c.removeLocked(waiter)
		},
	}
}

// Advance сдвигает время на d и срабатывает все таймеры, чьи дедлайны
// попали в интервал. Тикер, перешагнутый на несколько интервалов,
// срабатывает по разу на каждый интервал (лишние тики теряются в буфере).
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.current = c.current.Add(d)
	target := c.current
	c.mu.Unlock()

	for {
		expired := c.collectExpired(target)
		if len(expired) == 0 {
			return
		}

		for _, waiter := range expired {
			if waiter.callback != nil {
				waiter.callback()
				continue
			}
			select {
			case waiter.channel <- target:
			default:
			}
		}
	}
}

// WaitForTimers блокируется, пока не будет зарегистрировано хотя бы n
// активных таймеров или тикеров. Убирает гонку между горутиной, которая
// заводит таймер, и тестом, который двигает часы.
func (c *FakeClock) WaitForTimers(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.pendingLocked() < n {
		c.changed.Wait()
	}
}

// PendingCount возвращает число активных таймеров и тикеров.
func (c *FakeClock) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingLocked()
}

func (c *FakeClock) addLocked(waiter *fakeWaiter) {
	c.waiters = append(c.waiters, waiter)
	c.changed.Broadcast()
}

// removeLocked убирает waiter из очереди. Reset остановленного таймера
// добавляет его заново ровно один раз.
func (c *FakeClock) removeLocked(waiter *fakeWaiter) {
	for i, w := range c.waiters {
		if w == waiter {
			c.waiters = append(c.waiters[:i], c.waiters[i+1:]...)
			return
		}
	}
}

func (c *FakeClock) pendingLocked() int {
	count := 0
	for _, waiter := range c.waiters {
		if !waiter.stopped && !waiter.fired {
			count++
		}
	}
	return count
}

func (c *FakeClock) collectExpired(target time.Time) []*fakeWaiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expired, remaining []*fakeWaiter
	for _, waiter := range c.waiters {
		if waiter.stopped || waiter.fired {
			continue
		}
		if waiter.deadline.After(target) {
			remaining = append(remaining, waiter)
			continue
		}
		expired = append(expired, waiter)
	}

	sort.SliceStable(expired, func(i, j int) bool {
		return expired[i].deadline.Before(expired[j].deadline)
	})

	for _, waiter := range expired {
		if waiter.interval > 0 {
			waiter.deadline = waiter.deadline.Add(waiter.interval)
			remaining = append(remaining, waiter)
		} else {
			waiter.fired = true
		}
	}

	c.waiters = remaining
	return expired
}
