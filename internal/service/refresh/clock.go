package refresh

import "time"

// Clock — абстракция времени, чтобы тесты были детерминированны
type Clock interface {
	Now() time.Time
}

// realClock — prod реализация: текущее время в UTC
type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// NewRealClock - фабрика для внешних пакетов
func NewRealClock() Clock {
	return realClock{}
}
