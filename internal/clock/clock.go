// Package clock предоставляет источник текущего времени и ключа
// календарного дня. Граница дня фиксирована: полночь по UTC,
// ключ дня — строка в формате 2006-01-02.
package clock

import "time"

// DayLayout — формат ключа календарного дня.
const DayLayout = "2006-01-02"

// Clock описывает источник времени, внедряемый в сервисы.
type Clock interface {
	// Now возвращает текущий момент времени.
	Now() time.Time
	// DayKey возвращает ключ календарного дня для момента t.
	DayKey(t time.Time) string
}

// UTC реализует Clock поверх системных часов с границей дня по UTC.
type UTC struct{}

// New возвращает часы с границей дня по UTC.
func New() UTC { return UTC{} }

func (UTC) Now() time.Time { return time.Now().UTC() }

func (UTC) DayKey(t time.Time) string { return t.UTC().Format(DayLayout) }
