package geodesy

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
)

// Ошибки модели эллипсоида.
var (
	ErrUnknownEllipsoid = errors.New("unknown ellipsoid name")
	ErrInvalidEllipsoid = errors.New("invalid ellipsoid parameters")
)

// Ellipsoid — эллипсоид вращения, заданный большой полуосью и сплюснутостью.
// Два эллипсоида равны тогда и только тогда, когда совпадают A и F,
// поэтому сравнение выполняется обычным оператором ==.
type Ellipsoid struct {
	A float64 // Большая полуось, м.
	F float64 // Сплюснутость.
}

// Предустановленные эллипсоиды.
var (
	// WGS84 — World Geodetic System 1984.
	WGS84 = Ellipsoid{A: 6378137.0, F: 1.0 / 298.257223563}

	// WGS72 — World Geodetic System 1972.
	WGS72 = Ellipsoid{A: 6378135.0, F: 1.0 / 298.26}

	// GRS80 — Geodetic Reference System 1980.
	GRS80 = Ellipsoid{A: 6378137.0, F: 1.0 / 298.257222101}
)

// EarthRadiusMean — средний радиус Земли (IUGG), м.
const EarthRadiusMean = 6371009.0

// NewEllipsoid создаёт эллипсоид по большой полуоси (м) и сплюснутости.
func NewEllipsoid(a, f float64) (Ellipsoid, error) {
	if !(a > 0) || math.IsInf(a, 0) {
		return Ellipsoid{}, fmt.Errorf("%w: semi-major axis %v", ErrInvalidEllipsoid, a)
	}

	if !(f < 1) || math.IsNaN(f) || math.IsInf(f, 0) {
		return Ellipsoid{}, fmt.Errorf("%w: flattening %v", ErrInvalidEllipsoid, f)
	}

	return Ellipsoid{A: a, F: f}, nil
}

// NewSphere создаёт сферу радиуса r (эллипсоид с нулевой сплюснутостью).
func NewSphere(r float64) (Ellipsoid, error) {
	return NewEllipsoid(r, 0)
}

// EllipsoidFromName находит эллипсоид по имени в переданной таблице.
// Если table == nil, используется StandardEllipsoids().
func EllipsoidFromName(table *EllipsoidTable, name string) (Ellipsoid, error) {
	if table == nil {
		table = standardTable
	}

	e, ok := table.Lookup(name)
	if !ok {
		return Ellipsoid{}, fmt.Errorf("%w: %q", ErrUnknownEllipsoid, name)
	}

	return e, nil
}

// B возвращает малую полуось, м.
func (e Ellipsoid) B() float64 {
	return e.A * (1 - e.F)
}

// E2 возвращает квадрат первого эксцентриситета.
func (e Ellipsoid) E2() float64 {
	return e.F * (2 - e.F)
}

// MeanRadius возвращает средний радиус (2a+b)/3, м.
func (e Ellipsoid) MeanRadius() float64 {
	return (2*e.A + e.B()) / 3
}

// IsSphere сообщает, является ли эллипсоид сферой.
func (e Ellipsoid) IsSphere() bool {
	return e.F == 0
}

// String возвращает строковое представление эллипсоида.
func (e Ellipsoid) String() string {
	if e.F == 0 {
		return fmt.Sprintf("Sphere[r=%.3f m]", e.A)
	}

	return fmt.Sprintf("Ellipsoid[a=%.3f m, 1/f=%.9f]", e.A, 1/e.F)
}

// EllipsoidTable — неизменяемая таблица именованных эллипсоидов.
// Таблица передаётся в конструктор явно, глобального изменяемого состояния нет.
type EllipsoidTable struct {
	byName map[string]Ellipsoid
}

// NewEllipsoidTable создаёт таблицу из набора имя -> эллипсоид.
// Имена нормализуются (регистр, пробелы и разделители не учитываются).
func NewEllipsoidTable(entries map[string]Ellipsoid) *EllipsoidTable {
	t := &EllipsoidTable{byName: make(map[string]Ellipsoid, len(entries))}
	for name, e := range entries {
		t.byName[normalizeEllipsoidName(name)] = e
	}

	return t
}

// Lookup ищет эллипсоид по имени.
func (t *EllipsoidTable) Lookup(name string) (Ellipsoid, bool) {
	if t == nil {
		return Ellipsoid{}, false
	}

	e, ok := t.byName[normalizeEllipsoidName(name)]
	return e, ok
}

// With возвращает копию таблицы, дополненную записью name -> e.
// Исходная таблица не изменяется.
func (t *EllipsoidTable) With(name string, e Ellipsoid) *EllipsoidTable {
	next := &EllipsoidTable{byName: make(map[string]Ellipsoid, t.Len()+1)}
	if t != nil {
		maps.Copy(next.byName, t.byName)
	}
	next.byName[normalizeEllipsoidName(name)] = e

	return next
}

// Names возвращает отсортированный список нормализованных имён.
func (t *EllipsoidTable) Names() []string {
	if t == nil {
		return nil
	}

	return slices.Sorted(maps.Keys(t.byName))
}

// Len возвращает количество имён в таблице.
func (t *EllipsoidTable) Len() int {
	if t == nil {
		return 0
	}

	return len(t.byName)
}

// StandardEllipsoids возвращает встроенную таблицу референц-эллипсоидов.
func StandardEllipsoids() *EllipsoidTable {
	return standardTable
}

var standardTable = NewEllipsoidTable(standardEllipsoids())

func standardEllipsoids() map[string]Ellipsoid {
	airy1858 := Ellipsoid{A: 6377563.3960, F: 1.0 / 299.3249646}
	airyModified := Ellipsoid{A: 6377340.189, F: 1.0 / 299.3249646}
	australian := Ellipsoid{A: 6378160, F: 1.0 / 298.25}
	bessel := Ellipsoid{A: 6377397.155, F: 1.0 / 299.1528128}
	clarke1880 := Ellipsoid{A: 6378249.145, F: 1.0 / 293.465}
	everest := Ellipsoid{A: 6377276.345, F: 1.0 / 300.8017}
	everestModified := Ellipsoid{A: 6377304.063, F: 1.0 / 300.8017}
	fisher1960 := Ellipsoid{A: 6378166.0, F: 1.0 / 298.3}
	fisher1968 := Ellipsoid{A: 6378150.0, F: 1.0 / 298.3}
	hough := Ellipsoid{A: 6378270.0, F: 1.0 / 297}
	international := Ellipsoid{A: 6378388.0, F: 1.0 / 297}
	krassovsky := Ellipsoid{A: 6378245.0, F: 1.0 / 298.3}
	wgs66 := Ellipsoid{A: 6378145.0, F: 1.0 / 298.25}
	southAmerican := Ellipsoid{A: 6378160.0, F: 1.0 / 298.25}
	sgs85 := Ellipsoid{A: 6378136, F: 1.0 / 298.257}
	clarke1866 := Ellipsoid{A: 6378206.4, F: 1.0 / 294.9786982138}

	return map[string]Ellipsoid{
		"airy1858":             airy1858,
		"airymodified":         airyModified,
		"australiannational":   australian,
		"bessel":               bessel,
		"bessel1841":           bessel,
		"clarke1880":           clarke1880,
		"everest1830":          everest,
		"everestmodified":      everestModified,
		"fisher1960":           fisher1960,
		"fisher1968":           fisher1968,
		"hough":                hough,
		"hough1956":            hough,
		"international":        international,
		"hayford":              international,
		"ed50":                 international,
		"krassovsky":           krassovsky,
		"krassovsky1938":       krassovsky,
		"nwl9d":                wgs66,
		"wgs66":                wgs66,
		"southamerican1969":    southAmerican,
		"sovietgeodsystem1985": sgs85,
		"sgs85":                sgs85,
		"wgs72":                WGS72,
		"clarke1866":           clarke1866,
		"nad27":                clarke1866,
		"grs80":                GRS80,
		"etrs89":               GRS80,
		"euref89":              GRS80,
		"wgs84":                WGS84,
		"nad83":                WGS84,
	}
}

// normalizeEllipsoidName приводит имя к ключу таблицы: нижний регистр,
// без пробелов, точек и разделителей.
func normalizeEllipsoidName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_', '/', '.', '(', ')':
			return -1
		}

		return r
	}, strings.ToLower(strings.TrimSpace(name)))
}
