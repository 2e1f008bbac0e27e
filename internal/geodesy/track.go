package geodesy

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Ошибки построения трассы пути.
var (
	ErrInvalidSteps   = errors.New("number of steps must be positive")
	ErrDegeneratePath = errors.New("great circle through path endpoints is undefined")
)

// antimeridianTolerance — порог |y| n-вектора, ниже которого позиция
// с x < 0 считается лежащей на меридиане 180°.
const antimeridianTolerance = 1e-12

// TrackPoint — точка трассы пути (координаты в градусах, готово для JSON/UI).
type TrackPoint struct {
	Lon      float64 `json:"lon"`      // Долгота, градусы (-180..+180).
	Lat      float64 `json:"lat"`      // Широта, градусы (-90..+90).
	Distance float64 `json:"distance"` // Расстояние от начала пути по дуге, м.
}

// Track — трасса пути по большому кругу, разбитая на сегменты по антимеридиану.
type Track struct {
	Segments [][]TrackPoint `json:"segments"` // Сегменты, разбитые по антимеридиану.
	Length   float64        `json:"length"`   // Длина пути по дуге, м.
}

// Points возвращает все точки плоским массивом.
func (t *Track) Points() []TrackPoint {
	if t == nil {
		return nil
	}

	var result []TrackPoint
	for _, seg := range t.Segments {
		result = append(result, seg...)
	}

	return result
}

// TotalPoints возвращает общее количество точек.
func (t *Track) TotalPoints() int {
	if t == nil {
		return 0
	}

	count := 0
	for _, seg := range t.Segments {
		count += len(seg)
	}

	return count
}

// Track строит трассу пути из steps равных по длине участков.
// При пересечении антимеридиана в обе соседние части добавляется точка
// пересечения большого круга с меридианом ±180°.
func (p GeoPath) Track(steps int) (*Track, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSteps, steps)
	}

	n1, n2 := p.NVectors()

	angle := GreatCircleAngle(n1, n2)
	if angle > 0 && math.Sin(angle) < parallelTolerance {
		return nil, fmt.Errorf("%w: antipodal endpoints", ErrDegeneratePath)
	}

	radius := p.Radius()
	points := make([]TrackPoint, 0, steps+1)
	samples := make([]NVector, 0, steps+1)

	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		n := Interpolate(n1, n2, t)
		pt := n.ToGeoPoint()

		samples = append(samples, n)
		points = append(points, TrackPoint{
			Lon:      pt.LonDeg(),
			Lat:      pt.LatDeg(),
			Distance: angle * radius * t,
		})
	}

	return &Track{
		Segments: splitAtAntimeridian(points, samples, r3.Cross(n1.Normal, n2.Normal), radius),
		Length:   angle * radius,
	}, nil
}

// splitAtAntimeridian разбивает массив точек на сегменты при пересечении антимеридиана (±180°).
// samples — n-векторы точек, по ним определяется, пересекает ли дуга между
// соседними точками меридиан 180°. c — нормаль плоскости большого круга,
// используется для точного положения пересечения.
func splitAtAntimeridian(points []TrackPoint, samples []NVector, c r3.Vec, radius float64) [][]TrackPoint {
	if len(points) == 0 {
		return nil
	}

	var segments [][]TrackPoint
	currentSeg := []TrackPoint{points[0]}
	if onAntimeridian(samples[0].Normal) {
		currentSeg[0].Lon = math.Copysign(180, points[0].Lon)
	}

	for i := 1; i < len(points); i++ {
		prev, cur := currentSeg[len(currentSeg)-1], points[i]
		prevN, curN := samples[i-1].Normal, samples[i].Normal

		switch {
		case onAntimeridian(prevN) && !onAntimeridian(curN) && math.Signbit(prev.Lon) != math.Signbit(cur.Lon):
			// Предыдущая точка сама лежит на границе: повторяем её с другой стороны.
			if len(currentSeg) == 1 {
				currentSeg[0].Lon = -prev.Lon
				currentSeg = append(currentSeg, cur)
				continue
			}

			segments = append(segments, currentSeg)
			currentSeg = []TrackPoint{{Lon: -prev.Lon, Lat: prev.Lat, Distance: prev.Distance}, cur}
		case onAntimeridian(curN):
			cur.Lon = math.Copysign(180, prev.Lon)
			currentSeg = append(currentSeg, cur)
		case crossesAntimeridian(prevN, curN):
			boundaryPrev, boundaryNext := interpolateAntimeridian(prev, cur, c, radius)

			currentSeg = append(currentSeg, boundaryPrev)
			segments = append(segments, currentSeg)

			currentSeg = []TrackPoint{boundaryNext, cur}
		default:
			currentSeg = append(currentSeg, cur)
		}
	}

	return append(segments, currentSeg)
}

// onAntimeridian сообщает, лежит ли позиция с нормалью n на меридиане 180°.
func onAntimeridian(n r3.Vec) bool {
	return math.Abs(n.Y) <= antimeridianTolerance && n.X < 0
}

// crossesAntimeridian сообщает, пересекает ли короткая дуга между n1 и n2
// меридиан 180°: концы лежат по разные стороны плоскости y = 0, а точка
// дуги в этой плоскости находится на стороне x < 0.
func crossesAntimeridian(n1, n2 r3.Vec) bool {
	if n1.Y*n2.Y >= 0 {
		return false
	}

	p := r3.Add(r3.Scale(math.Abs(n2.Y), n1), r3.Scale(math.Abs(n1.Y), n2))

	return p.X < 0
}

// interpolateAntimeridian вычисляет две точки на границе ±180° между p1 и p2.
// Возвращает точку на стороне p1 и точку на стороне p2.
func interpolateAntimeridian(p1, p2 TrackPoint, c r3.Vec, radius float64) (TrackPoint, TrackPoint) {
	boundaryLon1, boundaryLon2 := 180.0, -180.0
	if p1.Lon < 0 {
		boundaryLon1, boundaryLon2 = -180.0, 180.0
	}

	lat, dist, ok := antimeridianCrossing(p1, c, radius)
	if !ok {
		// Круг лежит в плоскости меридиана: линейная интерполяция по «развёрнутой» долготе.
		p2LonUnwrapped := p2.Lon + 360.0
		if p1.Lon < 0 {
			p2LonUnwrapped = p2.Lon - 360.0
		}

		t := 0.5
		if dLon := p2LonUnwrapped - p1.Lon; math.Abs(dLon) > 1e-10 {
			t = clamp((boundaryLon1-p1.Lon)/dLon, 0, 1)
		}

		lat = p1.Lat + (p2.Lat-p1.Lat)*t
		dist = p1.Distance + (p2.Distance-p1.Distance)*t
	}

	return TrackPoint{Lon: boundaryLon1, Lat: lat, Distance: dist},
		TrackPoint{Lon: boundaryLon2, Lat: lat, Distance: dist}
}

// antimeridianCrossing находит точку пересечения большого круга с нормалью c
// и меридиана 180°. Возвращает широту (градусы) и расстояние от начала пути.
func antimeridianCrossing(from TrackPoint, c r3.Vec, radius float64) (float64, float64, bool) {
	// Плоскость y = 0 содержит меридианы 0° и 180°.
	dir := r3.Cross(c, r3.Vec{Y: 1})
	if r3.Norm(dir) < parallelTolerance {
		return 0, 0, false
	}

	dir = r3.Unit(dir)
	if dir.X > 0 {
		dir = r3.Scale(-1, dir)
	}

	crossing := NVector{Normal: dir}
	start := NewGeoPoint(from.Lat, from.Lon, 0, Ellipsoid{}, true).ToNVector()

	lat := math.Atan2(dir.Z, math.Hypot(dir.X, dir.Y)) * Rad2Deg

	return lat, from.Distance + GreatCircleDistance(start, crossing, radius), true
}
