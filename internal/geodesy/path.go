package geodesy

import (
	"fmt"
	"math"
	"strings"
)

// TrackMethod — способ измерения расстояний вдоль пути и поперёк него.
type TrackMethod string

const (
	// MethodGreatCircle — длина дуги большого круга.
	MethodGreatCircle TrackMethod = "greatcircle"

	// MethodEuclidean — прямолинейное (хордовое) расстояние.
	MethodEuclidean TrackMethod = "euclidean"
)

// ParseTrackMethod разбирает название метода (регистр не учитывается).
func ParseTrackMethod(s string) (TrackMethod, error) {
	switch m := TrackMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case MethodGreatCircle, MethodEuclidean:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
	}
}

// GeoPath — путь по большому кругу, заданный двумя точками одного эллипсоида.
// Все запросы — чистые функции концов пути.
type GeoPath struct {
	A GeoPoint // Начало пути.
	B GeoPoint // Конец пути.
}

// NewGeoPath создаёт путь от a к b. Точки должны относиться к одному эллипсоиду.
func NewGeoPath(a, b GeoPoint) (GeoPath, error) {
	if a.Ellipsoid != b.Ellipsoid {
		return GeoPath{}, fmt.Errorf("%w: %v vs %v", ErrFrameMismatch, a.Ellipsoid, b.Ellipsoid)
	}

	return GeoPath{A: a, B: b}, nil
}

// NVectors возвращает концы пути в виде n-векторов.
func (p GeoPath) NVectors() (NVector, NVector) {
	return p.A.ToNVector(), p.B.ToNVector()
}

// Radius возвращает радиус сферы, на которой считаются расстояния:
// среднее расстояние концов пути от центра Земли, м.
func (p GeoPath) Radius() float64 {
	return (p.A.ToECEF().Norm() + p.B.ToECEF().Norm()) / 2
}

// TrackDistance возвращает длину пути указанным методом, м.
func (p GeoPath) TrackDistance(method TrackMethod) (float64, error) {
	n1, n2 := p.NVectors()

	switch method {
	case MethodGreatCircle:
		return GreatCircleDistance(n1, n2, p.Radius()), nil
	case MethodEuclidean:
		return EuclideanDistance(n1, n2), nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
}

// CrossTrackDistance возвращает расстояние от точки до большого круга пути, м.
// Знак положительный справа по направлению от A к B.
func (p GeoPath) CrossTrackDistance(point GeoPoint, method TrackMethod) (float64, error) {
	n1, n2 := p.NVectors()
	angle := CrossTrackAngle(n1, n2, point.ToNVector())

	switch method {
	case MethodGreatCircle:
		return angle * p.Radius(), nil
	case MethodEuclidean:
		return math.Sin(angle) * p.Radius(), nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
}

// Intersection возвращает точку пересечения больших кругов двух путей.
// Если пересечение не определено (круги совпадают), широта и долгота — NaN.
func (p GeoPath) Intersection(other GeoPath) GeoPoint {
	a1, a2 := p.NVectors()
	b1, b2 := other.NVectors()

	return Intersection(a1, a2, b1, b2).ToGeoPoint()
}

// ClosestPoint возвращает ближайшую к point точку большого круга пути.
func (p GeoPath) ClosestPoint(point GeoPoint) GeoPoint {
	n1, n2 := p.NVectors()

	return ClosestPointOnGreatCircle(n1, n2, point.ToNVector()).ToGeoPoint()
}

// OnPath сообщает, лежит ли point на отрезке пути с допуском tolerance, м.
func (p GeoPath) OnPath(point GeoPoint, tolerance float64) bool {
	n1, n2 := p.NVectors()

	return OnGreatCircleSegment(n1, n2, point.ToNVector(), p.Radius(), tolerance)
}

// Interpolate возвращает точку пути при доле пройденного расстояния t
// (0 — начало, 1 — конец; значения вне [0, 1] продолжают большой круг).
func (p GeoPath) Interpolate(t float64) GeoPoint {
	n1, n2 := p.NVectors()

	return Interpolate(n1, n2, t).ToGeoPoint()
}
