package geodesy

import (
	"errors"
	"fmt"
)

// ErrLengthMismatch — входные массивы пакетной операции разной длины.
var ErrLengthMismatch = errors.New("input length mismatch")

// Пакетные операции применяют те же формулы поэлементно. Вырожденная
// геометрия отдельного элемента даёт NaN в соответствующей позиции,
// ошибка возвращается только при несогласованных длинах входов.

// GeoPointsToNVectors преобразует массив точек в n-векторы.
func GeoPointsToNVectors(points []GeoPoint) []NVector {
	out := make([]NVector, len(points))
	for i, p := range points {
		out[i] = p.ToNVector()
	}

	return out
}

// NVectorsToGeoPoints преобразует массив n-векторов в геодезические точки.
func NVectorsToGeoPoints(ns []NVector) []GeoPoint {
	out := make([]GeoPoint, len(ns))
	for i, n := range ns {
		out[i] = n.ToGeoPoint()
	}

	return out
}

// NVectorsToECEF преобразует массив n-векторов в позиции ECEF.
func NVectorsToECEF(ns []NVector) []ECEFVector {
	out := make([]ECEFVector, len(ns))
	for i, n := range ns {
		out[i] = n.ToECEF()
	}

	return out
}

// ECEFToNVectors преобразует массив позиций ECEF в n-векторы.
func ECEFToNVectors(vs []ECEFVector) []NVector {
	out := make([]NVector, len(vs))
	for i, v := range vs {
		out[i] = v.ToNVector()
	}

	return out
}

// GreatCircleDistances возвращает попарные расстояния по большому кругу, м.
func GreatCircleDistances(from, to []NVector, radius float64) ([]float64, error) {
	if len(from) != len(to) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(from), len(to))
	}

	out := make([]float64, len(from))
	for i := range from {
		out[i] = GreatCircleDistance(from[i], to[i], radius)
	}

	return out, nil
}

// CrossTrackDistances возвращает расстояния от каждой точки до пути path, м.
func CrossTrackDistances(path GeoPath, points []GeoPoint, method TrackMethod) ([]float64, error) {
	out := make([]float64, len(points))
	for i, p := range points {
		d, err := path.CrossTrackDistance(p, method)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}

	return out, nil
}

// Intersections возвращает попарные пересечения путей a[i] и b[i].
// Неопределённые пересечения представлены точками с NaN.
func Intersections(a, b []GeoPath) ([]GeoPoint, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(a), len(b))
	}

	out := make([]GeoPoint, len(a))
	for i := range a {
		out[i] = a[i].Intersection(b[i])
	}

	return out, nil
}
