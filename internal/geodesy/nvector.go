package geodesy

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Константы для перевода углов.
const (
	// Deg2Rad — коэффициент перевода градусов в радианы.
	Deg2Rad = math.Pi / 180.0

	// Rad2Deg — коэффициент перевода радианов в градусы.
	Rad2Deg = 180.0 / math.Pi
)

// NVector — позиция в виде n-вектора: единичная нормаль к эллипсоиду
// плюс глубина под его поверхностью.
//
// Оси совпадают с ECEF: X — на (0°, 0°), Z — на северный полюс.
// Normal всегда нормализуется при создании, Z от нормализации не зависит.
type NVector struct {
	Normal    r3.Vec    // Единичная нормаль в осях ECEF.
	Z         float64   // Глубина, м (положительная — ниже поверхности).
	Ellipsoid Ellipsoid // Эллипсоид, к которому относится нормаль.
}

// NewNVector создаёт n-вектор, нормализуя направление.
func NewNVector(normal r3.Vec, z float64, e Ellipsoid) NVector {
	return NVector{
		Normal:    unit(normal),
		Z:         z,
		Ellipsoid: e,
	}
}

// ToECEF преобразует n-вектор в позицию ECEF (замкнутая формула, Gade 2010, ур. 22).
func (n NVector) ToECEF() ECEFVector {
	b := n.Ellipsoid.B()
	f1 := 1 - n.Ellipsoid.F
	f12 := f1 * f1

	x, y, z := n.Normal.X, n.Normal.Y, n.Normal.Z

	// Масштабирование нормали до поверхности эллипсоида.
	denominator := math.Sqrt(z*z + x*x/f12 + y*y/f12)
	scale := b / denominator

	surface := r3.Vec{
		X: scale * x / f12,
		Y: scale * y / f12,
		Z: scale * z,
	}

	return ECEFVector{
		P:         r3.Sub(surface, r3.Scale(n.Z, n.Normal)),
		Ellipsoid: n.Ellipsoid,
	}
}

// ToGeoPoint преобразует n-вектор в геодезические координаты.
// Обе угловые координаты вычисляются через atan2, поэтому весь диапазон
// ±90°/±180° покрывается без ветвлений.
func (n NVector) ToGeoPoint() GeoPoint {
	x, y, z := n.Normal.X, n.Normal.Y, n.Normal.Z

	return GeoPoint{
		Lat:       math.Atan2(z, math.Hypot(x, y)),
		Lon:       math.Atan2(y, x),
		Z:         n.Z,
		Ellipsoid: n.Ellipsoid,
	}
}

// Height возвращает высоту над эллипсоидом, м.
func (n NVector) Height() float64 {
	return -n.Z
}

// IsNaN сообщает, что n-вектор не определён (результат вырожденной геометрии).
func (n NVector) IsNaN() bool {
	return math.IsNaN(n.Normal.X) || math.IsNaN(n.Normal.Y) || math.IsNaN(n.Normal.Z)
}

// String возвращает строковое представление n-вектора.
func (n NVector) String() string {
	return fmt.Sprintf("NVector[%.9f, %.9f, %.9f] z=%.3f m",
		n.Normal.X, n.Normal.Y, n.Normal.Z, n.Z)
}

// unit нормализует вектор. Нулевой вектор становится NaN-вектором,
// что сигнализирует о неопределённом направлении.
func unit(v r3.Vec) r3.Vec {
	norm := r3.Norm(v)
	if norm == 0 || math.IsNaN(norm) {
		return nanVec()
	}

	return r3.Scale(1/norm, v)
}

func nanVec() r3.Vec {
	nan := math.NaN()
	return r3.Vec{X: nan, Y: nan, Z: nan}
}
