package geodesy

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// ECEFVector — позиция или смещение в системе ECEF (Earth-Centered Earth-Fixed).
// Координаты в метрах.
type ECEFVector struct {
	P         r3.Vec    // Координаты, м.
	Ellipsoid Ellipsoid // Эллипсоид системы E.
}

// NewECEFVector создаёт вектор ECEF.
func NewECEFVector(p r3.Vec, e Ellipsoid) ECEFVector {
	return ECEFVector{P: p, Ellipsoid: e}
}

// ToNVector преобразует позицию ECEF в n-вектор.
//
// Используется прямое алгебраическое решение (Vermeille 2004, Gade 2010 ур. 23)
// без итераций по широте. Решение устойчиво для точек далеко за пределами
// эллипсоида и вблизи полюсов/экватора. Для центра Земли результат не определён (NaN).
func (v ECEFVector) ToNVector() NVector {
	a := v.Ellipsoid.A
	e2 := v.Ellipsoid.E2()
	e4 := e2 * e2

	x, y, z := v.P.X, v.P.Y, v.P.Z

	// Расстояние от оси вращения.
	r2 := x*x + y*y
	r := math.Sqrt(r2)

	p := r2 / (a * a)
	q := (1 - e2) / (a * a) * z * z
	rr := (p + q - e4) / 6
	s := e4 * p * q / (4 * rr * rr * rr)
	t := math.Cbrt(1 + s + math.Sqrt(s*(2+s)))
	u := rr * (1 + t + 1/t)
	vv := math.Sqrt(u*u + q*e4)
	w := e2 * (u + vv - q) / (2 * vv)
	k := math.Sqrt(u+vv+w*w) - w
	d := k * r / (k + e2)

	hyp := math.Sqrt(d*d + z*z)
	height := (k + e2 - 1) / k * hyp

	// Компоненты нормали до нормализации.
	inv := 1 / hyp
	eq := inv * k / (k + e2)

	normal := r3.Vec{X: eq * x, Y: eq * y, Z: inv * z}

	return NVector{
		Normal:    unit(normal),
		Z:         -height,
		Ellipsoid: v.Ellipsoid,
	}
}

// ToGeoPoint преобразует позицию ECEF в геодезические координаты.
func (v ECEFVector) ToGeoPoint() GeoPoint {
	return v.ToNVector().ToGeoPoint()
}

// Vector возвращает вектор, разложенный в земной системе E.
func (v ECEFVector) Vector() Vector {
	return Vector{P: v.P, Frame: NewEarthFrame(v.Ellipsoid)}
}

// ChangeFrame раскладывает вектор ECEF в системе координат target.
func (v ECEFVector) ChangeFrame(target Frame) Vector {
	return v.Vector().ChangeFrame(target)
}

// Add складывает два вектора ECEF одного эллипсоида.
func (v ECEFVector) Add(other ECEFVector) (ECEFVector, error) {
	if v.Ellipsoid != other.Ellipsoid {
		return ECEFVector{}, fmt.Errorf("%w: %v vs %v", ErrFrameMismatch, v.Ellipsoid, other.Ellipsoid)
	}

	return ECEFVector{P: r3.Add(v.P, other.P), Ellipsoid: v.Ellipsoid}, nil
}

// Sub вычитает other из v. Результат — смещение other -> v в системе E.
func (v ECEFVector) Sub(other ECEFVector) (ECEFVector, error) {
	if v.Ellipsoid != other.Ellipsoid {
		return ECEFVector{}, fmt.Errorf("%w: %v vs %v", ErrFrameMismatch, v.Ellipsoid, other.Ellipsoid)
	}

	return ECEFVector{P: r3.Sub(v.P, other.P), Ellipsoid: v.Ellipsoid}, nil
}

// Norm возвращает длину вектора, м.
func (v ECEFVector) Norm() float64 {
	return r3.Norm(v.P)
}

// String возвращает строковое представление ECEFVector.
func (v ECEFVector) String() string {
	return fmt.Sprintf("ECEF[%.3f, %.3f, %.3f m]", v.P.X, v.P.Y, v.P.Z)
}
