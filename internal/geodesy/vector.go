package geodesy

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrFrameMismatch — операция над векторами, разложенными в разных системах координат.
var ErrFrameMismatch = errors.New("frame mismatch")

// Vector — декартов вектор, разложенный в системе координат Frame. Координаты в метрах.
type Vector struct {
	P     r3.Vec // Компоненты в осях Frame, м.
	Frame Frame  // Система координат разложения.
}

// NewVector создаёт вектор с компонентами p в системе f.
func NewVector(p r3.Vec, f Frame) Vector {
	return Vector{P: p, Frame: f}
}

// Add складывает векторы одной системы координат.
// Векторы разных систем автоматически не пересчитываются.
func (v Vector) Add(other Vector) (Vector, error) {
	if v.Frame != other.Frame {
		return Vector{}, fmt.Errorf("%w: %v vs %v", ErrFrameMismatch, v.Frame, other.Frame)
	}

	return Vector{P: r3.Add(v.P, other.P), Frame: v.Frame}, nil
}

// Sub вычитает other из v. Оба вектора должны быть в одной системе координат.
func (v Vector) Sub(other Vector) (Vector, error) {
	if v.Frame != other.Frame {
		return Vector{}, fmt.Errorf("%w: %v vs %v", ErrFrameMismatch, v.Frame, other.Frame)
	}

	return Vector{P: r3.Sub(v.P, other.P), Frame: v.Frame}, nil
}

// Scale возвращает вектор, умноженный на k.
func (v Vector) Scale(k float64) Vector {
	return Vector{P: r3.Scale(k, v.P), Frame: v.Frame}
}

// Norm возвращает длину вектора, м.
func (v Vector) Norm() float64 {
	return r3.Norm(v.P)
}

// ChangeFrame раскладывает вектор в системе target через земную систему E:
// v_E = R_EF · v, v_T = R_TE · v_E.
func (v Vector) ChangeFrame(target Frame) Vector {
	pE := rotate(v.Frame.RotationToEarth(), v.P)

	return Vector{
		P:     rotate(target.RotationToEarth().T(), pE),
		Frame: target,
	}
}

// ToECEF раскладывает вектор в земной системе E.
func (v Vector) ToECEF() ECEFVector {
	return ECEFVector{
		P:         rotate(v.Frame.RotationToEarth(), v.P),
		Ellipsoid: v.Frame.Ellipsoid(),
	}
}

// ToNVector интерпретирует вектор как позицию относительно центра Земли.
func (v Vector) ToNVector() NVector {
	return v.ToECEF().ToNVector()
}

// ToGeoPoint интерпретирует вектор как позицию относительно центра Земли.
func (v Vector) ToGeoPoint() GeoPoint {
	return v.ToECEF().ToGeoPoint()
}

// Azimuth возвращает направление горизонтальной проекции вектора,
// отсчитанное от оси X системы к оси Y (для LocalFrame — азимут от севера).
func (v Vector) Azimuth() float64 {
	return math.Atan2(v.P.Y, v.P.X)
}

// String возвращает строковое представление вектора.
func (v Vector) String() string {
	return fmt.Sprintf("Vector[%.3f, %.3f, %.3f m] in %v", v.P.X, v.P.Y, v.P.Z, v.Frame)
}

// Delta возвращает смещение от a к b, разложенное в системе f.
func Delta(a, b GeoPoint, f Frame) (Vector, error) {
	d, err := b.ToECEF().Sub(a.ToECEF())
	if err != nil {
		return Vector{}, err
	}

	return d.ChangeFrame(f), nil
}

// Displace смещает позицию p на вектор v и возвращает новую позицию.
func Displace(p NVector, v Vector) (NVector, error) {
	moved, err := p.ToECEF().Add(v.ToECEF())
	if err != nil {
		return NVector{}, err
	}

	return moved.ToNVector(), nil
}
