package geodesy

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Frame — система координат, связанная с земной системой E поворотом.
//
// Реализации: EarthFrame, LocalFrame (North-East-Down), WanderFrame
// (локально-горизонтальная с азимутом блуждания) и BodyFrame.
// Все реализации — сравнимые значения: две системы равны, если равны
// их определяющие параметры, независимо от того, где они были созданы.
type Frame interface {
	// Ellipsoid возвращает эллипсоид, к которому привязана система.
	Ellipsoid() Ellipsoid

	// RotationToEarth возвращает матрицу R_EF: столбцы — оси системы в осях E,
	// v_E = R_EF · v_F.
	RotationToEarth() *mat.Dense

	frame()
}

// LevelFrame — локально-горизонтальная система, привязанная к n-вектору.
// Используется как опорная для BodyFrame.
type LevelFrame interface {
	Frame

	// Position возвращает n-вектор, в котором определена система.
	Position() NVector
}

// RotationFromEarth возвращает матрицу R_FE = R_EFᵀ: v_F = R_FE · v_E.
func RotationFromEarth(f Frame) *mat.Dense {
	var r mat.Dense
	r.CloneFrom(f.RotationToEarth().T())

	return &r
}

// EarthFrame — земная система координат E (ECEF).
type EarthFrame struct {
	ellipsoid Ellipsoid
}

// NewEarthFrame создаёт земную систему для эллипсоида e.
func NewEarthFrame(e Ellipsoid) EarthFrame {
	return EarthFrame{ellipsoid: e}
}

// Ellipsoid возвращает эллипсоид системы.
func (f EarthFrame) Ellipsoid() Ellipsoid { return f.ellipsoid }

// RotationToEarth возвращает единичную матрицу.
func (f EarthFrame) RotationToEarth() *mat.Dense {
	return identity()
}

// String возвращает строковое представление системы.
func (f EarthFrame) String() string {
	return fmt.Sprintf("FrameE[%v]", f.ellipsoid)
}

func (EarthFrame) frame() {}

// LocalFrame — локальная система North-East-Down (N) в точке n-вектора.
//
// На полюсах направление на север не определено. В этом случае ось East
// фиксируется вдоль оси Y системы E (соглашение «сеточного севера»),
// а AtPole сообщает о вырожденном случае.
type LocalFrame struct {
	position NVector
}

// NewLocalFrame создаёт систему North-East-Down в точке p.
func NewLocalFrame(p NVector) LocalFrame {
	return LocalFrame{position: p}
}

// Ellipsoid возвращает эллипсоид системы.
func (f LocalFrame) Ellipsoid() Ellipsoid { return f.position.Ellipsoid }

// Position возвращает n-вектор точки привязки.
func (f LocalFrame) Position() NVector { return f.position }

// AtPole сообщает, что точка привязки лежит точно на полюсе.
func (f LocalFrame) AtPole() bool {
	return r3.Norm(eastDirection(f.position.Normal)) == 0
}

// RotationToEarth возвращает матрицу R_EN со столбцами North, East, Down.
func (f LocalFrame) RotationToEarth() *mat.Dense {
	n := f.position.Normal

	down := r3.Scale(-1, n)

	east := eastDirection(n)
	if r3.Norm(east) == 0 {
		east = r3.Vec{Y: 1}
	} else {
		east = r3.Unit(east)
	}

	north := r3.Cross(east, down)

	return fromColumns(north, east, down)
}

// String возвращает строковое представление системы.
func (f LocalFrame) String() string {
	return fmt.Sprintf("FrameN[%v]", f.position)
}

func (LocalFrame) frame() {}

// WanderFrame — локально-горизонтальная система (L), повёрнутая относительно
// North-East-Down вокруг оси Down на азимут блуждания.
type WanderFrame struct {
	position NVector
	wander   float64
}

// NewWanderFrame создаёт систему L в точке p с азимутом блуждания wander.
// Если degrees равен true, угол задан в градусах.
func NewWanderFrame(p NVector, wander float64, degrees bool) WanderFrame {
	if degrees {
		wander *= Deg2Rad
	}

	return WanderFrame{position: p, wander: wander}
}

// Ellipsoid возвращает эллипсоид системы.
func (f WanderFrame) Ellipsoid() Ellipsoid { return f.position.Ellipsoid }

// Position возвращает n-вектор точки привязки.
func (f WanderFrame) Position() NVector { return f.position }

// WanderAzimuth возвращает азимут блуждания в радианах.
func (f WanderFrame) WanderAzimuth() float64 { return f.wander }

// RotationToEarth возвращает матрицу R_EL = R_EN · Rz(wander).
func (f WanderFrame) RotationToEarth() *mat.Dense {
	var r mat.Dense
	r.Mul(NewLocalFrame(f.position).RotationToEarth(), rotZ(f.wander))

	return &r
}

// String возвращает строковое представление системы.
func (f WanderFrame) String() string {
	return fmt.Sprintf("FrameL[%v, wander=%.6f°]", f.position, f.wander*Rad2Deg)
}

func (WanderFrame) frame() {}

// BodyFrame — связанная система объекта (B), заданная углами рыскания,
// тангажа и крена относительно локально-горизонтальной системы.
type BodyFrame struct {
	level LevelFrame
	yaw   float64
	pitch float64
	roll  float64
}

// NewBodyFrame создаёт связанную систему относительно North-East-Down в точке p.
// Если degrees равен true, углы заданы в градусах.
func NewBodyFrame(p NVector, yaw, pitch, roll float64, degrees bool) BodyFrame {
	return NewBodyFrameIn(NewLocalFrame(p), yaw, pitch, roll, degrees)
}

// NewBodyFrameIn создаёт связанную систему относительно произвольной
// локально-горизонтальной системы (LocalFrame или WanderFrame).
func NewBodyFrameIn(level LevelFrame, yaw, pitch, roll float64, degrees bool) BodyFrame {
	if degrees {
		yaw *= Deg2Rad
		pitch *= Deg2Rad
		roll *= Deg2Rad
	}

	return BodyFrame{level: level, yaw: yaw, pitch: pitch, roll: roll}
}

// Ellipsoid возвращает эллипсоид системы.
func (f BodyFrame) Ellipsoid() Ellipsoid { return f.level.Ellipsoid() }

// Position возвращает n-вектор положения объекта.
func (f BodyFrame) Position() NVector { return f.level.Position() }

// Level возвращает опорную локально-горизонтальную систему.
func (f BodyFrame) Level() LevelFrame { return f.level }

// Attitude возвращает углы рыскания, тангажа и крена в радианах.
func (f BodyFrame) Attitude() (yaw, pitch, roll float64) {
	return f.yaw, f.pitch, f.roll
}

// RotationToEarth возвращает R_EB = R_EL · Rz(yaw) · Ry(pitch) · Rx(roll).
func (f BodyFrame) RotationToEarth() *mat.Dense {
	var r mat.Dense
	r.Mul(f.level.RotationToEarth(), zyxRotation(f.yaw, f.pitch, f.roll))

	return &r
}

// String возвращает строковое представление системы.
func (f BodyFrame) String() string {
	return fmt.Sprintf("FrameB[%v, ypr=%.6f°/%.6f°/%.6f°]",
		f.level, f.yaw*Rad2Deg, f.pitch*Rad2Deg, f.roll*Rad2Deg)
}

func (BodyFrame) frame() {}

// eastDirection возвращает ненормализованное направление на восток ẑ × n.
// Нулевой вектор означает полюс.
func eastDirection(n r3.Vec) r3.Vec {
	return r3.Cross(r3.Vec{Z: 1}, n)
}

// zyxRotation возвращает Rz(z) · Ry(y) · Rx(x) — поворот в порядке
// рыскание, тангаж, крен.
func zyxRotation(z, y, x float64) *mat.Dense {
	var zy, zyx mat.Dense
	zy.Mul(rotZ(z), rotY(y))
	zyx.Mul(&zy, rotX(x))

	return &zyx
}

func rotX(angle float64) *mat.Dense {
	s, c := math.Sincos(angle)
	return mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, c, -s,
		0, s, c,
	})
}

func rotY(angle float64) *mat.Dense {
	s, c := math.Sincos(angle)
	return mat.NewDense(3, 3, []float64{
		c, 0, s,
		0, 1, 0,
		-s, 0, c,
	})
}

func rotZ(angle float64) *mat.Dense {
	s, c := math.Sincos(angle)
	return mat.NewDense(3, 3, []float64{
		c, -s, 0,
		s, c, 0,
		0, 0, 1,
	})
}

func identity() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})
}

// fromColumns собирает матрицу 3×3 из столбцов.
func fromColumns(x, y, z r3.Vec) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		x.X, y.X, z.X,
		x.Y, y.Y, z.Y,
		x.Z, y.Z, z.Z,
	})
}

// rotate применяет матрицу m к вектору v.
func rotate(m mat.Matrix, v r3.Vec) r3.Vec {
	var out mat.VecDense
	out.MulVec(m, mat.NewVecDense(3, []float64{v.X, v.Y, v.Z}))

	return r3.Vec{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
}
