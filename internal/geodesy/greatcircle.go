package geodesy

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// parallelTolerance — порог, ниже которого нормали двух больших кругов
// считаются коллинеарными и пересечение не определено.
const parallelTolerance = 1e-12

// segmentTolerance — допуск при проверке принадлежности точки дуге.
const segmentTolerance = 1e-12

// GreatCircleAngle возвращает центральный угол между n-векторами, радианы.
// Вычисляется как atan2(|n1×n2|, n1·n2), что устойчиво вблизи 0° и 180°.
func GreatCircleAngle(n1, n2 NVector) float64 {
	return math.Atan2(r3.Norm(r3.Cross(n1.Normal, n2.Normal)), r3.Dot(n1.Normal, n2.Normal))
}

// GreatCircleDistance возвращает длину дуги большого круга на сфере радиуса radius, м.
func GreatCircleDistance(n1, n2 NVector, radius float64) float64 {
	return GreatCircleAngle(n1, n2) * radius
}

// EuclideanDistance возвращает длину хорды между позициями, м.
func EuclideanDistance(n1, n2 NVector) float64 {
	return r3.Norm(r3.Sub(n2.ToECEF().P, n1.ToECEF().P))
}

// GreatCircleAzimuth возвращает начальный азимут большого круга из n1 в n2,
// радианы от севера по часовой стрелке, (-π, π].
func GreatCircleAzimuth(n1, n2 NVector) float64 {
	north, east := horizontalAxes(n1.Normal)

	return math.Atan2(r3.Dot(east, n2.Normal), r3.Dot(north, n2.Normal))
}

// GreatCircleDestination возвращает позицию на расстоянии distance (м)
// по большому кругу с начальным азимутом azimuth (радианы) на сфере радиуса radius.
// Глубина исходной позиции сохраняется.
func GreatCircleDestination(n NVector, azimuth, distance, radius float64) NVector {
	north, east := horizontalAxes(n.Normal)

	sinAz, cosAz := math.Sincos(azimuth)
	direction := r3.Add(r3.Scale(cosAz, north), r3.Scale(sinAz, east))

	sinS, cosS := math.Sincos(distance / radius)

	return NewNVector(
		r3.Add(r3.Scale(cosS, n.Normal), r3.Scale(sinS, direction)),
		n.Z,
		n.Ellipsoid,
	)
}

// Intersection возвращает точку пересечения больших кругов A1-A2 и B1-B2.
//
// Из двух диаметрально противоположных решений выбирается ближайшее к
// среднему четырёх исходных точек. Если круги совпадают или путь вырожден
// (совпадающие/противоположные концы), результат не определён и нормаль
// состоит из NaN.
func Intersection(a1, a2, b1, b2 NVector) NVector {
	cA := circleNormal(a1, a2)
	cB := circleNormal(b1, b2)

	dir := r3.Cross(cA, cB)

	norm := r3.Norm(dir)
	if !(norm > parallelTolerance) {
		return NVector{Normal: nanVec(), Ellipsoid: a1.Ellipsoid}
	}

	dir = r3.Scale(1/norm, dir)

	sum := r3.Add(r3.Add(a1.Normal, a2.Normal), r3.Add(b1.Normal, b2.Normal))
	if r3.Dot(dir, sum) < 0 {
		dir = r3.Scale(-1, dir)
	}

	return NVector{Normal: dir, Ellipsoid: a1.Ellipsoid}
}

// CrossTrackAngle возвращает угловое расстояние (радианы) от точки p до
// большого круга через a1 и a2. Положительное значение — справа по ходу
// движения от a1 к a2, отрицательное — слева. Для совпадающих или
// противоположных a1 и a2 круг не определён и результат — NaN.
func CrossTrackAngle(a1, a2, p NVector) float64 {
	c := circleNormal(a1, a2)

	return math.Asin(clamp(-r3.Dot(c, p.Normal), -1, 1))
}

// ClosestPointOnGreatCircle возвращает ближайшую к p точку большого круга
// через a1 и a2. Для полюсов круга и вырожденного пути результат не определён (NaN).
func ClosestPointOnGreatCircle(a1, a2, p NVector) NVector {
	c := circleNormal(a1, a2)

	projected := r3.Sub(p.Normal, r3.Scale(r3.Dot(c, p.Normal), c))
	if !(r3.Norm(projected) > parallelTolerance) {
		return NVector{Normal: nanVec(), Z: p.Z, Ellipsoid: p.Ellipsoid}
	}

	return NewNVector(projected, p.Z, p.Ellipsoid)
}

// OnGreatCircle сообщает, лежит ли p на большом круге через a1 и a2
// с допуском tolerance (м) на сфере радиуса radius.
func OnGreatCircle(a1, a2, p NVector, radius, tolerance float64) bool {
	return math.Abs(CrossTrackAngle(a1, a2, p)*radius) <= tolerance
}

// OnGreatCircleSegment сообщает, лежит ли p на дуге от a1 до a2
// с допуском tolerance (м) на сфере радиуса radius.
func OnGreatCircleSegment(a1, a2, p NVector, radius, tolerance float64) bool {
	if !OnGreatCircle(a1, a2, p, radius, tolerance) {
		return false
	}

	c := r3.Cross(a1.Normal, a2.Normal)
	closest := ClosestPointOnGreatCircle(a1, a2, p)
	if closest.IsNaN() {
		return false
	}

	// Ближайшая точка должна лежать «после» a1 и «до» a2 по направлению обхода.
	after := r3.Dot(r3.Cross(a1.Normal, closest.Normal), c)
	before := r3.Dot(r3.Cross(closest.Normal, a2.Normal), c)

	return after >= -segmentTolerance && before >= -segmentTolerance
}

// Interpolate возвращает позицию на дуге большого круга между n1 (t=0) и n2 (t=1)
// при равномерном движении вдоль дуги. Глубина интерполируется линейно.
// Для диаметрально противоположных позиций дуга не определена (NaN).
func Interpolate(n1, n2 NVector, t float64) NVector {
	z := n1.Z + (n2.Z-n1.Z)*t

	theta := GreatCircleAngle(n1, n2)
	if theta == 0 {
		return NVector{Normal: n1.Normal, Z: z, Ellipsoid: n1.Ellipsoid}
	}

	sinTheta := math.Sin(theta)
	if sinTheta < parallelTolerance {
		return NVector{Normal: nanVec(), Z: z, Ellipsoid: n1.Ellipsoid}
	}

	w1 := math.Sin((1-t)*theta) / sinTheta
	w2 := math.Sin(t*theta) / sinTheta

	return NewNVector(r3.Add(r3.Scale(w1, n1.Normal), r3.Scale(w2, n2.Normal)), z, n1.Ellipsoid)
}

// MeanNVector возвращает среднюю горизонтальную позицию: нормированную сумму
// n-векторов. Глубина усредняется. Для симметричного набора (сумма равна нулю)
// результат не определён (NaN).
func MeanNVector(first NVector, rest ...NVector) NVector {
	sum := first.Normal
	z := first.Z

	for _, n := range rest {
		sum = r3.Add(sum, n.Normal)
		z += n.Z
	}

	count := float64(len(rest) + 1)

	return NewNVector(sum, z/count, first.Ellipsoid)
}

// circleNormal возвращает единичную нормаль плоскости большого круга через
// n1 и n2. Совпадающие и диаметрально противоположные позиции не задают
// круг: векторное произведение у них — шум округления, результат — NaN.
func circleNormal(n1, n2 NVector) r3.Vec {
	c := r3.Cross(n1.Normal, n2.Normal)

	norm := r3.Norm(c)
	if !(norm > parallelTolerance) {
		return nanVec()
	}

	return r3.Scale(1/norm, c)
}

// horizontalAxes возвращает единичные векторы North и East в точке с нормалью n.
// На полюсе используется то же соглашение, что и в LocalFrame.
func horizontalAxes(n r3.Vec) (north, east r3.Vec) {
	east = eastDirection(n)
	if r3.Norm(east) == 0 {
		east = r3.Vec{Y: 1}
	} else {
		east = r3.Unit(east)
	}

	north = r3.Cross(n, east)

	return north, east
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
