package geodesy

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// GeoPoint представляет геодезические координаты на эллипсоиде.
// Углы хранятся в радианах, Z — глубина в метрах (высота = -Z).
type GeoPoint struct {
	Lat       float64   // Широта в радианах, [-π/2, π/2].
	Lon       float64   // Долгота в радианах.
	Z         float64   // Глубина, м.
	Ellipsoid Ellipsoid // Эллипсоид.
}

// NewGeoPoint создаёт GeoPoint. Если degrees равен true, lat и lon заданы в градусах.
// Широта за пределами ±90° отражается через полюс со сдвигом долготы на 180°.
func NewGeoPoint(lat, lon, z float64, e Ellipsoid, degrees bool) GeoPoint {
	if degrees {
		lat *= Deg2Rad
		lon *= Deg2Rad
	}

	lat, lon = canonicalLatLon(lat, lon)

	return GeoPoint{Lat: lat, Lon: lon, Z: z, Ellipsoid: e}
}

// NewGeoPointDeg создаёт GeoPoint на эллипсоиде WGS84 по координатам в градусах.
func NewGeoPointDeg(latDeg, lonDeg, z float64) GeoPoint {
	return NewGeoPoint(latDeg, lonDeg, z, WGS84, true)
}

// ToNVector преобразует геодезические координаты в n-вектор.
func (p GeoPoint) ToNVector() NVector {
	sinLat, cosLat := math.Sincos(p.Lat)
	sinLon, cosLon := math.Sincos(p.Lon)

	return NewNVector(r3.Vec{
		X: cosLat * cosLon,
		Y: cosLat * sinLon,
		Z: sinLat,
	}, p.Z, p.Ellipsoid)
}

// ToECEF преобразует геодезические координаты в позицию ECEF.
func (p GeoPoint) ToECEF() ECEFVector {
	return p.ToNVector().ToECEF()
}

// LatDeg возвращает широту в градусах.
func (p GeoPoint) LatDeg() float64 {
	return p.Lat * Rad2Deg
}

// LonDeg возвращает долготу в градусах, приведённую к (-180, 180].
func (p GeoPoint) LonDeg() float64 {
	return wrapPi(p.Lon) * Rad2Deg
}

// Height возвращает высоту над эллипсоидом, м.
func (p GeoPoint) Height() float64 {
	return -p.Z
}

// IsNaN сообщает, что точка не определена.
func (p GeoPoint) IsNaN() bool {
	return math.IsNaN(p.Lat) || math.IsNaN(p.Lon)
}

// DistanceAndAzimuth решает обратную геодезическую задачу решателем по умолчанию.
// Возвращает расстояние (м), азимут в начальной точке и прямой азимут в other (радианы).
func (p GeoPoint) DistanceAndAzimuth(other GeoPoint) (float64, float64, float64, error) {
	return p.DistanceAndAzimuthWith(DefaultSolver(), other)
}

// DistanceAndAzimuthWith решает обратную геодезическую задачу указанным решателем.
func (p GeoPoint) DistanceAndAzimuthWith(solver GeodesicSolver, other GeoPoint) (float64, float64, float64, error) {
	if p.Ellipsoid != other.Ellipsoid {
		return 0, 0, 0, fmt.Errorf("%w: %v vs %v", ErrFrameMismatch, p.Ellipsoid, other.Ellipsoid)
	}

	res, err := solver.Inverse(p, other)
	if err != nil {
		return 0, 0, 0, err
	}

	return res.Distance, res.Azimuth1, res.Azimuth2, nil
}

// Destination решает прямую геодезическую задачу решателем по умолчанию:
// точка на расстоянии distance (м) по азимуту azimuth.
// Если degrees равен true, азимут на входе и на выходе — в градусах.
// Возвращает конечную точку и прямой азимут в ней.
func (p GeoPoint) Destination(distance, azimuth float64, degrees bool) (GeoPoint, float64, error) {
	return p.DestinationWith(DefaultSolver(), distance, azimuth, degrees)
}

// DestinationWith решает прямую геодезическую задачу указанным решателем.
func (p GeoPoint) DestinationWith(solver GeodesicSolver, distance, azimuth float64, degrees bool) (GeoPoint, float64, error) {
	if degrees {
		azimuth *= Deg2Rad
	}

	res, err := solver.Direct(p, azimuth, distance)
	if err != nil {
		return GeoPoint{}, 0, err
	}

	az := res.Azimuth2
	if degrees {
		az *= Rad2Deg
	}

	return res.Point, az, nil
}

// String возвращает строковое представление точки в градусах.
func (p GeoPoint) String() string {
	return fmt.Sprintf("GeoPoint[%.8f°, %.8f°] z=%.3f m", p.LatDeg(), p.LonDeg(), p.Z)
}

// canonicalLatLon приводит широту к [-π/2, π/2]. Переход через полюс
// отражает широту и поворачивает долготу на π.
func canonicalLatLon(lat, lon float64) (float64, float64) {
	if math.IsNaN(lat) || math.IsInf(lat, 0) {
		return lat, lon
	}

	lat = wrapPi(lat)

	switch {
	case lat > math.Pi/2:
		lat = math.Pi - lat
		lon += math.Pi
	case lat < -math.Pi/2:
		lat = -math.Pi - lat
		lon += math.Pi
	}

	return lat, lon
}

// wrapPi приводит угол к диапазону (-π, π].
func wrapPi(angle float64) float64 {
	if math.IsNaN(angle) || math.IsInf(angle, 0) {
		return angle
	}

	if angle > -math.Pi && angle <= math.Pi {
		return angle
	}

	wrapped := math.Mod(angle+math.Pi, 2*math.Pi)
	if wrapped <= 0 {
		wrapped += 2 * math.Pi
	}

	return wrapped - math.Pi
}
