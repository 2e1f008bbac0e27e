package geodesy

import (
	"sync"

	"github.com/tidwall/geodesic"
)

// KarneySolver решает геодезические задачи алгоритмом Карни (GeographicLib).
// В отличие от VincentySolver, сходится и для почти диаметрально
// противоположных точек.
type KarneySolver struct {
	mu     sync.Mutex
	models map[Ellipsoid]*geodesic.Ellipsoid
}

// NewKarneySolver создаёт решатель Карни.
func NewKarneySolver() *KarneySolver {
	return &KarneySolver{models: make(map[Ellipsoid]*geodesic.Ellipsoid)}
}

// Inverse решает обратную геодезическую задачу.
func (s *KarneySolver) Inverse(a, b GeoPoint) (InverseResult, error) {
	var dist, azi1, azi2 float64

	s.model(a.Ellipsoid).Inverse(a.LatDeg(), a.LonDeg(), b.LatDeg(), b.LonDeg(), &dist, &azi1, &azi2)

	return InverseResult{
		Distance: dist,
		Azimuth1: azi1 * Deg2Rad,
		Azimuth2: azi2 * Deg2Rad,
	}, nil
}

// Direct решает прямую геодезическую задачу.
func (s *KarneySolver) Direct(p GeoPoint, azimuth, distance float64) (DirectResult, error) {
	var lat, lon, azi2 float64

	s.model(p.Ellipsoid).Direct(p.LatDeg(), p.LonDeg(), azimuth*Rad2Deg, distance, &lat, &lon, &azi2)

	return DirectResult{
		Point: GeoPoint{
			Lat:       lat * Deg2Rad,
			Lon:       wrapPi(lon * Deg2Rad),
			Z:         p.Z,
			Ellipsoid: p.Ellipsoid,
		},
		Azimuth2: azi2 * Deg2Rad,
	}, nil
}

// model возвращает кешированную модель эллипсоида для GeographicLib.
func (s *KarneySolver) model(e Ellipsoid) *geodesic.Ellipsoid {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.models[e]
	if !ok {
		m = geodesic.NewEllipsoid(e.A, e.F)
		s.models[e] = m
	}

	return m
}
