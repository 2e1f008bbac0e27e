package geodesy

import (
	"math"
	"math/rand/v2"
	"testing"

	satellite "github.com/joshuaferrara/go-satellite"
	"gonum.org/v1/gonum/spatial/r3"
)

// TestGeoPointToECEF_Known проверяет преобразование геодезических координат в ECEF
// на эталонной точке (широта 1°, долгота 2°, высота 3 м, WGS84).
func TestGeoPointToECEF_Known(t *testing.T) {
	p := NewGeoPoint(1, 2, -3, WGS84, true)

	got := p.ToECEF().P
	expected := r3.Vec{X: 6373290.27721828, Y: 222560.20067474, Z: 110568.82718179}

	if !almostEqual(got.X, expected.X, 1e-5) ||
		!almostEqual(got.Y, expected.Y, 1e-5) ||
		!almostEqual(got.Z, expected.Z, 1e-5) {
		t.Errorf("ECEF: expected %v, got %v", expected, got)
	}
}

// TestECEFToGeoPoint_Known проверяет обратное преобразование для точки далеко
// над поверхностью эллипсоида.
func TestECEFToGeoPoint_Known(t *testing.T) {
	v := NewECEFVector(r3.Scale(6371e3, r3.Vec{X: 0.9, Y: -1, Z: 1.1}), WGS84)

	p := v.ToGeoPoint()

	if !almostEqual(p.LatDeg(), 39.37874867, 1e-7) {
		t.Errorf("Lat: expected 39.37874867, got %.10f", p.LatDeg())
	}
	if !almostEqual(p.LonDeg(), -48.0127875, 1e-7) {
		t.Errorf("Lon: expected -48.0127875, got %.10f", p.LonDeg())
	}
	if !almostEqual(p.Height(), 4702059.83429485, 1e-5) {
		t.Errorf("Height: expected 4702059.83429485, got %.8f", p.Height())
	}
}

func TestNVectorToECEF_AndBack(t *testing.T) {
	sphere := mustSphere(t, 6371e3)

	testCases := []struct {
		name      string
		lat, lon  float64
		z         float64
		ellipsoid Ellipsoid
	}{
		{"equator", 0, 0, 0, WGS84},
		{"mid latitude", 45, 45, -1000, WGS84},
		{"southern hemisphere", -33.8688, 151.2093, -58, WGS84},
		{"dateline", 10, 180, 0, WGS72},
		{"north pole", 90, 0, 0, WGS84},
		{"south pole", -90, 0, -100, WGS84},
		{"deep below surface", 60, -120, 5000e3, WGS84},
		{"geostationary height", 0, 75, -35786e3, WGS84},
		{"sphere", 88, -170, -10, sphere},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			n := NewGeoPoint(tc.lat, tc.lon, tc.z, tc.ellipsoid, true).ToNVector()

			back := n.ToECEF().ToNVector()

			if !almostEqual(back.Z, n.Z, 1e-5) {
				t.Errorf("Z: expected %v, got %v", n.Z, back.Z)
			}
			if GreatCircleAngle(n, back) > 1e-12 {
				t.Errorf("normal: expected %v, got %v", n.Normal, back.Normal)
			}
			if back.Ellipsoid != tc.ellipsoid {
				t.Errorf("ellipsoid lost: %v", back.Ellipsoid)
			}
		})
	}
}

// TestNVectorToECEF_RandomRoundTrip проверяет обратимость преобразования
// n-вектор -> ECEF -> n-вектор на случайных позициях.
func TestNVectorToECEF_RandomRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for i := range 1000 {
		normal := r3.Vec{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()}
		z := -1e5 + 1.1e5*rng.Float64()

		n := NewNVector(normal, z, WGS84)
		back := n.ToECEF().ToNVector()

		if GreatCircleAngle(n, back) > 1e-12 {
			t.Fatalf("[%d] normal: expected %v, got %v", i, n.Normal, back.Normal)
		}
		if !almostEqual(back.Z, n.Z, 1e-6) {
			t.Fatalf("[%d] Z: expected %v, got %v", i, n.Z, back.Z)
		}
	}
}

// TestGeoPoint_RandomRoundTrip проверяет обратимость преобразования
// GeoPoint -> n-вектор -> GeoPoint на случайных координатах.
func TestGeoPoint_RandomRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))

	for i := range 1000 {
		lat := -90 + 180*rng.Float64()
		lon := -180 + 360*rng.Float64()
		z := -1e4 + 2e4*rng.Float64()

		p := NewGeoPointDeg(lat, lon, z)
		back := p.ToNVector().ToGeoPoint()

		if !almostEqual(back.LatDeg(), lat, 1e-9) {
			t.Fatalf("[%d] lat: expected %v, got %v", i, lat, back.LatDeg())
		}
		if math.Abs(lat) < 89 && math.Abs(math.Remainder(back.LonDeg()-lon, 360)) > 1e-9 {
			t.Fatalf("[%d] lon: expected %v, got %v", i, lon, back.LonDeg())
		}
		if GreatCircleAngle(p.ToNVector(), back.ToNVector()) > 1e-12 {
			t.Fatalf("[%d] position differs: %v vs %v", i, p, back)
		}
		if back.Z != z {
			t.Fatalf("[%d] Z: expected %v, got %v", i, z, back.Z)
		}
	}
}

func TestGeoPoint_NVectorRoundTrip(t *testing.T) {
	testCases := []struct {
		lat, lon float64
	}{
		{0, 0},
		{45, 90},
		{-45, -90},
		{89.999, 179.999},
		{-10, -179.5},
		{30, 180},
	}

	for _, tc := range testCases {
		p := NewGeoPointDeg(tc.lat, tc.lon, 12)
		back := p.ToNVector().ToGeoPoint()

		if !almostEqual(back.LatDeg(), tc.lat, toleranceDegree) {
			t.Errorf("(%v, %v) lat: got %v", tc.lat, tc.lon, back.LatDeg())
		}
		if !almostEqual(back.LonDeg(), p.LonDeg(), toleranceDegree) {
			t.Errorf("(%v, %v) lon: got %v", tc.lat, tc.lon, back.LonDeg())
		}
		if back.Z != 12 {
			t.Errorf("(%v, %v) z: expected 12, got %v", tc.lat, tc.lon, back.Z)
		}
	}
}

func TestNewGeoPoint_CanonicalLatitude(t *testing.T) {
	p := NewGeoPoint(100, 10, 0, WGS84, true)

	if !almostEqual(p.LatDeg(), 80, toleranceDegree) {
		t.Errorf("Lat: expected 80, got %v", p.LatDeg())
	}
	if !almostEqual(p.LonDeg(), -170, toleranceDegree) {
		t.Errorf("Lon: expected -170, got %v", p.LonDeg())
	}

	// Отражённая точка совпадает с исходной в пространстве.
	direct := NewGeoPoint(80, -170, 0, WGS84, true).ToECEF()
	diff, err := p.ToECEF().Sub(direct)
	if err != nil {
		t.Fatal(err)
	}
	if diff.Norm() > toleranceMeter {
		t.Errorf("positions differ by %v m", diff.Norm())
	}
}

func TestNewNVector_Normalizes(t *testing.T) {
	n := NewNVector(r3.Vec{X: 1, Y: 2, Z: 3}, -400, WGS72)

	if !almostEqual(r3.Norm(n.Normal), 1, toleranceUnit) {
		t.Errorf("normal is not unit: %v", r3.Norm(n.Normal))
	}
	if n.Z != -400 {
		t.Errorf("Z must be preserved, got %v", n.Z)
	}
	if n.Height() != 400 {
		t.Errorf("Height: expected 400, got %v", n.Height())
	}

	if zero := NewNVector(r3.Vec{}, 0, WGS84); !zero.IsNaN() {
		t.Error("zero direction must give undefined n-vector")
	}
}

func TestECEFToNVector_EarthCenter(t *testing.T) {
	n := NewECEFVector(r3.Vec{}, WGS84).ToNVector()
	if !n.IsNaN() {
		t.Errorf("center of the Earth must be undefined, got %v", n)
	}
}

// TestECEFToGeoPoint_MatchesSatelliteLibrary сравнивает результат с go-satellite
// (ECIToLLA при нулевом звёздном времени, WGS84, километры).
// Долгота сравнивается везде, высота — на экваторе, где итерация
// библиотеки по широте вырождается в точное решение.
func TestECEFToGeoPoint_MatchesSatelliteLibrary(t *testing.T) {
	testCases := []struct {
		name        string
		lat, lon, h float64 // Градусы, метры.
		checkHeight bool
	}{
		{"equator LEO", 0, 37.5, 420e3, true},
		{"equator GEO", 0, -105, 35786e3, true},
		{"equator surface", 0, 179, 0, true},
		{"mid latitude", 51.6, 12.3, 400e3, false},
		{"southern", -62.1, -73.9, 800e3, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewGeoPoint(tc.lat, tc.lon, -tc.h, WGS84, true)
			ecef := p.ToECEF().P

			alt, _, lla := satellite.ECIToLLA(satellite.Vector3{
				X: ecef.X / 1000,
				Y: ecef.Y / 1000,
				Z: ecef.Z / 1000,
			}, 0)

			got := NewECEFVector(ecef, WGS84).ToGeoPoint()

			if !almostEqual(got.Lon, wrapPi(lla.Longitude), 1e-12) {
				t.Errorf("Lon: go-satellite %v, got %v", wrapPi(lla.Longitude)*Rad2Deg, got.LonDeg())
			}

			if tc.checkHeight {
				if !almostEqual(got.Height(), alt*1000, 1e-3) {
					t.Errorf("Height: go-satellite %v m, got %v m", alt*1000, got.Height())
				}
				if !almostEqual(lla.Latitude, 0, 1e-12) {
					t.Errorf("go-satellite latitude: expected 0, got %v", lla.Latitude)
				}
			}

			if !almostEqual(got.LatDeg(), tc.lat, toleranceDegree) {
				t.Errorf("Lat: expected %v, got %v", tc.lat, got.LatDeg())
			}
		})
	}
}

func TestECEFVector_FrameMismatch(t *testing.T) {
	a := NewECEFVector(r3.Vec{X: 1}, WGS84)
	b := NewECEFVector(r3.Vec{X: 1}, WGS72)

	if _, err := a.Add(b); err == nil {
		t.Error("expected error for different ellipsoids")
	}
	if _, err := a.Sub(b); err == nil {
		t.Error("expected error for different ellipsoids")
	}

	sum, err := a.Add(a)
	if err != nil {
		t.Fatal(err)
	}
	if sum.P.X != 2 {
		t.Errorf("sum: expected 2, got %v", sum.P.X)
	}
}

func TestWrapPi(t *testing.T) {
	testCases := []struct {
		in, expected float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi / 2, -math.Pi / 2},
		{-3 * math.Pi / 2, math.Pi / 2},
		{2*math.Pi + 0.5, 0.5},
	}

	for _, tc := range testCases {
		if got := wrapPi(tc.in); !almostEqual(got, tc.expected, 1e-12) {
			t.Errorf("wrapPi(%v): expected %v, got %v", tc.in, tc.expected, got)
		}
	}
}

func BenchmarkGeoPointToECEF(b *testing.B) {
	p := NewGeoPointDeg(55.75, 37.62, -150)

	for b.Loop() {
		_ = p.ToECEF()
	}
}

func BenchmarkECEFToNVector(b *testing.B) {
	v := NewGeoPointDeg(55.75, 37.62, -150).ToECEF()

	for b.Loop() {
		_ = v.ToNVector()
	}
}
