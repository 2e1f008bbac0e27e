package geodesy

import (
	"errors"
	"math"
	"testing"
)

func TestTrack_NoCrossing(t *testing.T) {
	path := mustPath(t, NewGeoPointDeg(55.7558, 37.6173, 0), NewGeoPointDeg(59.9386, 30.3141, 0))

	tr, err := path.Track(10)
	if err != nil {
		t.Fatal(err)
	}

	if len(tr.Segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(tr.Segments))
	}
	if tr.TotalPoints() != 11 {
		t.Errorf("expected 11 points, got %d", tr.TotalPoints())
	}

	gc, err := path.TrackDistance(MethodGreatCircle)
	if err != nil {
		t.Fatal(err)
	}
	if !almostEqual(tr.Length, gc, 1e-6) {
		t.Errorf("Length: expected %v, got %v", gc, tr.Length)
	}

	points := tr.Points()
	first, last := points[0], points[len(points)-1]

	if !almostEqual(first.Lat, 55.7558, toleranceDegree) || !almostEqual(first.Lon, 37.6173, toleranceDegree) {
		t.Errorf("first point: got %+v", first)
	}
	if !almostEqual(last.Lat, 59.9386, toleranceDegree) || !almostEqual(last.Lon, 30.3141, toleranceDegree) {
		t.Errorf("last point: got %+v", last)
	}
	if first.Distance != 0 || !almostEqual(last.Distance, tr.Length, 1e-6) {
		t.Errorf("distances: first %v, last %v, length %v", first.Distance, last.Distance, tr.Length)
	}
}

func TestTrack_AntimeridianCrossing(t *testing.T) {
	path := mustPath(t, NewGeoPointDeg(10, 170, 0), NewGeoPointDeg(-5, -165, 0))

	tr, err := path.Track(10)
	if err != nil {
		t.Fatal(err)
	}

	if len(tr.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(tr.Segments))
	}

	// Исходные 11 точек плюс две граничные.
	if tr.TotalPoints() != 13 {
		t.Errorf("expected 13 points, got %d", tr.TotalPoints())
	}

	west, east := tr.Segments[0], tr.Segments[1]

	for _, p := range west {
		if p.Lon < 0 {
			t.Errorf("western segment contains negative longitude %v", p.Lon)
		}
	}
	for _, p := range east {
		if p.Lon > 0 {
			t.Errorf("eastern segment contains positive longitude %v", p.Lon)
		}
	}

	boundaryPrev, boundaryNext := west[len(west)-1], east[0]
	if boundaryPrev.Lon != 180 || boundaryNext.Lon != -180 {
		t.Errorf("boundary longitudes: expected 180/-180, got %v/%v", boundaryPrev.Lon, boundaryNext.Lon)
	}
	if boundaryPrev.Lat != boundaryNext.Lat || boundaryPrev.Distance != boundaryNext.Distance {
		t.Errorf("boundary points differ: %+v vs %+v", boundaryPrev, boundaryNext)
	}

	// Широта пересечения совпадает с пересечением пути и меридиана 180°.
	meridian := mustPath(t, NewGeoPointDeg(-30, 180, 0), NewGeoPointDeg(30, 180, 0))
	crossing := path.Intersection(meridian)

	if !almostEqual(boundaryPrev.Lat, crossing.LatDeg(), 1e-9) {
		t.Errorf("crossing latitude: expected %v, got %v", crossing.LatDeg(), boundaryPrev.Lat)
	}

	points := tr.Points()
	for i := 1; i < len(points); i++ {
		if points[i].Distance < points[i-1].Distance {
			t.Errorf("distance decreases at %d: %v -> %v", i, points[i-1].Distance, points[i].Distance)
		}
	}
}

// TestTrack_CoarseAntimeridianCrossing проверяет разбиение трассы, когда
// между соседними точками пересекается антимеридиан при любом шаге.
func TestTrack_CoarseAntimeridianCrossing(t *testing.T) {
	path := mustPath(t, NewGeoPointDeg(0, 100, 0), NewGeoPointDeg(0, -100, 0))

	testCases := []struct {
		steps  int
		points int
	}{
		{1, 4},
		{2, 4},
		{3, 6},
		{100, 102},
	}

	for _, tc := range testCases {
		tr, err := path.Track(tc.steps)
		if err != nil {
			t.Fatal(err)
		}

		if len(tr.Segments) != 2 {
			t.Fatalf("steps=%d: expected 2 segments, got %d: %v", tc.steps, len(tr.Segments), tr.Segments)
		}
		if tr.TotalPoints() != tc.points {
			t.Errorf("steps=%d: expected %d points, got %d", tc.steps, tc.points, tr.TotalPoints())
		}

		west, east := tr.Segments[0], tr.Segments[1]
		boundaryPrev, boundaryNext := west[len(west)-1], east[0]

		if boundaryPrev.Lon != 180 || boundaryNext.Lon != -180 {
			t.Errorf("steps=%d: boundary longitudes %v/%v", tc.steps, boundaryPrev.Lon, boundaryNext.Lon)
		}
		if !almostEqual(boundaryPrev.Lat, 0, 1e-9) || !almostEqual(boundaryNext.Lat, 0, 1e-9) {
			t.Errorf("steps=%d: boundary latitudes %v/%v", tc.steps, boundaryPrev.Lat, boundaryNext.Lat)
		}
		if !almostEqual(boundaryPrev.Distance, tr.Length/2, 1e-6) || !almostEqual(boundaryNext.Distance, tr.Length/2, 1e-6) {
			t.Errorf("steps=%d: boundary distances %v/%v, expected %v",
				tc.steps, boundaryPrev.Distance, boundaryNext.Distance, tr.Length/2)
		}

		// Граничная точка не дублируется, даже если отсчёт попал ровно на 180°.
		for _, seg := range tr.Segments {
			for i := 1; i < len(seg); i++ {
				if seg[i] == seg[i-1] {
					t.Errorf("steps=%d: duplicate point %+v", tc.steps, seg[i])
				}
			}
		}

		for _, p := range west {
			if p.Lon < 0 {
				t.Errorf("steps=%d: western segment contains %v", tc.steps, p.Lon)
			}
		}
		for _, p := range east {
			if p.Lon > 0 {
				t.Errorf("steps=%d: eastern segment contains %v", tc.steps, p.Lon)
			}
		}
	}
}

func TestTrack_EndpointOnAntimeridian(t *testing.T) {
	testCases := []struct {
		name     string
		a, b     GeoPoint
		boundary float64
	}{
		{"ends at 180 from east", NewGeoPointDeg(0, 170, 0), NewGeoPointDeg(0, 180, 0), 180},
		{"ends at 180 from west", NewGeoPointDeg(0, -170, 0), NewGeoPointDeg(0, 180, 0), -180},
		{"starts at 180 going west", NewGeoPointDeg(0, 180, 0), NewGeoPointDeg(0, -170, 0), -180},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tr, err := mustPath(t, tc.a, tc.b).Track(4)
			if err != nil {
				t.Fatal(err)
			}

			if len(tr.Segments) != 1 {
				t.Fatalf("expected 1 segment, got %d: %v", len(tr.Segments), tr.Segments)
			}
			if tr.TotalPoints() != 5 {
				t.Errorf("expected 5 points, got %d", tr.TotalPoints())
			}

			points := tr.Points()
			end := points[len(points)-1]
			if tc.a.LonDeg() == 180 {
				end = points[0]
			}
			if end.Lon != tc.boundary {
				t.Errorf("boundary longitude: expected %v, got %v", tc.boundary, end.Lon)
			}
		})
	}
}

func TestTrack_ThroughPoleIsNotSplit(t *testing.T) {
	path := mustPath(t, NewGeoPointDeg(80, 0, 0), NewGeoPointDeg(80, 180, 0))

	tr, err := path.Track(19)
	if err != nil {
		t.Fatal(err)
	}

	if len(tr.Segments) != 1 {
		t.Errorf("expected 1 segment, got %d", len(tr.Segments))
	}

	maxLat := -90.0
	for _, p := range tr.Points() {
		maxLat = math.Max(maxLat, p.Lat)
	}
	if maxLat < 89 {
		t.Errorf("track must pass near the pole, max latitude %v", maxLat)
	}
}

func TestTrack_Errors(t *testing.T) {
	path := mustPath(t, NewGeoPointDeg(0, 0, 0), NewGeoPointDeg(10, 10, 0))

	for _, steps := range []int{0, -5} {
		if _, err := path.Track(steps); !errors.Is(err, ErrInvalidSteps) {
			t.Errorf("steps=%d: expected ErrInvalidSteps, got %v", steps, err)
		}
	}

	antipodal := mustPath(t, NewGeoPointDeg(0, 0, 0), NewGeoPointDeg(0, 180, 0))
	if _, err := antipodal.Track(10); !errors.Is(err, ErrDegeneratePath) {
		t.Errorf("antipodal: expected ErrDegeneratePath, got %v", err)
	}
}

func TestTrack_CoincidentEndpoints(t *testing.T) {
	p := NewGeoPointDeg(45, 45, 0)
	tr, err := mustPath(t, p, p).Track(3)
	if err != nil {
		t.Fatal(err)
	}

	if tr.Length != 0 {
		t.Errorf("Length: expected 0, got %v", tr.Length)
	}
	for _, pt := range tr.Points() {
		if !almostEqual(pt.Lat, 45, toleranceDegree) || !almostEqual(pt.Lon, 45, toleranceDegree) {
			t.Errorf("unexpected point %+v", pt)
		}
	}
}

func TestTrack_NilSafe(t *testing.T) {
	var tr *Track

	if tr.Points() != nil {
		t.Error("Points on nil track must be nil")
	}
	if tr.TotalPoints() != 0 {
		t.Error("TotalPoints on nil track must be 0")
	}
}

func TestSplitAtAntimeridian_Empty(t *testing.T) {
	if got := splitAtAntimeridian(nil, nil, NewGeoPointDeg(0, 0, 0).ToNVector().Normal, EarthRadiusMean); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func BenchmarkTrack(b *testing.B) {
	path := GeoPath{A: NewGeoPointDeg(10, 170, 0), B: NewGeoPointDeg(-5, -165, 0)}

	for b.Loop() {
		_, _ = path.Track(100)
	}
}
