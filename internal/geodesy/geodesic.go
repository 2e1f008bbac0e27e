package geodesy

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
)

// Ошибки геодезических решателей.
var (
	ErrNonConvergence = errors.New("geodesic solver did not converge")
	ErrUnknownMethod  = errors.New("unknown method")
)

// Параметры итерационного решателя по умолчанию.
const (
	// DefaultMaxIterations — предельное число итераций.
	DefaultMaxIterations = 200

	// DefaultTolerance — порог сходимости по вспомогательному углу, радианы.
	DefaultTolerance = 1e-12
)

// InverseResult — решение обратной геодезической задачи.
type InverseResult struct {
	Distance float64 // Длина геодезической, м.
	Azimuth1 float64 // Азимут в начальной точке, радианы.
	Azimuth2 float64 // Прямой азимут в конечной точке, радианы.
}

// DirectResult — решение прямой геодезической задачи.
type DirectResult struct {
	Point    GeoPoint // Конечная точка (глубина сохраняется от начальной).
	Azimuth2 float64  // Прямой азимут в конечной точке, радианы.
}

// GeodesicSolver решает прямую и обратную геодезические задачи на эллипсоиде.
type GeodesicSolver interface {
	// Inverse находит расстояние и азимуты между a и b.
	Inverse(a, b GeoPoint) (InverseResult, error)

	// Direct находит точку на расстоянии distance (м) от p по азимуту azimuth (радианы).
	Direct(p GeoPoint, azimuth, distance float64) (DirectResult, error)
}

// VincentySolver решает геодезические задачи итерационным методом Винсенти.
//
// Для почти диаметрально противоположных точек итерация по долготе
// на вспомогательной сфере может не сойтись; в этом случае возвращается
// ErrNonConvergence, устаревшее приближение не возвращается никогда.
// На сфере (f = 0) решение точное и сходится за одну итерацию.
type VincentySolver struct {
	maxIterations int
	tolerance     float64
	logger        *slog.Logger
}

// SolverOption функция настройки VincentySolver.
type SolverOption func(*VincentySolver)

// WithLogger логгер для VincentySolver.
func WithLogger(logger *slog.Logger) SolverOption {
	return func(s *VincentySolver) {
		s.logger = logger
	}
}

// WithMaxIterations устанавливает предельное число итераций.
func WithMaxIterations(n int) SolverOption {
	return func(s *VincentySolver) {
		if n > 0 {
			s.maxIterations = n
		}
	}
}

// WithTolerance устанавливает порог сходимости, радианы.
func WithTolerance(tol float64) SolverOption {
	return func(s *VincentySolver) {
		if tol > 0 {
			s.tolerance = tol
		}
	}
}

// NewVincentySolver создаёт решатель Винсенти.
func NewVincentySolver(opts ...SolverOption) *VincentySolver {
	s := &VincentySolver{
		maxIterations: DefaultMaxIterations,
		tolerance:     DefaultTolerance,
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

var defaultSolver GeodesicSolver = NewVincentySolver()

// DefaultSolver возвращает решатель по умолчанию (Винсенти).
func DefaultSolver() GeodesicSolver {
	return defaultSolver
}

// Inverse решает обратную геодезическую задачу.
func (s *VincentySolver) Inverse(a, b GeoPoint) (InverseResult, error) {
	e := a.Ellipsoid
	f := e.F
	semiMinor := e.B()

	u1 := reducedLatitude(a.Lat, f)
	u2 := reducedLatitude(b.Lat, f)
	sinU1, cosU1 := math.Sincos(u1)
	sinU2, cosU2 := math.Sincos(u2)

	lon := wrapPi(b.Lon - a.Lon)
	lambda := lon

	var (
		sinSigma, cosSigma, sigma float64
		cosSqAlpha, cos2SigmaM    float64
		sinLambda, cosLambda      float64
		delta                     = math.Inf(1)
	)

	converged := false

	for range s.maxIterations {
		sinLambda, cosLambda = math.Sincos(lambda)

		t1 := cosU2 * sinLambda
		t2 := cosU1*sinU2 - sinU1*cosU2*cosLambda
		sinSigma = math.Hypot(t1, t2)

		// Совпадающие точки.
		if sinSigma == 0 {
			return InverseResult{}, nil
		}

		cosSigma = sinU1*sinU2 + cosU1*cosU2*cosLambda
		sigma = math.Atan2(sinSigma, cosSigma)

		sinAlpha := cosU1 * cosU2 * sinLambda / sinSigma
		cosSqAlpha = 1 - sinAlpha*sinAlpha

		// Геодезическая вдоль экватора.
		cos2SigmaM = 0
		if cosSqAlpha != 0 {
			cos2SigmaM = cosSigma - 2*sinU1*sinU2/cosSqAlpha
		}

		c := f / 16 * cosSqAlpha * (4 + f*(4-3*cosSqAlpha))

		prev := lambda
		lambda = lon + (1-c)*f*sinAlpha*
			(sigma+c*sinSigma*(cos2SigmaM+c*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))

		delta = math.Abs(lambda - prev)
		if delta <= s.tolerance {
			converged = true
			break
		}

		if math.Abs(lambda) > math.Pi {
			break
		}
	}

	if !converged {
		s.logger.Warn("vincenty inverse did not converge",
			"lat1", a.LatDeg(), "lon1", a.LonDeg(),
			"lat2", b.LatDeg(), "lon2", b.LonDeg(),
			"iterations", s.maxIterations,
			"delta", delta,
		)

		return InverseResult{}, fmt.Errorf("%w: inverse problem, last lambda change %.3g rad after %d iterations",
			ErrNonConvergence, delta, s.maxIterations)
	}

	uSq := cosSqAlpha * (e.A*e.A - semiMinor*semiMinor) / (semiMinor * semiMinor)
	bigA, bigB := vincentyCoefficients(uSq)
	deltaSigma := vincentyDeltaSigma(bigB, sinSigma, cosSigma, cos2SigmaM)

	return InverseResult{
		Distance: semiMinor * bigA * (sigma - deltaSigma),
		Azimuth1: math.Atan2(cosU2*sinLambda, cosU1*sinU2-sinU1*cosU2*cosLambda),
		Azimuth2: math.Atan2(cosU1*sinLambda, -sinU1*cosU2+cosU1*sinU2*cosLambda),
	}, nil
}

// Direct решает прямую геодезическую задачу.
func (s *VincentySolver) Direct(p GeoPoint, azimuth, distance float64) (DirectResult, error) {
	e := p.Ellipsoid
	f := e.F
	semiMinor := e.B()

	sinAlpha1, cosAlpha1 := math.Sincos(azimuth)

	u1 := reducedLatitude(p.Lat, f)
	sinU1, cosU1 := math.Sincos(u1)

	sigma1 := math.Atan2(sinU1, cosU1*cosAlpha1)
	sinAlpha := cosU1 * sinAlpha1
	cosSqAlpha := 1 - sinAlpha*sinAlpha

	uSq := cosSqAlpha * (e.A*e.A - semiMinor*semiMinor) / (semiMinor * semiMinor)
	bigA, bigB := vincentyCoefficients(uSq)

	base := distance / (semiMinor * bigA)
	sigma := base
	delta := math.Inf(1)
	converged := false

	for range s.maxIterations {
		sinSigma, cosSigma := math.Sincos(sigma)
		cos2SigmaM := math.Cos(2*sigma1 + sigma)

		prev := sigma
		sigma = base + vincentyDeltaSigma(bigB, sinSigma, cosSigma, cos2SigmaM)

		delta = math.Abs(sigma - prev)
		if delta <= s.tolerance {
			converged = true
			break
		}
	}

	if !converged {
		s.logger.Warn("vincenty direct did not converge",
			"lat", p.LatDeg(), "lon", p.LonDeg(),
			"azimuth", azimuth*Rad2Deg, "distance", distance,
			"iterations", s.maxIterations,
		)

		return DirectResult{}, fmt.Errorf("%w: direct problem, last sigma change %.3g rad after %d iterations",
			ErrNonConvergence, delta, s.maxIterations)
	}

	sinSigma, cosSigma := math.Sincos(sigma)
	cos2SigmaM := math.Cos(2*sigma1 + sigma)

	x := sinU1*sinSigma - cosU1*cosSigma*cosAlpha1
	lat := math.Atan2(sinU1*cosSigma+cosU1*sinSigma*cosAlpha1, (1-f)*math.Hypot(sinAlpha, x))
	lambda := math.Atan2(sinSigma*sinAlpha1, cosU1*cosSigma-sinU1*sinSigma*cosAlpha1)

	c := f / 16 * cosSqAlpha * (4 + f*(4-3*cosSqAlpha))
	lon := lambda - (1-c)*f*sinAlpha*
		(sigma+c*sinSigma*(cos2SigmaM+c*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))

	return DirectResult{
		Point: GeoPoint{
			Lat:       lat,
			Lon:       wrapPi(p.Lon + lon),
			Z:         p.Z,
			Ellipsoid: e,
		},
		Azimuth2: math.Atan2(sinAlpha, -x),
	}, nil
}

// reducedLatitude возвращает приведённую широту atan((1-f)·tan φ).
// Форма через atan2 корректна и на полюсах.
func reducedLatitude(lat, f float64) float64 {
	sinLat, cosLat := math.Sincos(lat)
	return math.Atan2((1-f)*sinLat, cosLat)
}

// vincentyCoefficients возвращает коэффициенты A и B разложения длины геодезической.
func vincentyCoefficients(uSq float64) (float64, float64) {
	a := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
	b := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))

	return a, b
}

func vincentyDeltaSigma(b, sinSigma, cosSigma, cos2SigmaM float64) float64 {
	cos2 := cos2SigmaM * cos2SigmaM

	return b * sinSigma * (cos2SigmaM + b/4*(cosSigma*(-1+2*cos2)-
		b/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2)))
}
