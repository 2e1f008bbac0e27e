// Command nvcalc — консольный калькулятор геодезических задач на основе n-векторов.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/art-injener/nvector-go/internal/export"
	"github.com/art-injener/nvector-go/internal/geodesy"
)

const usage = `usage: nvcalc [flags] <command> [args]

commands:
  geo2ecef    lat lon height
  ecef2geo    x y z
  distance    lat1 lon1 lat2 lon2
  destination lat lon azimuth distance
  intersect   latA1 lonA1 latA2 lonA2 latB1 lonB1 latB2 lonB2
  crosstrack  lat1 lon1 lat2 lon2 lat lon
  track       lat1 lon1 lat2 lon2 steps

angles in degrees, distances and heights in metres.
`

var errUsage = errors.New("usage")

// maxTrackSteps ограничивает число участков трассы.
const maxTrackSteps = 100000

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// env — окружение выполнения команды.
type env struct {
	out       io.Writer
	logger    *slog.Logger
	ellipsoid geodesy.Ellipsoid
	solver    geodesy.GeodesicSolver
	geojson   bool
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("nvcalc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	configPath := fs.String("config", "", "path to YAML config")
	ellipsoidName := fs.String("ellipsoid", "", "ellipsoid name (overrides config)")
	method := fs.String("method", "", "geodesic method: vincenty or karney (overrides config)")
	asGeoJSON := fs.Bool("geojson", false, "print GeoJSON instead of text")
	verbose := fs.Bool("v", false, "verbose logging")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg := geodesy.DefaultConfig()
	if *configPath != "" {
		loaded, err := geodesy.LoadConfig(*configPath)
		if err != nil {
			logger.Error("loading config", "path", *configPath, "error", err)
			return 1
		}
		cfg = loaded
	}
	if *ellipsoidName != "" {
		cfg.DefaultEllipsoid = *ellipsoidName
	}
	if *method != "" {
		cfg.Geodesic.Method = geodesy.GeodesicMethod(*method)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		return 1
	}

	ellipsoid, err := cfg.Ellipsoid()
	if err != nil {
		logger.Error("resolving ellipsoid", "error", err)
		return 1
	}

	solver, err := geodesy.NewSolver(cfg.Geodesic, logger)
	if err != nil {
		logger.Error("creating solver", "error", err)
		return 1
	}

	logger.Debug("configuration",
		"ellipsoid", cfg.DefaultEllipsoid,
		"a", ellipsoid.A,
		"f", ellipsoid.F,
		"method", cfg.Geodesic.Method,
	)

	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	e := &env{
		out:       stdout,
		logger:    logger,
		ellipsoid: ellipsoid,
		solver:    solver,
		geojson:   *asGeoJSON,
	}

	if err := e.dispatch(fs.Arg(0), fs.Args()[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "%v\n\n%s", err, usage)
			return 2
		}

		logger.Error("command failed", "command", fs.Arg(0), "error", err)
		return 1
	}

	return 0
}

func (e *env) dispatch(cmd string, args []string) error {
	commands := map[string]struct {
		nargs int
		fn    func([]float64) error
	}{
		"geo2ecef":    {3, e.geoToECEF},
		"ecef2geo":    {3, e.ecefToGeo},
		"distance":    {4, e.distance},
		"destination": {4, e.destination},
		"intersect":   {8, e.intersect},
		"crosstrack":  {6, e.crossTrack},
		"track":       {5, e.track},
	}

	c, ok := commands[cmd]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}

	values, err := parseFloats(args, c.nargs)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", errUsage, cmd, err)
	}

	return c.fn(values)
}

func (e *env) point(lat, lon, height float64) geodesy.GeoPoint {
	return geodesy.NewGeoPoint(lat, lon, -height, e.ellipsoid, true)
}

func (e *env) geoToECEF(v []float64) error {
	p := e.point(v[0], v[1], v[2]).ToECEF().P
	_, err := fmt.Fprintf(e.out, "x=%.6f y=%.6f z=%.6f\n", p.X, p.Y, p.Z)

	return err
}

func (e *env) ecefToGeo(v []float64) error {
	p := geodesy.NewECEFVector(r3.Vec{X: v[0], Y: v[1], Z: v[2]}, e.ellipsoid).ToGeoPoint()
	if e.geojson {
		return e.emit(func(c *export.Collection) error { return c.AddPoint("position", p) })
	}

	_, err := fmt.Fprintf(e.out, "lat=%.8f lon=%.8f height=%.6f\n", p.LatDeg(), p.LonDeg(), p.Height())

	return err
}

func (e *env) distance(v []float64) error {
	a, b := e.point(v[0], v[1], 0), e.point(v[2], v[3], 0)

	s, azA, azB, err := a.DistanceAndAzimuthWith(e.solver, b)
	if err != nil {
		return err
	}

	path, err := geodesy.NewGeoPath(a, b)
	if err != nil {
		return err
	}

	gc, err := path.TrackDistance(geodesy.MethodGreatCircle)
	if err != nil {
		return err
	}

	chord, err := path.TrackDistance(geodesy.MethodEuclidean)
	if err != nil {
		return err
	}

	if e.geojson {
		return e.emit(func(c *export.Collection) error { return c.AddPath("path", path) })
	}

	_, err = fmt.Fprintf(e.out,
		"geodesic=%.6f azimuthA=%.8f azimuthB=%.8f greatcircle=%.6f euclidean=%.6f\n",
		s, azA*geodesy.Rad2Deg, azB*geodesy.Rad2Deg, gc, chord)

	return err
}

func (e *env) destination(v []float64) error {
	start := e.point(v[0], v[1], 0)

	p, az, err := start.DestinationWith(e.solver, v[3], v[2], true)
	if err != nil {
		return err
	}

	if e.geojson {
		return e.emit(func(c *export.Collection) error {
			if err := c.AddPoint("start", start); err != nil {
				return err
			}

			return c.AddPoint("destination", p)
		})
	}

	_, err = fmt.Fprintf(e.out, "lat=%.8f lon=%.8f azimuth=%.8f\n", p.LatDeg(), p.LonDeg(), az)

	return err
}

func (e *env) intersect(v []float64) error {
	pathA, err := geodesy.NewGeoPath(e.point(v[0], v[1], 0), e.point(v[2], v[3], 0))
	if err != nil {
		return err
	}

	pathB, err := geodesy.NewGeoPath(e.point(v[4], v[5], 0), e.point(v[6], v[7], 0))
	if err != nil {
		return err
	}

	p := pathA.Intersection(pathB)
	if p.IsNaN() {
		e.logger.Warn("intersection is undefined: paths lie on the same great circle")
	}

	if e.geojson {
		return e.emit(func(c *export.Collection) error { return c.AddPoint("intersection", p) })
	}

	_, err = fmt.Fprintf(e.out, "lat=%.8f lon=%.8f\n", p.LatDeg(), p.LonDeg())

	return err
}

func (e *env) crossTrack(v []float64) error {
	path, err := geodesy.NewGeoPath(e.point(v[0], v[1], 0), e.point(v[2], v[3], 0))
	if err != nil {
		return err
	}

	p := e.point(v[4], v[5], 0)

	gc, err := path.CrossTrackDistance(p, geodesy.MethodGreatCircle)
	if err != nil {
		return err
	}

	chord, err := path.CrossTrackDistance(p, geodesy.MethodEuclidean)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(e.out, "greatcircle=%.6f euclidean=%.6f\n", gc, chord)

	return err
}

func (e *env) track(v []float64) error {
	path, err := geodesy.NewGeoPath(e.point(v[0], v[1], 0), e.point(v[2], v[3], 0))
	if err != nil {
		return err
	}

	steps, err := trackSteps(v[4])
	if err != nil {
		return err
	}

	tr, err := path.Track(steps)
	if err != nil {
		return err
	}

	if e.geojson {
		return e.emit(func(c *export.Collection) error {
			c.AddTrack("track", tr)
			return nil
		})
	}

	for i, seg := range tr.Segments {
		for _, p := range seg {
			if _, err := fmt.Fprintf(e.out, "%d lat=%.8f lon=%.8f distance=%.3f\n", i, p.Lat, p.Lon, p.Distance); err != nil {
				return err
			}
		}
	}

	return nil
}

// emit печатает коллекцию GeoJSON, заполненную функцией fill.
func (e *env) emit(fill func(*export.Collection) error) error {
	c := export.NewCollection()
	if err := fill(c); err != nil {
		return err
	}

	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encoding geojson: %w", err)
	}

	_, err = fmt.Fprintln(e.out, string(data))

	return err
}

// trackSteps проверяет, что число участков — целое, по модулю не больше maxTrackSteps.
// Неположительные значения отклоняет сама трасса.
func trackSteps(v float64) (int, error) {
	if v != math.Trunc(v) || math.Abs(v) > maxTrackSteps {
		return 0, fmt.Errorf("%w: track: steps must be an integer of magnitude at most %d, got %v", errUsage, maxTrackSteps, v)
	}

	return int(v), nil
}

func parseFloats(args []string, n int) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("expected %d arguments, got %d", n, len(args))
	}

	out := make([]float64, n)
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out[i] = v
	}

	return out, nil
}
