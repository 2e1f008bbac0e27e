// Package export преобразует результаты геодезических вычислений в GeoJSON.
package export

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/art-injener/nvector-go/internal/geodesy"
)

// ErrUndefinedPoint — точка не определена (NaN) и не может быть сериализована.
var ErrUndefinedPoint = errors.New("undefined point")

// Ключи свойств объектов GeoJSON.
const (
	propName     = "name"
	propHeight   = "height"
	propLength   = "length"
	propDistance = "distance"
)

// Point преобразует геодезическую точку в orb.Point (долгота, широта в градусах).
func Point(p geodesy.GeoPoint) orb.Point {
	return orb.Point{p.LonDeg(), p.LatDeg()}
}

// LineString преобразует путь в отрезок из двух точек.
func LineString(path geodesy.GeoPath) orb.LineString {
	return orb.LineString{Point(path.A), Point(path.B)}
}

// MultiLineString преобразует трассу пути в набор линий (по сегменту на каждую
// сторону антимеридиана).
func MultiLineString(t *geodesy.Track) orb.MultiLineString {
	if t == nil {
		return nil
	}

	lines := make(orb.MultiLineString, 0, len(t.Segments))
	for _, seg := range t.Segments {
		line := make(orb.LineString, 0, len(seg))
		for _, p := range seg {
			line = append(line, orb.Point{p.Lon, p.Lat})
		}
		lines = append(lines, line)
	}

	return lines
}

// Collection накапливает объекты GeoJSON.
type Collection struct {
	fc *geojson.FeatureCollection
}

// NewCollection создаёт пустую коллекцию.
func NewCollection() *Collection {
	return &Collection{fc: geojson.NewFeatureCollection()}
}

// AddPoint добавляет точку. Неопределённая точка отклоняется.
func (c *Collection) AddPoint(name string, p geodesy.GeoPoint) error {
	if p.IsNaN() {
		return fmt.Errorf("%w: %s", ErrUndefinedPoint, name)
	}

	f := geojson.NewFeature(Point(p))
	f.Properties[propName] = name
	f.Properties[propHeight] = p.Height()

	c.fc.Append(f)

	return nil
}

// AddPath добавляет путь как линию с длиной по большому кругу.
func (c *Collection) AddPath(name string, path geodesy.GeoPath) error {
	length, err := path.TrackDistance(geodesy.MethodGreatCircle)
	if err != nil {
		return err
	}

	f := geojson.NewFeature(LineString(path))
	f.Properties[propName] = name
	f.Properties[propLength] = length

	c.fc.Append(f)

	return nil
}

// AddTrack добавляет трассу пути.
func (c *Collection) AddTrack(name string, t *geodesy.Track) {
	if t == nil {
		return
	}

	f := geojson.NewFeature(MultiLineString(t))
	f.Properties[propName] = name
	f.Properties[propDistance] = t.Length

	c.fc.Append(f)
}

// Len возвращает количество объектов в коллекции.
func (c *Collection) Len() int {
	return len(c.fc.Features)
}

// MarshalJSON сериализует коллекцию в GeoJSON.
func (c *Collection) MarshalJSON() ([]byte, error) {
	return c.fc.MarshalJSON()
}
