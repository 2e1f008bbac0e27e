package geodesy

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig — некорректная конфигурация.
var ErrInvalidConfig = errors.New("invalid config")

// GeodesicMethod — алгоритм решения геодезических задач на эллипсоиде.
type GeodesicMethod string

const (
	// GeodesicVincenty — итерационный метод Винсенти.
	GeodesicVincenty GeodesicMethod = "vincenty"

	// GeodesicKarney — метод Карни (GeographicLib).
	GeodesicKarney GeodesicMethod = "karney"
)

// Константы по умолчанию для конфигурации.
const (
	// DefaultEllipsoidName эллипсоид по умолчанию.
	DefaultEllipsoidName = "wgs84"

	// DefaultGeodesicMethod алгоритм по умолчанию.
	DefaultGeodesicMethod = GeodesicVincenty
)

// EllipsoidEntry описывает пользовательский эллипсоид.
// Сплюснутость задаётся либо напрямую (f), либо обратной величиной (inverse_flattening).
type EllipsoidEntry struct {
	Name              string  `yaml:"name"`
	A                 float64 `yaml:"a"`
	F                 float64 `yaml:"f"`
	InverseFlattening float64 `yaml:"inverse_flattening"`
}

// Ellipsoid возвращает эллипсоид записи.
func (e EllipsoidEntry) Ellipsoid() (Ellipsoid, error) {
	f := e.F
	if e.InverseFlattening != 0 {
		f = 1 / e.InverseFlattening
	}

	return NewEllipsoid(e.A, f)
}

// GeodesicConfig содержит настройки геодезического решателя.
type GeodesicConfig struct {
	// Method алгоритм: "vincenty" или "karney".
	// По умолчанию: "vincenty".
	Method GeodesicMethod `yaml:"method"`

	// MaxIterations предельное число итераций метода Винсенти.
	// По умолчанию: 200.
	MaxIterations int `yaml:"max_iterations"`

	// Tolerance порог сходимости метода Винсенти, радианы.
	// По умолчанию: 1e-12.
	Tolerance float64 `yaml:"tolerance"`
}

// Config содержит настройки геодезических вычислений.
type Config struct {
	// DefaultEllipsoid имя эллипсоида по умолчанию.
	// По умолчанию: "wgs84".
	DefaultEllipsoid string `yaml:"default_ellipsoid"`

	// Ellipsoids пользовательские эллипсоиды, дополняющие встроенную таблицу.
	Ellipsoids []EllipsoidEntry `yaml:"ellipsoids"`

	// Geodesic настройки решателя.
	Geodesic GeodesicConfig `yaml:"geodesic"`
}

// DefaultConfig возвращает конфигурацию со значениями по умолчанию.
func DefaultConfig() *Config {
	return &Config{
		DefaultEllipsoid: DefaultEllipsoidName,
		Geodesic: GeodesicConfig{
			Method:        DefaultGeodesicMethod,
			MaxIterations: DefaultMaxIterations,
			Tolerance:     DefaultTolerance,
		},
	}
}

// LoadConfig читает конфигурацию из YAML-файла и проверяет её.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig разбирает конфигурацию из YAML и проверяет её.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет и корректирует конфигурацию.
// Возвращает ошибку при некорректных эллипсоидах, неизвестном имени
// эллипсоида по умолчанию или неизвестном алгоритме.
func (c *Config) Validate() error {
	if c.DefaultEllipsoid == "" {
		c.DefaultEllipsoid = DefaultEllipsoidName
	}
	if c.Geodesic.Method == "" {
		c.Geodesic.Method = DefaultGeodesicMethod
	}
	if c.Geodesic.MaxIterations <= 0 {
		c.Geodesic.MaxIterations = DefaultMaxIterations
	}
	if c.Geodesic.Tolerance <= 0 {
		c.Geodesic.Tolerance = DefaultTolerance
	}

	c.Geodesic.Method = GeodesicMethod(strings.ToLower(string(c.Geodesic.Method)))
	switch c.Geodesic.Method {
	case GeodesicVincenty, GeodesicKarney:
	default:
		return fmt.Errorf("%w: %w: geodesic method %q", ErrInvalidConfig, ErrUnknownMethod, c.Geodesic.Method)
	}

	var invalid []string
	for _, entry := range c.Ellipsoids {
		if strings.TrimSpace(entry.Name) == "" {
			invalid = append(invalid, "<unnamed>")
			continue
		}
		if _, err := entry.Ellipsoid(); err != nil {
			invalid = append(invalid, entry.Name)
		}
	}
	if len(invalid) > 0 {
		return fmt.Errorf("%w: %w: %s", ErrInvalidConfig, ErrInvalidEllipsoid, strings.Join(invalid, ", "))
	}

	if _, ok := c.Table().Lookup(c.DefaultEllipsoid); !ok {
		return fmt.Errorf("%w: %w: %q (available: %s)",
			ErrInvalidConfig, ErrUnknownEllipsoid, c.DefaultEllipsoid,
			strings.Join(c.Table().Names(), ", "),
		)
	}

	return nil
}

// Table возвращает таблицу эллипсоидов: встроенную, дополненную пользовательскими.
// Некорректные записи пропускаются (их отклоняет Validate).
func (c *Config) Table() *EllipsoidTable {
	table := StandardEllipsoids()
	for _, entry := range c.Ellipsoids {
		e, err := entry.Ellipsoid()
		if err != nil {
			continue
		}
		table = table.With(entry.Name, e)
	}

	return table
}

// Ellipsoid возвращает эллипсоид по умолчанию.
func (c *Config) Ellipsoid() (Ellipsoid, error) {
	return EllipsoidFromName(c.Table(), c.DefaultEllipsoid)
}

// NewSolver создаёт геодезический решатель по конфигурации.
func NewSolver(cfg GeodesicConfig, logger *slog.Logger) (GeodesicSolver, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch GeodesicMethod(strings.ToLower(string(cfg.Method))) {
	case GeodesicVincenty, "":
		return NewVincentySolver(
			WithMaxIterations(cfg.MaxIterations),
			WithTolerance(cfg.Tolerance),
			WithLogger(logger),
		), nil
	case GeodesicKarney:
		return NewKarneySolver(), nil
	default:
		return nil, fmt.Errorf("%w: geodesic method %q", ErrUnknownMethod, cfg.Method)
	}
}
