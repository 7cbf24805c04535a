package irrigation

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// CropProfile holds the water-use coefficient and the moisture band a crop
// tolerates, in percent.
type CropProfile struct {
	Kc          float64 `yaml:"kc" json:"kc"`
	MinMoisture float64 `yaml:"minMoisture" json:"minMoisture"`
	MaxMoisture float64 `yaml:"maxMoisture" json:"maxMoisture"`
}

func (p CropProfile) validate(name string) error {
	if p.Kc <= 0 {
		return fmt.Errorf("crop %q: kc must be positive", name)
	}
	if p.MinMoisture < 0 || p.MaxMoisture > 100 || p.MinMoisture >= p.MaxMoisture {
		return fmt.Errorf("crop %q: need 0 <= minMoisture < maxMoisture <= 100", name)
	}
	return nil
}

// FallbackCrop is used for any crop name missing from the table.
const FallbackCrop = "wheat"

// DefaultCrops returns a fresh copy of the built-in table.
func DefaultCrops() map[string]CropProfile {
	return map[string]CropProfile{
		"rice":      {Kc: 1.2, MinMoisture: 70, MaxMoisture: 95},
		"wheat":     {Kc: 0.8, MinMoisture: 40, MaxMoisture: 80},
		"sugarcane": {Kc: 1.25, MinMoisture: 60, MaxMoisture: 90},
	}
}

// LoadCrops starts from DefaultCrops and overlays rows read from path.
// The format is picked by extension: .csv, .xlsx or .yaml/.yml.
// An empty path returns the defaults.
func LoadCrops(path string) (map[string]CropProfile, error) {
	crops := DefaultCrops()
	if path == "" {
		return crops, nil
	}

	var (
		rows map[string]CropProfile
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = loadCropsCSV(path)
	case ".xlsx":
		rows, err = loadCropsXLSX(path)
	case ".yaml", ".yml":
		rows, err = loadCropsYAML(path)
	default:
		return nil, fmt.Errorf("crop profiles: unsupported file type %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("crop profiles %s: %w", path, err)
	}

	for name, p := range rows {
		if err := p.validate(name); err != nil {
			return nil, err
		}
		crops[name] = p
	}
	if _, ok := crops[FallbackCrop]; !ok {
		return nil, fmt.Errorf("crop profiles: %q must be present", FallbackCrop)
	}
	return crops, nil
}

func normHeader(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "\uFEFF")
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, "_", "")
	return s
}

// parseTable reads header + rows from either a CSV file or a sheet.
// Columns are matched by alias so hand-edited sheets still load.
func parseTable(head []string, next func() ([]string, error)) (map[string]CropProfile, error) {
	hmap := map[string]int{}
	for i, h := range head {
		hmap[normHeader(h)] = i
	}
	findAny := func(keys ...string) int {
		for _, k := range keys {
			if idx, ok := hmap[normHeader(k)]; ok {
				return idx
			}
		}
		return -1
	}

	cName := findAny("crop", "name", "crop_type")
	cKc := findAny("kc", "crop_coefficient")
	cMin := findAny("min_moisture", "minMoisture", "min")
	cMax := findAny("max_moisture", "maxMoisture", "max")
	if cName == -1 || cKc == -1 || cMin == -1 || cMax == -1 {
		return nil, fmt.Errorf("missing required columns, found %v; need crop, kc, min_moisture, max_moisture", head)
	}

	out := map[string]CropProfile{}
	for line := 2; ; line++ {
		rec, err := next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		get := func(idx int) string {
			if idx >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[idx])
		}
		name := get(cName)
		if name == "" {
			continue
		}
		var p CropProfile
		for _, f := range []struct {
			col int
			dst *float64
		}{{cKc, &p.Kc}, {cMin, &p.MinMoisture}, {cMax, &p.MaxMoisture}} {
			v, err := strconv.ParseFloat(get(f.col), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", line, err)
			}
			*f.dst = v
		}
		out[name] = p
	}
	return out, nil
}

func loadCropsCSV(path string) (map[string]CropProfile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	head, err := cr.Read()
	if err != nil {
		return nil, err
	}
	return parseTable(head, cr.Read)
}

func loadCropsXLSX(path string) (map[string]CropProfile, error) {
	x, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer x.Close()

	sheets := x.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := x.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("empty sheet")
	}
	i := 1
	return parseTable(rows[0], func() ([]string, error) {
		if i >= len(rows) {
			return nil, io.EOF
		}
		i++
		return rows[i-1], nil
	})
}

func loadCropsYAML(path string) (map[string]CropProfile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Crops map[string]CropProfile `yaml:"crops"`
	}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return doc.Crops, nil
}
