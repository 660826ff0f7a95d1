package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/numlib/internal/convergence"
	"github.com/san-kum/numlib/internal/experiment"
)

const (
	metadataFile = "metadata.json"
	pathFile     = "path.csv"
	samplesFile  = "samples.csv"
)

type RunType string

const (
	TypeRun   RunType = "run"
	TypeStudy RunType = "study"
)

var ErrNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string    `json:"id"`
	Type        RunType   `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	Kind        string    `json:"kind"`
	Method      string    `json:"method"`
	Target      string    `json:"target"`
	A           float64   `json:"a"`
	B           float64   `json:"b"`
	Y0          float64   `json:"y0,omitempty"`
	N           int       `json:"n,omitempty"`
	Eps         float64   `json:"eps,omitempty"`
	MaxDepth    int       `json:"max_depth,omitempty"`
	Starter     string    `json:"starter,omitempty"`
	Value       float64   `json:"value"`
	Exact       *float64  `json:"exact,omitempty"`
	AbsError    *float64  `json:"abs_error,omitempty"`
	Evaluations int64     `json:"evaluations"`
	Depth       int       `json:"depth,omitempty"`
	ElapsedNs   int64     `json:"elapsed_ns"`
	Levels      int       `json:"levels,omitempty"`
	Order       *float64  `json:"order,omitempty"`
}

func newMetadata(typ RunType, cfg experiment.Config) RunMetadata {
	return RunMetadata{
		ID:        fmt.Sprintf("%s_%s", cfg.Target, uuid.NewString()[:8]),
		Type:      typ,
		Timestamp: time.Now(),
		Kind:      string(cfg.Kind),
		Method:    cfg.Method,
		Target:    cfg.Target,
		A:         cfg.A,
		B:         cfg.B,
		Y0:        cfg.Y0,
		N:         cfg.N,
		Eps:       cfg.Eps,
		MaxDepth:  cfg.MaxDepth,
		Starter:   cfg.Starter,
	}
}

// finite returns nil for values JSON cannot carry.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// SaveResult stores a single run, with its trajectory when one was kept.
func (s *Store) SaveResult(res *experiment.Result) (string, error) {
	meta := newMetadata(TypeRun, res.Config)
	meta.Value = res.Value
	meta.Evaluations = res.Evaluations
	meta.Depth = res.Depth
	meta.ElapsedNs = res.Elapsed.Nanoseconds()
	if res.HasExact {
		meta.Exact = finite(res.Exact)
		meta.AbsError = finite(res.AbsError)
	}

	runDir, err := s.writeMetadata(meta)
	if err != nil {
		return "", err
	}
	if len(res.Xs) == 0 {
		return meta.ID, nil
	}

	rows := make([][]string, len(res.Xs))
	for i := range res.Xs {
		rows[i] = []string{formatFloat(res.Xs[i]), formatFloat(res.Ys[i])}
	}
	if err := writeCSV(filepath.Join(runDir, pathFile), []string{"x", "y"}, rows); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// SaveStudy stores a convergence report and its samples.
func (s *Store) SaveStudy(report *convergence.Report) (string, error) {
	meta := newMetadata(TypeStudy, report.Config)
	meta.Levels = len(report.Samples)
	meta.Order = finite(report.Order)
	var elapsed time.Duration
	for _, sm := range report.Samples {
		meta.Evaluations += sm.Evaluations
		elapsed += sm.Elapsed
	}
	meta.ElapsedNs = elapsed.Nanoseconds()
	if n := len(report.Samples); n > 0 {
		last := report.Samples[n-1]
		meta.Value = last.Value
		meta.AbsError = finite(last.Error)
	}

	runDir, err := s.writeMetadata(meta)
	if err != nil {
		return "", err
	}

	rows := make([][]string, len(report.Samples))
	for i, sm := range report.Samples {
		rows[i] = []string{
			strconv.Itoa(sm.Level),
			strconv.Itoa(sm.N),
			formatFloat(sm.Eps),
			formatFloat(sm.Value),
			formatFloat(sm.Error),
			strconv.FormatInt(sm.Evaluations, 10),
			strconv.Itoa(sm.Depth),
			strconv.FormatInt(sm.Elapsed.Nanoseconds(), 10),
		}
	}
	if err := writeCSV(filepath.Join(runDir, samplesFile), sampleHeader, rows); err != nil {
		return "", err
	}
	return meta.ID, nil
}

var sampleHeader = []string{"level", "n", "eps", "value", "error", "evaluations", "depth", "elapsed_ns"}

func (s *Store) writeMetadata(meta RunMetadata) (string, error) {
	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}
	return runDir, nil
}

func writeCSV(path string, header []string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return file.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns stored runs, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].Timestamp.After(runs[j].Timestamp)
		}
		return runs[i].ID < runs[j].ID
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadPath returns the stored trajectory of an ODE run, or empty slices when
// none was kept.
func (s *Store) LoadPath(runID string) ([]float64, []float64, error) {
	records, err := s.readCSV(runID, pathFile)
	if err != nil {
		return nil, nil, err
	}

	xs := make([]float64, 0, len(records))
	ys := make([]float64, 0, len(records))
	for _, record := range records {
		if len(record) < 2 {
			continue
		}
		x, errX := strconv.ParseFloat(record[0], 64)
		y, errY := strconv.ParseFloat(record[1], 64)
		if errX != nil || errY != nil {
			continue
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	return xs, ys, nil
}

func (s *Store) LoadSamples(runID string) ([]convergence.Sample, error) {
	records, err := s.readCSV(runID, samplesFile)
	if err != nil {
		return nil, err
	}

	samples := make([]convergence.Sample, 0, len(records))
	for i, record := range records {
		if len(record) != len(sampleHeader) {
			return nil, fmt.Errorf("%s row %d: expected %d fields, got %d", runID, i+1, len(sampleHeader), len(record))
		}
		sm, err := parseSample(record)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", runID, i+1, err)
		}
		samples = append(samples, sm)
	}
	return samples, nil
}

func parseSample(record []string) (convergence.Sample, error) {
	var sm convergence.Sample
	var err error
	ints := []*int{&sm.Level, &sm.N}
	for i, dst := range ints {
		if *dst, err = strconv.Atoi(record[i]); err != nil {
			return sm, err
		}
	}
	floats := []*float64{&sm.Eps, &sm.Value, &sm.Error}
	for i, dst := range floats {
		if *dst, err = strconv.ParseFloat(record[2+i], 64); err != nil {
			return sm, err
		}
	}
	if sm.Evaluations, err = strconv.ParseInt(record[5], 10, 64); err != nil {
		return sm, err
	}
	if sm.Depth, err = strconv.Atoi(record[6]); err != nil {
		return sm, err
	}
	ns, err := strconv.ParseInt(record[7], 10, 64)
	if err != nil {
		return sm, err
	}
	sm.Elapsed = time.Duration(ns)
	return sm, nil
}

// readCSV returns the data rows of a run file without its header. A missing
// file yields no rows.
func (s *Store) readCSV(runID, name string) ([][]string, error) {
	if _, err := s.Load(runID); err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, name))
	if err != nil {
		if os.IsNotExist(err) {
			return [][]string{}, nil
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return [][]string{}, nil
	}
	return records[1:], nil
}

// CopyCSV writes the run's tabular data, samples for a study or the path for
// a run, to w.
func (s *Store) CopyCSV(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	name := pathFile
	if meta.Type == TypeStudy {
		name = samplesFile
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, name))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s has no tabular data", runID)
		}
		return err
	}
	defer file.Close()

	_, err = io.Copy(w, file)
	return err
}
