package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nightness/tensorcalc/internal/report"
)

var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata describes one archived computation.
type RunMetadata struct {
	ID          string             `json:"id"`
	Command     string             `json:"command"`
	Timestamp   time.Time          `json:"timestamp"`
	Coordinates []string           `json:"coordinates"`
	Metric      [][]string         `json:"metric,omitempty"`
	Lambda      string             `json:"lambda,omitempty"`
	Status      string             `json:"status,omitempty"`
	Timings     map[string]float64 `json:"timings_ms,omitempty"`
	Tensors     []string           `json:"tensors"`
}

// Run is what gets archived: metadata plus the named component lists.
type Run struct {
	Meta    RunMetadata
	Tensors map[string][]report.TensorComponent
}

// Row is one line of components.csv.
type Row struct {
	Tensor     string `json:"tensor"`
	Indices    []int  `json:"indices"`
	Expression string `json:"expression"`
}

// Save writes run under a fresh id and returns it.
func (s *Store) Save(run *Run) (string, error) {
	meta := run.Meta
	meta.ID = uuid.NewString()
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	meta.Tensors = meta.Tensors[:0:0]
	for name := range run.Tensors {
		meta.Tensors = append(meta.Tensors, name)
	}
	sort.Strings(meta.Tensors)

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "components.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write([]string{"tensor", "indices", "expression"}); err != nil {
		return "", err
	}
	for _, name := range meta.Tensors {
		for _, c := range run.Tensors[name] {
			if err := w.Write([]string{name, formatIndices(c.Indices), c.Expression}); err != nil {
				return "", err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func formatIndices(idx []int) string {
	parts := make([]string, len(idx))
	for i, v := range idx {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, " ")
}

func parseIndices(s string) ([]int, error) {
	fields := strings.Fields(s)
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// List returns every readable run, newest first.
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
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	if err := uuid.Validate(runID); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadComponents(runID string) ([]Row, error) {
	if err := uuid.Validate(runID); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	file, err := os.Open(filepath.Join(s.baseDir, runID, "components.csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(records))
	for i, record := range records {
		if i == 0 {
			continue
		}
		idx, err := parseIndices(record[1])
		if err != nil {
			return nil, fmt.Errorf("components.csv line %d: %w", i+1, err)
		}
		rows = append(rows, Row{Tensor: record[0], Indices: idx, Expression: record[2]})
	}
	return rows, nil
}
