package storage

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightness/tensorcalc/internal/report"
)

func sampleRun() *Run {
	return &Run{
		Meta: RunMetadata{
			Command:     "christoffel",
			Coordinates: []string{"r", "theta"},
			Metric:      [][]string{{"1", "0"}, {"0", "r^2"}},
			Timings:     map[string]float64{"christoffel": 0.4},
		},
		Tensors: map[string][]report.TensorComponent{
			"christoffel": {
				{Indices: []int{0, 1, 1}, Expression: "-r"},
				{Indices: []int{1, 0, 1}, Expression: "1/r"},
				{Indices: []int{1, 1, 0}, Expression: "1/r"},
			},
		},
	}
}

func TestSaveAndLoad(t *testing.T) {
	s := New(t.TempDir())
	require.NoError(t, s.Init())

	id, err := s.Save(sampleRun())
	require.NoError(t, err)
	assert.NoError(t, uuid.Validate(id))

	meta, err := s.Load(id)
	require.NoError(t, err)
	assert.Equal(t, id, meta.ID)
	assert.Equal(t, "christoffel", meta.Command)
	assert.Equal(t, []string{"christoffel"}, meta.Tensors)
	assert.Equal(t, [][]string{{"1", "0"}, {"0", "r^2"}}, meta.Metric)
	assert.WithinDuration(t, time.Now(), meta.Timestamp, time.Minute)

	rows, err := s.LoadComponents(id)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Row{Tensor: "christoffel", Indices: []int{0, 1, 1}, Expression: "-r"}, rows[0])
}

func TestExpressionsWithCommasSurvive(t *testing.T) {
	s := New(t.TempDir())
	run := &Run{Tensors: map[string][]report.TensorComponent{
		"ricci": {{Indices: []int{0, 0}, Expression: `f(t, "x")`}},
	}}
	id, err := s.Save(run)
	require.NoError(t, err)
	rows, err := s.LoadComponents(id)
	require.NoError(t, err)
	assert.Equal(t, `f(t, "x")`, rows[0].Expression)
}

func TestListNewestFirst(t *testing.T) {
	s := New(t.TempDir())
	older := sampleRun()
	older.Meta.Timestamp = time.Now().Add(-time.Hour)
	first, err := s.Save(older)
	require.NoError(t, err)
	second, err := s.Save(sampleRun())
	require.NoError(t, err)

	runs, err := s.List()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0].ID)
	assert.Equal(t, first, runs[1].ID)
}

func TestListMissingDir(t *testing.T) {
	runs, err := New(t.TempDir() + "/absent").List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestLoadUnknownRun(t *testing.T) {
	s := New(t.TempDir())
	_, err := s.Load(uuid.NewString())
	assert.ErrorIs(t, err, ErrRunNotFound)
	_, err = s.Load("../etc")
	assert.ErrorIs(t, err, ErrRunNotFound)
	_, err = s.LoadComponents(uuid.NewString())
	assert.ErrorIs(t, err, ErrRunNotFound)
}
