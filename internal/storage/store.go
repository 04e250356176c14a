// Package storage records FPS telemetry sessions on disk, one directory per
// session holding metadata.json and fps.csv.
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
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/cellviz/internal/timeutil"
)

const (
	metadataFile = "metadata.json"
	samplesFile  = "fps.csv"
)

// ErrSessionClosed is returned when recording into a finished session.
var ErrSessionClosed = errors.New("storage: session closed")

type Store struct {
	baseDir string
	clock   timeutil.Clock
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, clock: timeutil.RealClock{}}
}

// WithClock replaces the clock used to timestamp sessions and samples.
func (s *Store) WithClock(c timeutil.Clock) *Store {
	s.clock = c
	return s
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type SessionMetadata struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Renderer  string    `json:"renderer"`
	TargetFPS int       `json:"target_fps"`
	Started   time.Time `json:"started"`
	Ended     time.Time `json:"ended"`
	Samples   int       `json:"samples"`
	MeanFPS   float64   `json:"mean_fps"`
	MinFPS    float64   `json:"min_fps"`
	MaxFPS    float64   `json:"max_fps"`
}

// Session appends FPS samples to an open session directory.
type Session struct {
	mu     sync.Mutex
	store  *Store
	dir    string
	meta   SessionMetadata
	file   *os.File
	w      *csv.Writer
	fps    []float64
	closed bool
}

// Start opens a new session directory and writes the CSV header.
func (s *Store) Start(source, renderer string, targetFPS int) (*Session, error) {
	now := s.clock.Now()
	id := fmt.Sprintf("%s_%s_%s", renderer, now.UTC().Format("20060102T150405"), uuid.NewString()[:8])
	dir := filepath.Join(s.baseDir, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	file, err := os.Create(filepath.Join(dir, samplesFile))
	if err != nil {
		return nil, err
	}
	w := csv.NewWriter(file)
	if err := w.Write([]string{"elapsed", "fps"}); err != nil {
		file.Close()
		return nil, err
	}

	sess := &Session{
		store: s,
		dir:   dir,
		file:  file,
		w:     w,
		meta: SessionMetadata{
			ID:        id,
			Source:    source,
			Renderer:  renderer,
			TargetFPS: targetFPS,
			Started:   now,
		},
	}
	if err := sess.writeMetadata(); err != nil {
		file.Close()
		return nil, err
	}
	return sess, nil
}

func (ss *Session) ID() string { return ss.meta.ID }

// Record appends one FPS sample stamped with the time since Start.
func (ss *Session) Record(fps float64) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if ss.closed {
		return ErrSessionClosed
	}

	elapsed := ss.store.clock.Since(ss.meta.Started).Seconds()
	row := []string{
		strconv.FormatFloat(elapsed, 'f', 3, 64),
		strconv.FormatFloat(fps, 'f', 2, 64),
	}
	if err := ss.w.Write(row); err != nil {
		return err
	}
	ss.w.Flush()

	ss.fps = append(ss.fps, fps)
	ss.meta.Samples = len(ss.fps)
	return ss.w.Error()
}

// Close finalizes the metadata. It is idempotent.
func (ss *Session) Close() error {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if ss.closed {
		return nil
	}
	ss.closed = true

	ss.w.Flush()
	if err := ss.w.Error(); err != nil {
		ss.file.Close()
		return err
	}
	if err := ss.file.Close(); err != nil {
		return err
	}

	ss.meta.Ended = ss.store.clock.Now()
	sum := Summarize(ss.fps)
	ss.meta.MeanFPS, ss.meta.MinFPS, ss.meta.MaxFPS = sum.Mean, sum.Min, sum.Max
	return ss.writeMetadata()
}

func (ss *Session) writeMetadata() error {
	f, err := os.Create(filepath.Join(ss.dir, metadataFile))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(ss.meta)
}

// List returns every readable session, oldest first.
func (s *Store) List() ([]SessionMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []SessionMetadata{}, nil
		}
		return nil, err
	}

	sessions := make([]SessionMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		sessions = append(sessions, *meta)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Started.Before(sessions[j].Started)
	})
	return sessions, nil
}

func (s *Store) Load(id string) (*SessionMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta SessionMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadSamples returns the elapsed seconds and FPS values of a session.
// Unparseable rows are skipped.
func (s *Store) LoadSamples(id string) ([]float64, []float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, id, samplesFile))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return []float64{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	fps := make([]float64, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < 2 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		v, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			continue
		}
		times = append(times, t)
		fps = append(fps, v)
	}
	return times, fps, nil
}
