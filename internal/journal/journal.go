// Package journal persists GeoRecoveryRun records on disk, one YAML file per
// run, so resources left by an interrupted run can be found and cleaned up
// later.
package journal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jbweber/geodr/api/v1alpha1"
)

const fileExt = ".yaml"

// ErrNotFound is returned when no record exists for a run name.
var ErrNotFound = errors.New("run not found in journal")

// Store is a directory of run records.
type Store struct {
	dir string
}

// New returns a Store rooted at dir. The directory is created on first Save.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the journal directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes the run record. metadata.generation is left alone: it tracks
// the plan, which does not change while the run progresses. The file is
// replaced atomically so a crash never leaves a truncated record.
func (s *Store) Save(run *v1alpha1.GeoRecoveryRun) error {
	if run.Name == "" {
		return fmt.Errorf("cannot journal a run without metadata.name")
	}

	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create journal directory %s: %w", s.dir, err)
	}

	v1alpha1.SetDefaultAPIVersion(run)

	data, err := yaml.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run %s: %w", run.Name, err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+run.Name+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write run %s: %w", run.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path(run.Name)); err != nil {
		return fmt.Errorf("failed to store run %s: %w", run.Name, err)
	}
	return nil
}

// Load reads one run record.
func (s *Store) Load(name string) (*v1alpha1.GeoRecoveryRun, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to read run %s: %w", name, err)
	}

	var run v1alpha1.GeoRecoveryRun
	if err := yaml.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run %s: %w", name, err)
	}
	return &run, nil
}

// List returns every journaled run, oldest first. A missing directory is an
// empty journal.
func (s *Store) List() ([]*v1alpha1.GeoRecoveryRun, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read journal directory %s: %w", s.dir, err)
	}

	var runs []*v1alpha1.GeoRecoveryRun
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || filepath.Ext(e.Name()) != fileExt {
			continue
		}
		run, err := s.Load(strings.TrimSuffix(e.Name(), fileExt))
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		if runs[i].CreationTimestamp.Equal(runs[j].CreationTimestamp.Time) {
			return runs[i].Name < runs[j].Name
		}
		return runs[i].CreationTimestamp.Before(runs[j].CreationTimestamp.Time)
	})
	return runs, nil
}

// Delete removes a run record. Deleting a missing record is not an error.
func (s *Store) Delete(name string) error {
	if err := os.Remove(s.path(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete run %s: %w", name, err)
	}
	return nil
}

// Exists reports whether a record exists for name.
func (s *Store) Exists(name string) bool {
	_, err := os.Stat(s.path(name))
	return err == nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name)+fileExt)
}
