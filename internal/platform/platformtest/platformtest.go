// Package platformtest provides in-memory sysfs trees and fakes for tests
// of code that drives platform endpoints.
package platformtest

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"codeberg.org/mutker/rogctl/internal/platform"
	"github.com/spf13/afero"
)

// ErrInjected is returned by writes to paths registered with FailWrites.
var ErrInjected = errors.New("injected write failure")

// Sysfs is an in-memory filesystem with helpers for building control
// endpoints and injecting write failures.
type Sysfs struct {
	afero.Fs

	mu         sync.Mutex
	failWrites map[string]bool
	failOpens  map[string]bool
}

func NewSysfs() *Sysfs {
	return &Sysfs{
		Fs:         afero.NewMemMapFs(),
		failWrites: make(map[string]bool),
		failOpens:  make(map[string]bool),
	}
}

// Add creates an endpoint with initial content.
func (s *Sysfs) Add(path, content string) *Sysfs {
	if err := s.Fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		panic(err)
	}
	if err := afero.WriteFile(s.Fs, path, []byte(content), 0o644); err != nil {
		panic(err)
	}

	return s
}

// AddPState creates the native pstate attribute files.
func (s *Sysfs) AddPState() *Sysfs {
	for _, name := range []string{"min_perf_pct", "max_perf_pct", "no_turbo"} {
		s.Add(filepath.Join(platform.PStateDir, name), "")
	}

	return s
}

// FailWrites makes writes to path fail after a successful open.
func (s *Sysfs) FailWrites(path string) *Sysfs {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWrites[path] = true

	return s
}

// FailOpens makes opening path fail with a permission error.
func (s *Sysfs) FailOpens(path string) *Sysfs {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failOpens[path] = true

	return s
}

// Read returns the current content of path, or "" when missing.
func (s *Sysfs) Read(path string) string {
	data, err := afero.ReadFile(s.Fs, path)
	if err != nil {
		return ""
	}

	return string(data)
}

func (s *Sysfs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	s.mu.Lock()
	failOpen, failWrite := s.failOpens[name], s.failWrites[name]
	s.mu.Unlock()

	if failOpen {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrPermission}
	}

	f, err := s.Fs.OpenFile(name, flag, perm)
	if err != nil || !failWrite {
		return f, err
	}

	return &failingFile{File: f}, nil
}

type failingFile struct {
	afero.File
}

func (f *failingFile) Write([]byte) (int, error) {
	return 0, ErrInjected
}

func (f *failingFile) WriteString(string) (int, error) {
	return 0, ErrInjected
}

// PStateCall records one setter invocation on a FakePState.
type PStateCall struct {
	Setting string
	Value   any
}

// FakePState records setter calls and fails the configured setting.
type FakePState struct {
	Calls  []PStateCall
	FailOn string
}

func (p *FakePState) SetMinPerfPct(pct uint8) error {
	return p.record("min_perf_pct", pct)
}

func (p *FakePState) SetMaxPerfPct(pct uint8) error {
	return p.record("max_perf_pct", pct)
}

func (p *FakePState) SetNoTurbo(noTurbo bool) error {
	return p.record("no_turbo", noTurbo)
}

func (p *FakePState) record(setting string, value any) error {
	p.Calls = append(p.Calls, PStateCall{Setting: setting, Value: value})
	if p.FailOn == setting {
		return &os.PathError{Op: "write", Path: setting, Err: os.ErrInvalid}
	}

	return nil
}

// Settings returns the setter names in call order.
func (p *FakePState) Settings() []string {
	names := make([]string, 0, len(p.Calls))
	for _, c := range p.Calls {
		names = append(names, c.Setting)
	}

	return names
}
