package util

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// StdCapture redirects os.Stdout and os.Stderr into pipes until Stop is
// called.
type StdCapture struct {
	savedStdout, savedStderr *os.File
	outReader, outWriter     *os.File
	errReader, errWriter     *os.File
	stdout, stderr           []byte
	done                     chan struct{}
}

func (s *StdCapture) Cleanup() {
	os.Stdout = s.savedStdout
	os.Stderr = s.savedStderr
}

func (s *StdCapture) Stop() {
	if err := s.outWriter.Close(); err != nil {
		panic(err)
	}
	if err := s.errWriter.Close(); err != nil {
		panic(err)
	}
	<-s.done
	<-s.done
	s.Cleanup()
}

func (s *StdCapture) Stdout() []byte {
	return s.stdout
}

func (s *StdCapture) Stderr() []byte {
	return s.stderr
}

// NewStdCapture starts capturing. The pipes are drained concurrently so
// large outputs do not block the writer.
func NewStdCapture() *StdCapture {
	capture := &StdCapture{
		savedStdout: os.Stdout,
		savedStderr: os.Stderr,
		done:        make(chan struct{}, 2),
	}
	var err error
	capture.outReader, capture.outWriter, err = os.Pipe()
	if err != nil {
		panic(err)
	}
	capture.errReader, capture.errWriter, err = os.Pipe()
	if err != nil {
		panic(err)
	}
	os.Stdout = capture.outWriter
	os.Stderr = capture.errWriter
	go drain(capture.outReader, &capture.stdout, capture.done)
	go drain(capture.errReader, &capture.stderr, capture.done)
	return capture
}

func drain(r *os.File, dst *[]byte, done chan<- struct{}) {
	out, err := io.ReadAll(r)
	if err != nil {
		panic(err)
	}
	*dst = out
	done <- struct{}{}
}

// Environment isolates a hitview run: the cache directory and the history
// index live under a temporary directory.
type Environment struct {
	Dir        string
	ConfigFile string
}

func (e Environment) CacheDir() string {
	return filepath.Join(e.Dir, "cache", "hitview")
}

// Args prefixes args with the program name and the environment's
// configuration.
func (e Environment) Args(args ...string) []string {
	return append([]string{"hitview", "--config", e.ConfigFile, "--no-color"}, args...)
}

func NewEnvironment(t *testing.T, maxItems int) Environment {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	env := Environment{
		Dir:        dir,
		ConfigFile: filepath.Join(dir, "hitview.yaml"),
	}
	content := fmt.Sprintf("storage:\n  mode: global\n"+
		"history:\n  maxItems: %d\n"+
		"log:\n  level: error\n"+
		"db:\n  path: %s\n", maxItems, filepath.Join(dir, "hitview.db"))
	if err := os.WriteFile(env.ConfigFile, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}
