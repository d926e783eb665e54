package config

import "os"

// OSInterface abstracts the filesystem/environment operations Parse needs,
// so tests can substitute an in-memory OS without touching the real one.
type OSInterface interface {
	Getenv(key string) string
	Environ() []string
	Stat(name string) (os.FileInfo, error)
	ReadFile(filename string) ([]byte, error)
}

var defaultOS = OSInterface(&defaultOSImpl{})

type defaultOSImpl struct{}

func (*defaultOSImpl) Getenv(key string) string                 { return os.Getenv(key) }
func (*defaultOSImpl) Environ() []string                        { return os.Environ() }
func (*defaultOSImpl) Stat(name string) (os.FileInfo, error)    { return os.Stat(name) }
func (*defaultOSImpl) ReadFile(filename string) ([]byte, error) { return os.ReadFile(filename) }
