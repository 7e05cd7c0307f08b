// Package config loads cilgen's environment and file-based configuration,
// to be overridden in turn by command-line flags (internal/linkcmd).
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"
)

// Env is the environment-variable layer of configuration, parsed with
// struct tags understood by caarlos0/env. It is the lowest-priority
// layer: a file config (File) overrides it, and command-line flags
// override both.
type Env struct {
	ArchiveGlob   string `env:"CILGEN_ARCHIVE_GLOB" envDefault:"*.rlib"`
	ObjectGlob    string `env:"CILGEN_OBJECT_GLOB" envDefault:"*.bc"`
	AOTMode       string `env:"CILGEN_AOT_MODE" envDefault:"none"`
	AbortOnError  bool   `env:"CILGEN_ABORT_ON_ERROR" envDefault:"false"`
	PointerWidth  int    `env:"CILGEN_POINTER_WIDTH" envDefault:"8"`
}

// LoadEnv parses process environment variables into an Env.
func LoadEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("config: parsing environment: %w", err)
	}
	return e, nil
}

// File is the on-disk YAML configuration layer. The CLI reads it from
// cilgen.yaml in the working directory.
type File struct {
	ArchiveGlob  string `yaml:"archive_glob"`
	ObjectGlob   string `yaml:"object_glob"`
	AOTMode      string `yaml:"aot_mode"`
	AbortOnError bool   `yaml:"abort_on_error"`
	PointerWidth int    `yaml:"pointer_width"`
}

// LoadFile reads and parses the YAML config at path. A missing file is not
// an error: it returns the zero File so the caller can merge it as a
// no-op layer.
func LoadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return File{}, nil
		}
		return File{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return f, nil
}

// Merged is the fully resolved configuration, after applying Env then
// File (File wins on every field it sets).
type Merged struct {
	ArchiveGlob  string
	ObjectGlob   string
	AOTMode      string
	AbortOnError bool
	PointerWidth int
}

// Merge combines e and f into a Merged config: f's non-zero fields take
// priority over e's.
func Merge(e Env, f File) Merged {
	m := Merged{
		ArchiveGlob:  e.ArchiveGlob,
		ObjectGlob:   e.ObjectGlob,
		AOTMode:      e.AOTMode,
		AbortOnError: e.AbortOnError,
		PointerWidth: e.PointerWidth,
	}
	if f.ArchiveGlob != "" {
		m.ArchiveGlob = f.ArchiveGlob
	}
	if f.ObjectGlob != "" {
		m.ObjectGlob = f.ObjectGlob
	}
	if f.AOTMode != "" {
		m.AOTMode = f.AOTMode
	}
	if f.PointerWidth != 0 {
		m.PointerWidth = f.PointerWidth
	}
	m.AbortOnError = m.AbortOnError || f.AbortOnError
	return m
}
