// Package config is the named-setting store behind the overlay: defaults,
// an optional config file, PADOVERLAY_* environment variables and
// command-line flags, layered by viper.
package config

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/soar/padoverlay/backend/internal/logging"
	"github.com/soar/padoverlay/backend/internal/skin"
)

var log = logging.For("config")

// ErrUnknownSetting is returned by Set for names that are not settings.
var ErrUnknownSetting = errors.New("unknown setting")

// Store is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	v         *viper.Viper
	defaults  map[string]any
	listeners []func(key string)
	warned    map[string]bool
}

func New() *Store {
	v := viper.New()
	s := &Store{
		v:        v,
		defaults: defaults(),
		warned:   make(map[string]bool),
	}
	for k, d := range s.defaults {
		v.SetDefault(k, d)
	}
	v.SetEnvPrefix("padoverlay")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return s
}

// Flags returns the command-line flags understood by BindFlags.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("padoverlay", pflag.ContinueOnError)
	fs.StringP("config", "c", "", "config file (default: padoverlay.toml in the data dir or working dir)")
	fs.String("addr", ":8080", "HTTP listen address")
	fs.String("data-dir", "data", "folder holding skins/ and the saved position")
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.Int("pad", -1, "controller slot: -1 auto, 0-3 fixed")
	fs.String("skin", skin.Default, "skin folder: xbox / ps4 / ps5")
	return fs
}

// BindFlags makes explicitly set flags override the other layers.
func (s *Store) BindFlags(fs *pflag.FlagSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, flag := range map[string]string{
		KeyAddr:     "addr",
		KeyDataDir:  "data-dir",
		KeyLogLevel: "log-level",
		KeyPad:      "pad",
		KeySkin:     "skin",
	} {
		if err := s.v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}
	return nil
}

// ReadFile loads the config file. With an empty path it looks for
// padoverlay.{toml,yaml,json} in the data dir and the working dir; not
// finding one is fine.
func (s *Store) ReadFile(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if path != "" {
		s.v.SetConfigFile(path)
	} else {
		s.v.SetConfigName("padoverlay")
		s.v.AddConfigPath(s.v.GetString(KeyDataDir))
		s.v.AddConfigPath(".")
	}
	if err := s.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	log.Infof("using config file %s", s.v.ConfigFileUsed())
	return nil
}

// Watch reloads the config file when it changes on disk, until ctx is
// done. Reloads hold the store lock, so a frame never reads viper while the
// file is being parsed.
func (s *Store) Watch(ctx context.Context) error {
	s.mu.RLock()
	used := s.v.ConfigFileUsed()
	s.mu.RUnlock()
	if used == "" {
		return nil
	}
	path, err := filepath.Abs(used)
	if err != nil {
		return fmt.Errorf("watch config: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch config: %w", err)
	}
	defer w.Close()
	// Editors replace files on save, so watch the folder.
	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch config: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				s.reload(path)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warnf("config watcher: %v", err)
		}
	}
}

func (s *Store) reload(path string) {
	s.mu.Lock()
	err := s.v.ReadInConfig()
	if err == nil {
		s.warned = make(map[string]bool)
	}
	s.mu.Unlock()
	if err != nil {
		log.Warnf("reload config: %v", err)
		return
	}
	log.Infof("config file changed: %s", path)
	s.notify("")
}

// OnChange registers fn to run after a setting changes. key is empty when
// the whole config file was reloaded.
func (s *Store) OnChange(fn func(key string)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Store) notify(key string) {
	s.mu.RLock()
	ls := append([]func(string){}, s.listeners...)
	s.mu.RUnlock()
	for _, fn := range ls {
		fn(key)
	}
}

// Known reports whether name is a setting.
func (s *Store) Known(name string) bool {
	_, ok := s.defaults[strings.ToLower(name)]
	return ok
}

// Get returns a setting's current value.
func (s *Store) Get(name string) (any, error) {
	name = strings.ToLower(name)
	if !s.Known(name) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSetting, name)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v.Get(name), nil
}

// Set overrides a setting at runtime. The value is stored as given and
// converted when read, so a malformed value reads as the default.
func (s *Store) Set(name string, value any) error {
	name = strings.ToLower(name)
	if !s.Known(name) {
		return fmt.Errorf("%w: %s", ErrUnknownSetting, name)
	}
	s.mu.Lock()
	s.set(name, value)
	s.mu.Unlock()
	s.notify(name)
	return nil
}

// set expects s.mu to be held.
func (s *Store) set(name string, value any) {
	s.v.Set(name, value)
	delete(s.warned, name)
}

// The typed getters below expect s.mu to be held.

func (s *Store) fallback(key string, err error) {
	if !s.warned[key] {
		s.warned[key] = true
		log.Warnf("setting %s: %v; using default %v", key, err, s.defaults[key])
	}
}

func (s *Store) float(key string) float64 {
	f, err := cast.ToFloat64E(s.v.Get(key))
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		if err == nil {
			err = fmt.Errorf("not a finite number: %v", f)
		}
		s.fallback(key, err)
		return cast.ToFloat64(s.defaults[key])
	}
	return f
}

func (s *Store) bool(key string) bool {
	b, err := cast.ToBoolE(s.v.Get(key))
	if err != nil {
		s.fallback(key, err)
		return cast.ToBool(s.defaults[key])
	}
	return b
}

func (s *Store) int(key string) int {
	i, err := cast.ToIntE(s.v.Get(key))
	if err != nil {
		s.fallback(key, err)
		return cast.ToInt(s.defaults[key])
	}
	return i
}

func (s *Store) string(key string) string {
	str, err := cast.ToStringE(s.v.Get(key))
	if err != nil {
		s.fallback(key, err)
		return cast.ToString(s.defaults[key])
	}
	return str
}

func (s *Store) duration(key string) time.Duration {
	d, err := cast.ToDurationE(s.v.Get(key))
	if err != nil || d < 0 {
		if err == nil {
			err = fmt.Errorf("negative duration %v", d)
		}
		s.fallback(key, err)
		return cast.ToDuration(s.defaults[key])
	}
	return d
}

// Float, Bool, Int and String read a single setting with the same
// fallback rules as Snapshot.

func (s *Store) Float(key string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.float(key)
}

func (s *Store) Bool(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bool(key)
}

func (s *Store) Int(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.int(key)
}

func (s *Store) String(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.string(key)
}

func (s *Store) Duration(key string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration(key)
}
