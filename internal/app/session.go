package app

import (
	"io/fs"

	"github.com/bluepython508/monfari/internal/config"
)

// Session defers opening the backend until a command actually needs it, so
// commands like init or plain --help never take the repository lock.
type Session struct {
	Config     *config.Config
	Migrations fs.FS

	app     *App
	cleanup func()
}

func NewSession(cfg *config.Config, migrations fs.FS) *Session {
	return &Session{Config: cfg, Migrations: migrations}
}

// Open returns the backend, opening it on first use.
func (s *Session) Open() (*App, error) {
	if s.app != nil {
		return s.app, nil
	}
	application, cleanup, err := NewApp(s.Config, s.Migrations)
	if err != nil {
		return nil, err
	}
	s.app = application
	s.cleanup = cleanup
	return s.app, nil
}

func (s *Session) Close() {
	if s.cleanup != nil {
		s.cleanup()
		s.app = nil
		s.cleanup = nil
	}
}
