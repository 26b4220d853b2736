package app

import (
	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/vtext/internal/config"
	"github.com/kobzarvs/vtext/internal/logger"
	"github.com/kobzarvs/vtext/internal/session"
)

// App is the top-level runtime for the interactive editor.
type App struct {
	args []string
}

func New(args []string) *App {
	return &App{args: args}
}

func (a *App) Run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Editor.Debug); err != nil {
		return err
	}
	defer logger.Close()

	v, err := NewView(cfg, openSession())
	if err != nil {
		return err
	}
	if len(a.args) > 0 {
		if err := v.Open(a.args[0]); err != nil {
			return err
		}
	}

	s, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	s.EnableMouse()
	defer s.Fini()

	return loop(s, v)
}

func loop(s tcell.Screen, v *View) error {
	defer v.Close()
	v.Render(s)
	for {
		switch ev := s.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventKey:
			if v.HandleKey(ev) {
				return nil
			}
		case *tcell.EventMouse:
			v.HandleMouse(ev)
		case *tcell.EventResize:
			s.Sync()
		}
		v.Render(s)
	}
}

func openSession() *session.Manager {
	path, err := session.DefaultPath()
	if err != nil {
		logger.Warn("no session path", "error", err)
		return nil
	}
	sess, err := session.NewManager(path)
	if err != nil {
		logger.Warn("session unavailable", "path", path, "error", err)
		return nil
	}
	return sess
}
