package main

import (
	"io"
	"log/slog"

	"github.com/san-kum/ddzoom/internal/config"
	"github.com/san-kum/ddzoom/internal/kernel"
	"github.com/san-kum/ddzoom/internal/session"
	"github.com/san-kum/ddzoom/internal/storage"
)

// newSession builds a session from the config and the --state script.
// Finished recordings go to the catalog when catalog is set. The opengl
// backend needs a window, so everything starts on the cpu and the gui
// swaps it in.
func newSession(c *config.Config, out io.Writer, log *slog.Logger, catalog bool) (*session.Session, error) {
	vs := c.ViewState()
	rs := c.RecordSettings()
	opts := session.Options{
		Width:   c.Width,
		Height:  c.Height,
		View:    &vs,
		Record:  &rs,
		Backend: kernel.NewCPU(c.Workers),
		Out:     out,
		Log:     log,
	}
	if catalog {
		st := storage.New(c.DataDir)
		if err := st.Init(); err != nil {
			return nil, err
		}
		opts.Catalog = st
	}

	sess, err := session.New(opts)
	if err != nil {
		return nil, err
	}
	if statePath != "" {
		if err := sess.Load(statePath); err != nil {
			sess.Close()
			return nil, err
		}
	}
	return sess, nil
}
