package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zjrosen/xshell/internal/app"
	"github.com/zjrosen/xshell/internal/config"
	"github.com/zjrosen/xshell/internal/flags"
	"github.com/zjrosen/xshell/internal/history"
	"github.com/zjrosen/xshell/internal/infrastructure/sqlite"
	"github.com/zjrosen/xshell/internal/log"
	"github.com/zjrosen/xshell/internal/script"
	"github.com/zjrosen/xshell/internal/tracing"
)

var errNoScript = errors.New("translator.script is not set; run 'xshell config set translator.script ./translator.lua' or pass --script")

// runtime owns everything a compiling command needs and closes it in reverse.
type runtime struct {
	app        *app.App
	translator *script.Translator
	tracing    *tracing.Provider
	db         *sqlite.DB
}

func openRuntime(c config.Config) (*runtime, error) {
	if c.Translator.Script == "" {
		return nil, errNoScript
	}

	rt := &runtime{}
	ok := false
	defer func() {
		if !ok {
			rt.Close()
		}
	}()

	engines, err := app.BuildEngines(c.Highlight)
	if err != nil {
		return nil, err
	}

	tr := c.Tracing
	tr.FilePath = expandHome(tr.FilePath)
	rt.tracing, err = tracing.NewProvider(tr)
	if err != nil {
		return nil, fmt.Errorf("starting tracing: %w", err)
	}

	rt.translator, err = script.Load(expandHome(c.Translator.Script))
	if err != nil {
		return nil, err
	}

	var repo history.Repository
	if c.History.Enabled {
		rt.db, err = sqlite.NewDB(expandHome(c.History.DBPath))
		if err != nil {
			return nil, fmt.Errorf("opening history: %w", err)
		}
		repo = rt.db.CompileRepository()
	}

	rt.app, err = app.New(c.Translator, app.Services{
		Source:   engines.Source,
		Assembly: engines.Assembly,
		Compiler: app.NewPipeline(rt.translator, rt.tracing.Tracer()),
		History:  repo,
		Flags:    flags.New(c.Flags),
		Tracer:   rt.tracing.Tracer(),
	})
	if err != nil {
		return nil, err
	}

	ok = true
	return rt, nil
}

func (r *runtime) Close() {
	if r.app != nil {
		r.app.Close()
	}
	if r.db != nil {
		if err := r.db.Close(); err != nil {
			log.ErrorErr(log.CatStore, "Closing history failed", err)
		}
	}
	if r.translator != nil {
		r.translator.Close()
	}
	if r.tracing != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.tracing.Shutdown(ctx); err != nil {
			log.ErrorErr(log.CatConfig, "Flushing traces failed", err)
		}
	}
}

// openHistory opens the history database for the history commands.
func openHistory(c config.Config) (*sqlite.DB, error) {
	if !c.History.Enabled {
		return nil, errors.New("history is disabled (history.enabled: false)")
	}
	db, err := sqlite.NewDB(expandHome(c.History.DBPath))
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	return db, nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
