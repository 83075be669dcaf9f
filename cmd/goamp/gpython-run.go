package main

import (
	"time"

	"github.com/2x3systems/goamp/pyamp"
	"github.com/go-python/gpython/py"
	"github.com/go-python/gpython/repl"
	"github.com/go-python/gpython/repl/cli"
	"github.com/plan-systems/klog"

	_ "github.com/go-python/gpython/stdlib"
)

const kREPLStartup = `
import _pyamp
print("_pyamp", _pyamp.LIB_VERSION)
`

// go_gpython runs the script at pathname, or an interactive session with _pyamp loaded
// when pathname is empty.
func go_gpython(pathname string) {
	ctx := py.NewContext(py.DefaultContextOpts())

	var err error
	if pathname == "" {
		err = runREPL(ctx)
	} else {
		err = runScriptFile(ctx, pathname)
	}

	ctx.Close()
	<-ctx.Done()

	if err != nil {
		py.TracebackDump(err)
		klog.Fatalf("goamp -py: %v", err)
	}
}

func runREPL(ctx py.Context) error {
	replCtx := repl.New(ctx)
	if _, err := pyamp.RunScript(ctx, kREPLStartup, "<startup>", replCtx.Module); err != nil {
		return err
	}
	cli.RunREPL(replCtx)
	return nil
}

func runScriptFile(ctx py.Context, pathname string) error {
	klog.V(1).Infof("running %s", pathname)
	startTime := time.Now()
	if _, err := py.RunFile(ctx, pathname, py.CompileOpts{}, nil); err != nil {
		return err
	}
	klog.V(1).Infof("%s finished in %v", pathname, time.Since(startTime))
	return nil
}
