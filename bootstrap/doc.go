// Package bootstrap runs a voiceshift command through a uniform lifecycle.
//
// An App starts its registered components, runs configure callbacks and
// hooks, prints a startup summary and then either blocks until a signal
// (Run, used by serve) or executes a finite task (RunTask, used by infer
// and realtime). Components stop in reverse order on the way out.
//
//	app, err := bootstrap.NewApp(cfg)
//	app.RegisterComponent(synthesis.NewComponent(backend, url))
//	err = app.RunTask(ctx, func(ctx context.Context) error {
//	    return convertFiles(ctx)
//	})
package bootstrap
