package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/physiomath/go-physiomath"
	"github.com/physiomath/go-physiomath/internal/assets"
	"github.com/physiomath/go-physiomath/internal/completion"
	"github.com/physiomath/go-physiomath/internal/config"
	"github.com/physiomath/go-physiomath/internal/hints"
	"github.com/physiomath/go-physiomath/internal/mathrender"
)

// run dispatches args (without the program name) and returns the exit code.
func run(ctx context.Context, args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	cmd, rest := args[0], args[1:]
	var err error
	switch cmd {
	case "mine":
		err = runGenerate(ctx, physiomath.ModeMine, rest, env)
	case "article":
		err = runGenerate(ctx, physiomath.ModeArticle, rest, env)
	case "render":
		err = runRender(ctx, rest, env)
	case "serve":
		err = runServe(ctx, rest, env)
	case "doctor":
		return runDoctorCmd(rest, env)
	case "completion":
		err = runCompletion(rest, env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "physiomath %s\n", Version)
		return ExitSuccess
	case "help", "-h", "--help":
		return runHelp(rest, env)
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}

	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err, hints.OSEnv(env.Getenv)))
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error, he hints.Env) string {
	switch {
	case errors.Is(err, physiomath.ErrBrowserConnect):
		return he.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, physiomath.ErrMissingCredential):
		return hints.ForMissingCredential()
	case errors.Is(err, physiomath.ErrConnectionFailure):
		return he.ForConnection()
	case errors.Is(err, physiomath.ErrUnknownModel), errors.Is(err, config.ErrInvalidModel):
		return hints.ForUnknownModel(modelIDs(completion.DefaultModels()))
	case errors.Is(err, physiomath.ErrUnknownMathEngine), errors.Is(err, config.ErrInvalidMathEngine):
		return hints.ForMathEngine(mathrender.EngineNames())
	case errors.Is(err, physiomath.ErrStyleNotFound):
		return hints.ForStyleNotFound([]string{assets.DefaultStyleName, assets.AppStyleName})
	case errors.Is(err, config.ErrConfigNotFound):
		var searched []string
		if dir, derr := os.UserConfigDir(); derr == nil {
			searched = append(searched, filepath.Join(dir, config.AppName, "config.yaml"))
		}
		return hints.ForConfigNotFound(searched)
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	}
	return ""
}

func modelIDs(models []physiomath.Model) []string {
	ids := make([]string, len(models))
	for i, m := range models {
		ids[i] = m.ID
	}
	return ids
}
