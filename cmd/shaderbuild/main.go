// Command shaderbuild compiles every stage of every Slang shader under a
// source directory into SPIR-V modules.
//
// Usage:
//
//	shaderbuild -root /abs/path/to/bin [options]
//
// Examples:
//
//	shaderbuild -root $PWD/build                      # default layout
//	shaderbuild -root $PWD/build -report -            # print JSON report
//	shaderbuild -root $PWD/build -incremental -trace trace.json
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"shaderbuild/internal/cli"
)

func main() {
	inv, err := cli.ParseInvocation(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			usage()
			os.Exit(cli.ExitSuccess)
		}
		var invErr *cli.InvocationError
		if errors.As(err, &invErr) {
			fmt.Fprintln(os.Stderr, invErr.Message)
			usage()
			os.Exit(invErr.ExitCode)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitInternalError)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	result, execErr := cli.Execute(ctx, inv)
	stop()
	if execErr != nil {
		fmt.Fprintln(os.Stderr, execErr)
	}
	os.Exit(result.ExitCode)
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: shaderbuild -root <abs-dir> [options]\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	fmt.Fprintf(os.Stderr, "  -root dir          build root (required, absolute)\n")
	fmt.Fprintf(os.Stderr, "  -src dir           shader sources (default <root>/../shaders/src)\n")
	fmt.Fprintf(os.Stderr, "  -out dir           artifacts (default <root>/shaders)\n")
	fmt.Fprintf(os.Stderr, "  -compiler path     compiler executable (default <root>/slangc)\n")
	fmt.Fprintf(os.Stderr, "  -target name       compiler target (default spirv)\n")
	fmt.Fprintf(os.Stderr, "  -incremental       skip stages whose artifact is up to date\n")
	fmt.Fprintf(os.Stderr, "  -stale-window dur  staleness tolerance (default 1m0s)\n")
	fmt.Fprintf(os.Stderr, "  -report path       write JSON report ('-' for stdout)\n")
	fmt.Fprintf(os.Stderr, "  -trace path        write build trace\n")
	fmt.Fprintf(os.Stderr, "  -quiet             no progress lines\n")
	fmt.Fprintf(os.Stderr, "  -v                 log compiler output\n")
}
