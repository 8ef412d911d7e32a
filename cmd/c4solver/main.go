// Command c4solver reads Connect Four positions from standard input, one
// per line, and writes the game-theoretic score of each to standard
// output. See connect4.Solver for the algorithm and SPEC_FULL.md for the
// full external interface this binary implements.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/thekrainbow-style/c4solver/analytics"
	"github.com/thekrainbow-style/c4solver/connect4"
	"github.com/thekrainbow-style/c4solver/connect4config"
)

func main() {
	cfg, err := connect4config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "c4solver: loading config: %v\n", err)
		os.Exit(1)
	}

	var (
		weak          = pflag.BoolP("weak", "w", cfg.WeakSolveDefault, "report only the sign of the score")
		analyticsOn   = pflag.Bool("analytics", cfg.AnalyticsEnabled, "serve a live analytics HTTP/websocket feed")
		analyticsAddr = pflag.String("analytics-addr", cfg.AnalyticsAddr, "address for the analytics server")
		logLevel      = pflag.String("log-level", cfg.LogLevel, "zerolog level: debug, info, warn, error")
	)
	pflag.Parse()

	configureLogging(*logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		cancel()
	}()

	solver := connect4.NewSolver()

	if *analyticsOn {
		hub := analytics.NewHub()
		go hub.Run(ctx.Done())

		solver.Observer = func(e connect4.SolveEvent) {
			hub.Publish(e)
			hub.SetTTStats(solver.TTStats())
		}

		srv := analytics.NewServer(hub)
		go func() {
			if err := srv.ListenAndServe(*analyticsAddr); err != nil {
				log.Error().Err(err).Msg("analytics server stopped")
			}
		}()
	}

	run(os.Stdin, os.Stdout, os.Stderr, solver, *weak)
}

func configureLogging(level string) {
	zerolog.TimeFieldFormat = time.RFC3339
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}

// run implements the line-oriented protocol: one position per input line,
// one result (or a blank line, on invalid input) per output line, and
// exactly one diagnostic to stderr per invalid line. It never returns an
// error itself — a malformed line is reported and skipped, matching the
// reference driver this is grounded on.
func run(stdin *os.File, stdout, stderr *os.File, solver *connect4.Solver, weak bool) {
	scanner := bufio.NewScanner(stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	writer := bufio.NewWriter(stdout)
	defer writer.Flush()

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		result, err := solver.SolveLine(line, weak)
		if err != nil {
			if invalid, ok := err.(*connect4.InvalidMoveError); ok {
				fmt.Fprintf(stderr, "Line %d: Invalid move %d %q\n", lineNo, invalid.Index+1, invalid.Line)
			} else {
				log.Error().Err(err).Int("line", lineNo).Msg("unexpected solve error")
			}
			fmt.Fprintln(writer)
			continue
		}

		fmt.Fprintf(writer, "%s %d %d %d\n", result.Line, result.Score, result.Nodes, result.Microseconds)
		log.Debug().Str("line", result.Line).Int("score", result.Score).Uint64("nodes", result.Nodes).Msg("solved")
	}

	if err := scanner.Err(); err != nil {
		log.Error().Err(err).Msg("reading standard input")
	}
}
