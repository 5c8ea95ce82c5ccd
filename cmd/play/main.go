// cmd/play/main.go
//
// Terminal client: plays one Minimal Match board on stdin/stdout and
// submits finished games to the leaderboard service.
//
// Commands:
//
//	<n>      flip tile n (0-based)
//	r        reset the board
//	lb       show the leaderboard
//	q        quit
//
// When a board is finished the client asks whether to submit the score.
// Answering n leaves the finished board up without submitting; -no-submit
// skips the question and never submits.
//
// Flags override BACKEND_URL / LOG_LEVEL from the environment.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/minimal-match/internal/config"
	"github.com/robalobadob/minimal-match/internal/deck"
	"github.com/robalobadob/minimal-match/internal/game"
	"github.com/robalobadob/minimal-match/internal/leaderboard"
	"github.com/robalobadob/minimal-match/internal/session"
)

func main() {
	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	backend := flag.String("backend", cfg.BackendURL, "leaderboard service base URL")
	name := flag.String("name", "", "player name used when submitting (prompted if empty)")
	seed := flag.Uint64("seed", 0, "deck seed (0 = random)")
	alt := flag.Bool("alt-timing", false, "use the 300ms/600ms settle delays")
	noSubmit := flag.Bool("no-submit", false, "never submit finished games")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	p := &player{
		in:       bufio.NewScanner(os.Stdin),
		out:      os.Stdout,
		client:   leaderboard.NewClient(*backend),
		name:     *name,
		noSubmit: *noSubmit,
		done:     make(chan game.Snapshot, 1),
	}

	opts := []session.Option{
		session.WithSubmitter(p.client),
		session.WithOnChange(p.render),
		session.WithOnComplete(func(s game.Snapshot) { p.done <- s }),
	}
	if *seed != 0 {
		opts = append(opts, session.WithRand(deck.NewSource(*seed)))
	}
	if *alt {
		opts = append(opts, session.WithTiming(game.AltTiming))
	}

	c, err := session.New(deck.DefaultSymbols(), opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start session")
	}
	p.ctrl = c
	defer func() {
		c.Close()
		c.Wait()
	}()

	p.run(context.Background())
}

// player is the stdin/stdout front end around one Controller.
type player struct {
	mu       sync.Mutex // serializes writes to out
	in       *bufio.Scanner
	out      io.Writer
	ctrl     *session.Controller
	client   *leaderboard.Client
	name     string
	noSubmit bool
	done     chan game.Snapshot
}

func (p *player) run(ctx context.Context) {
	p.render(p.ctrl.Snapshot())
	lines := make(chan string)
	go func() {
		defer close(lines)
		for p.in.Scan() {
			lines <- strings.TrimSpace(p.in.Text())
		}
	}()

	for {
		select {
		case snap := <-p.done:
			p.printf("\nNice! You finished. Time: %s · Moves: %d\n", leaderboard.FormatSeconds(snap.ElapsedMs), snap.Moves)
			if p.noSubmit {
				p.printf("Press r for a new board.\n")
				continue
			}
			next := func() (string, bool) {
				l, ok := <-lines
				return l, ok
			}
			name, submit := askSubmit(p.printf, next, p.name)
			if !submit {
				p.printf("Score not submitted. Press r for a new board.\n")
				continue
			}
			if _, err := p.ctrl.Finalize(ctx, name); err != nil {
				log.Warn().Err(err).Msg("finalize")
			}
			p.render(p.ctrl.Snapshot())

		case line, ok := <-lines:
			if !ok {
				return
			}
			switch line {
			case "":
			case "q", "quit":
				return
			case "r", "reset":
				if err := p.ctrl.Reset(); err != nil {
					log.Error().Err(err).Msg("reset")
				}
				p.render(p.ctrl.Snapshot())
			case "lb", "leaderboard":
				p.showLeaderboard(ctx)
			default:
				i, err := strconv.Atoi(line)
				if err != nil {
					p.printf("unknown command %q\n", line)
					continue
				}
				if res := p.ctrl.Flip(i); res == game.FlipIgnored {
					p.printf("tile %d can't be flipped right now\n", i)
				}
			}
		}
	}
}

// askSubmit runs the completion prompt. It returns the name to submit under
// and false if the player declined or input ended.
func askSubmit(printf func(string, ...any), next func() (string, bool), preset string) (string, bool) {
	printf("Submit your score? [Y/n] ")
	answer, ok := next()
	if !ok {
		return "", false
	}
	switch strings.ToLower(answer) {
	case "n", "no":
		return "", false
	}
	if preset != "" {
		return preset, true
	}
	printf("Your name: ")
	name, ok := next()
	if !ok {
		return "", false
	}
	return name, true
}

func (p *player) showLeaderboard(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = leaderboard.LoadingView().Render(p.out)
	v := leaderboard.NewView(p.client.FetchOrEmpty(ctx))
	_ = v.Render(p.out)
}

func (p *player) printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format, args...)
}

// render draws the board as a square-ish grid; face-down tiles show their index.
func (p *player) render(s game.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	renderBoard(p.out, s)
}

func renderBoard(w io.Writer, s game.Snapshot) {
	cols := gridColumns(len(s.Tiles))
	fmt.Fprintf(w, "\nTime: %s  Moves: %d\n", leaderboard.FormatSeconds(s.ElapsedMs), s.Moves)
	for _, c := range s.Cards() {
		cell := fmt.Sprintf("%2d", c.Index)
		switch {
		case c.Matched:
			cell = "[" + string(c.Value) + "]"
		case c.Flipped:
			cell = " " + string(c.Value) + " "
		default:
			cell = "(" + cell + ")"
		}
		fmt.Fprintf(w, "%-6s", cell)
		if (c.Index+1)%cols == 0 {
			fmt.Fprintln(w)
		}
	}
	if len(s.Tiles)%cols != 0 {
		fmt.Fprintln(w)
	}
}

// gridColumns picks the smallest column count that makes a square or wider grid.
func gridColumns(n int) int {
	cols := 1
	for cols*cols < n {
		cols++
	}
	return cols
}
