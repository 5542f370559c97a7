package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	bb "chessbot/bitboard"
	"chessbot/board"
	"chessbot/book"
	"chessbot/engine"
)

// console reads line commands (a UCI-like dialect) and drives one game.
type console struct {
	out      io.Writer
	logger   *log.Logger
	settings engine.Settings
	newBook  func() (book.Book, error)
	game     *engine.Game
}

func newConsole(out io.Writer, settings engine.Settings, newBook func() (book.Book, error)) *console {
	c := &console{
		out:      out,
		logger:   log.New(out, "", 0),
		settings: settings,
		newBook:  newBook,
	}
	if err := c.reset(board.StartFEN); err != nil {
		c.info("cannot start game: %v", err)
	}
	return c
}

func (c *console) info(format string, args ...any) {
	fmt.Fprintf(c.out, "info string "+format+"\n", args...)
}

func (c *console) reset(fen string) error {
	var bk book.Book
	if c.newBook != nil && c.settings.UseBook {
		var err error
		if bk, err = c.newBook(); err != nil {
			c.info("book unavailable: %v", err)
			bk = nil
		}
	}
	game, err := engine.NewGame(fen, c.settings, bk, c.logger)
	if err != nil {
		return err
	}
	c.game = game
	return nil
}

func (c *console) run(ctx context.Context, in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()
		tokens := strings.Fields(line)
		if len(tokens) == 0 { // ignore blank lines
			continue
		}
		switch strings.ToLower(tokens[0]) {
		case "uci":
			fmt.Fprintln(c.out, "id name chessbot")
			fmt.Fprintln(c.out, "uciok")
		case "isready":
			fmt.Fprintln(c.out, "readyok")
		case "ucinewgame":
			if err := c.reset(board.StartFEN); err != nil {
				c.info("%v", err)
			}
		case "quit":
			return
		case "position":
			c.position(tokens[1:])
		case "go":
			c.goCommand(ctx, tokens[1:])
		case "move":
			if len(tokens) < 2 {
				c.info("Malformed move command")
				continue
			}
			if _, err := c.game.PlayUCI(tokens[1]); err != nil {
				c.info("%v", err)
			}
		case "undo":
			if !c.game.Undo() {
				c.info("Nothing to undo")
			}
		case "d", "board":
			fmt.Fprint(c.out, c.game.Position().String())
			fmt.Fprintln(c.out, "fen", c.game.Position().ToFEN())
		case "status":
			fmt.Fprintln(c.out, "status", c.game.Status())
		case "targets":
			if len(tokens) < 2 {
				c.info("Malformed targets command")
				continue
			}
			sq, err := bb.ParseSquare(tokens[1])
			if err != nil {
				c.info("%v", err)
				continue
			}
			var names []string
			for _, t := range c.game.LegalDestinations(sq) {
				names = append(names, t.String())
			}
			fmt.Fprintln(c.out, "targets", strings.Join(names, " "))
		default:
			c.info("Unknown command: %s", line)
		}
	}
}

// position handles "position startpos|fen <fen> [moves m1 m2 ...]".
func (c *console) position(args []string) {
	if len(args) == 0 {
		c.info("Malformed position command")
		return
	}
	fen := board.StartFEN
	rest := args[1:]
	switch strings.ToLower(args[0]) {
	case "startpos":
	case "fen":
		var fields []string
		for len(rest) > 0 && strings.ToLower(rest[0]) != "moves" {
			fields = append(fields, rest[0])
			rest = rest[1:]
		}
		if len(fields) == 0 {
			c.info("Invalid fen position")
			return
		}
		fen = strings.Join(fields, " ")
	default:
		c.info("Invalid position subcommand")
		return
	}
	if err := c.reset(fen); err != nil {
		c.info("%v", err)
		return
	}
	if len(rest) == 0 || strings.ToLower(rest[0]) != "moves" {
		return
	}
	for _, mv := range rest[1:] {
		if _, err := c.game.PlayUCI(strings.ToLower(mv)); err != nil {
			c.info("Move %s not played: %v", mv, err)
			return
		}
	}
}

// goCommand searches the current position. "depth N" fixes the depth, a clock
// (wtime/btime/winc/binc) or "movetime" bounds iterative deepening, and no
// option at all uses the configured settings. Book moves come first.
func (c *console) goCommand(ctx context.Context, args []string) {
	pos := c.game.Position()
	if c.game.Status() != board.Ongoing {
		fmt.Fprintln(c.out, "bestmove (none)")
		return
	}

	var clocks [2]engine.Clock
	depth, moveTime := 0, -1
	for i := 0; i < len(args); i++ {
		opt := strings.ToLower(args[i])
		if opt == "infinite" {
			continue
		}
		if i+1 >= len(args) {
			c.info("Malformed go command option %s", opt)
			break
		}
		v, err := strconv.Atoi(args[i+1])
		if err != nil {
			c.info("Malformed go command option; could not convert %s", opt)
			i++
			continue
		}
		i++
		switch opt {
		case "wtime":
			clocks[board.White].Remaining = v
		case "btime":
			clocks[board.Black].Remaining = v
		case "winc":
			clocks[board.White].Increment = v
		case "binc":
			clocks[board.Black].Increment = v
		case "depth":
			depth = v
		case "movetime":
			moveTime = v
		default:
			c.info("Unknown go subcommand %s", opt)
		}
	}

	if m, ok := c.game.BookMove(); ok {
		fmt.Fprintln(c.out, "bestmove", m)
		return
	}

	clock := clocks[pos.SideToMove()]
	var m board.Move
	switch {
	case depth > 0:
		m = c.game.Searcher().Search(pos, depth).Move
	case moveTime >= 0:
		m = c.game.Searcher().IterativeDeepening(ctx, pos, time.Duration(moveTime)*time.Millisecond).Move
	case clock.Remaining > 0:
		m = c.game.Searcher().IterativeDeepening(ctx, pos, clock.Budget(pos)).Move
	default:
		var err error
		if m, err = c.game.GenerateBotMove(ctx); err != nil {
			c.info("%v", err)
		}
	}
	if m.IsNull() {
		fmt.Fprintln(c.out, "bestmove (none)")
		return
	}
	fmt.Fprintln(c.out, "bestmove", m)
}
