// Copyright 2014-2016 The Zurichess Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// uci implements the UCI protocol, described at
// http://wbec-ridderkerk.nl/html/UCIProtocol.html.

package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	. "github.com/corvid-engine/corvid/engine"
)

var errQuit = errors.New("quit")

const maxThreads = 64

// uciLogger outputs search progress in UCI format.
type uciLogger struct {
	start time.Time
	buf   *bytes.Buffer
	write func(string)
}

func newUCILogger(write func(string)) *uciLogger {
	return &uciLogger{buf: &bytes.Buffer{}, write: write}
}

func (ul *uciLogger) BeginSearch() {
	ul.start = time.Now()
	ul.buf.Reset()
}

func (ul *uciLogger) EndSearch() {
	ul.flush()
}

func (ul *uciLogger) PrintPV(stats Stats, score int32, pv []Move) {
	now := time.Now()
	fmt.Fprintf(ul.buf, "info depth %d seldepth %d ", stats.Depth, stats.SelDepth)

	if score > KnownWinScore {
		fmt.Fprintf(ul.buf, "score mate %d ", (MateScore-score+1)/2)
	} else if score < KnownLossScore {
		fmt.Fprintf(ul.buf, "score mate %d ", (MatedScore-score)/2)
	} else {
		fmt.Fprintf(ul.buf, "score cp %d ", score)
	}

	elapsed := uint64(maxDuration(now.Sub(ul.start), time.Microsecond))
	nps := stats.Nodes * uint64(time.Second) / elapsed
	millis := elapsed / uint64(time.Millisecond)
	fmt.Fprintf(ul.buf, "nodes %d time %d nps %d ", stats.Nodes, millis, nps)

	fmt.Fprintf(ul.buf, "pv")
	for _, m := range pv {
		fmt.Fprintf(ul.buf, " %v", m.UCI())
	}
	fmt.Fprintf(ul.buf, "\n")

	ul.flush()
}

// flush writes buf out through the UCI front-end's tee'd writer.
func (ul *uciLogger) flush() {
	ul.write(ul.buf.String())
	ul.buf.Reset()
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}

// UCI implements the protocol dispatcher: it owns the engine, the shared
// time control, and the options that have been set so far.
type UCI struct {
	Engine      *Engine
	timeControl *TimeControl
	log         *zap.SugaredLogger

	threads int

	debug        bool
	debugLogFile *os.File

	// buffer of 1, if empty then the engine is available
	idle chan struct{}
	// buffer of 1, if filled then the engine is pondering
	ponder chan struct{}
	// predicted position hash after 2 moves
	predicted uint64
}

func NewUCI(log *zap.SugaredLogger, cfg config) *UCI {
	uci := &UCI{
		log:     log,
		threads: 1,
		idle:    make(chan struct{}, 1),
		ponder:  make(chan struct{}, 1),
	}
	uci.Engine = NewEngine(nil, newUCILogger(uci.writeOut), Options{})
	uci.applyConfig(cfg)
	return uci
}

// writeOut writes s to stdout and tees it to the debug log, if configured.
func (uci *UCI) writeOut(s string) {
	os.Stdout.WriteString(s)
	uci.logDebug("<", s)
}

func (uci *UCI) logDebug(direction, s string) {
	if uci.debugLogFile == nil {
		return
	}
	for _, line := range strings.Split(strings.TrimRight(s, "\n"), "\n") {
		fmt.Fprintf(uci.debugLogFile, "%s %s\n", direction, line)
	}
}

func clampThreads(n int) int {
	if n < 1 {
		return 1
	}
	if n > maxThreads {
		return maxThreads
	}
	return n
}

// applyConfig seeds option values from a TOML config file, before any
// setoption command is processed.
func (uci *UCI) applyConfig(cfg config) {
	if cfg.Hash > 0 {
		GlobalHashTable = NewHashTable(cfg.Hash)
	}
	if cfg.Threads > 0 {
		uci.threads = clampThreads(cfg.Threads)
	}

	GlobalEvalConfig = NewEvalConfig()
	GlobalEvalConfig.UseNNUE = cfg.UseNNUE
	if cfg.NnueBlend != 0 {
		GlobalEvalConfig.Blend = cfg.NnueBlend
	}
	if cfg.NnueScale != 0 {
		GlobalEvalConfig.Scale = int32(cfg.NnueScale)
	}
	if cfg.EvalFile != "" {
		uci.loadNetwork(cfg.EvalFile, cfg.NnueSCReLU)
	}
}

func (uci *UCI) loadNetwork(path string, screlu bool) {
	f, err := os.Open(path)
	if err != nil {
		uci.log.Errorw("failed to open NNUE file", "path", path, "error", err)
		return
	}
	defer f.Close()

	net, err := LoadNetwork(f)
	if err != nil {
		uci.log.Errorw("failed to load NNUE network", "path", path, "error", err)
		return
	}
	if screlu {
		net.Activation = SCReLU
	}
	GlobalEvalConfig.Network = net
}

var reCmd = regexp.MustCompile(`^[[:word:]]+\b`)

// Execute dispatches a single line of UCI input. A panic raised while
// handling the line is converted into an error so the read loop survives.
func (uci *UCI) Execute(line string) (err error) {
	uci.logDebug(">", line)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic handling %q: %v", line, r)
		}
	}()

	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	cmd := reCmd.FindString(line)
	if cmd == "" {
		return fmt.Errorf("invalid command line")
	}

	// These commands do not require the engine to be idle.
	switch cmd {
	case "isready":
		return uci.isready(line)
	case "quit":
		return errQuit
	case "stop":
		return uci.stop(line)
	case "uci":
		return uci.uci(line)
	case "debug":
		return uci.debugCmd(line)
	case "ponderhit":
		return uci.ponderhit(line)
	case "display":
		return uci.display(line)
	case "perft":
		return uci.perft(line)
	}

	// Make sure the engine is idle before commands that mutate its state.
	uci.idle <- struct{}{}
	<-uci.idle

	switch cmd {
	case "ucinewgame":
		return uci.ucinewgame(line)
	case "position":
		return uci.position(line)
	case "go":
		return uci.goCmd(line)
	case "setoption":
		return uci.setoption(line)
	default:
		return fmt.Errorf("unhandled command %s", cmd)
	}
}

func (uci *UCI) uci(line string) error {
	uci.writeOut(fmt.Sprintf("id name corvid %v\n", buildVersion))
	uci.writeOut("id author The corvid authors\n")
	uci.writeOut("\n")
	uci.writeOut(fmt.Sprintf("option name Hash type spin default %v min 1 max 65536\n", DefaultHashTableSizeMB))
	uci.writeOut("option name Ponder type check default true\n")
	uci.writeOut(fmt.Sprintf("option name Threads type spin default %d min 1 max %d\n", uci.threads, maxThreads))
	uci.writeOut("option name UCI_AnalyseMode type check default false\n")
	uci.writeOut("option name Debug Log File type string default \n")
	uci.writeOut(fmt.Sprintf("option name UseNNUE type check default %v\n", GlobalEvalConfig != nil && GlobalEvalConfig.UseNNUE))
	uci.writeOut("option name EvalFile type string default \n")
	uci.writeOut(fmt.Sprintf("option name NnueBlend type spin default %d min 0 max 100\n", nnueBlendOrDefault()))
	uci.writeOut(fmt.Sprintf("option name NnueScale type spin default %d min 10 max 400\n", nnueScaleOrDefault()))
	uci.writeOut("option name NnueSCReLU type check default false\n")
	uci.writeOut("uciok\n")
	return nil
}

func nnueBlendOrDefault() int {
	if GlobalEvalConfig != nil {
		return GlobalEvalConfig.Blend
	}
	return 2
}

func nnueScaleOrDefault() int32 {
	if GlobalEvalConfig != nil {
		return GlobalEvalConfig.Scale
	}
	return 100
}

func (uci *UCI) isready(line string) error {
	uci.writeOut("readyok\n")
	return nil
}

func (uci *UCI) debugCmd(line string) error {
	args := strings.Fields(line)
	if len(args) < 2 {
		return fmt.Errorf("expected 'debug on' or 'debug off'")
	}
	switch args[1] {
	case "on":
		uci.debug = true
	case "off":
		uci.debug = false
	default:
		return fmt.Errorf("unknown debug argument %s", args[1])
	}
	return nil
}

func (uci *UCI) ucinewgame(line string) error {
	GlobalHashTable.Clear()
	return nil
}

func (uci *UCI) display(line string) error {
	pos := uci.Engine.Position
	uci.writeOut(pos.PrettyPrint())
	uci.writeOut(fmt.Sprintf("fen %s\n", pos.String()))
	uci.writeOut(fmt.Sprintf("hash %x\n", pos.Zobrist()))
	return nil
}

func (uci *UCI) perft(line string) error {
	args := strings.Fields(line)[1:]
	if len(args) == 0 {
		return fmt.Errorf("expected a depth argument for 'perft'")
	}
	depth, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid perft depth %q: %v", args[0], err)
	}
	mode := ""
	if len(args) > 1 {
		mode = args[1]
	}

	pos := uci.Engine.Position
	var total perftCounters
	var moves []Move
	pos.GenerateMoves(All, &moves)
	for _, move := range moves {
		pos.DoMove(move)
		if !pos.IsChecked(pos.SideToMove.Opposite()) {
			n := perftCount(pos, depth-1)
			if mode == "divide" {
				uci.writeOut(fmt.Sprintf("%s: %d\n", move.UCI(), n.nodes))
			}
			total.add(n)
		}
		pos.UndoMove(move)
	}
	if mode == "stats" {
		uci.writeOut(fmt.Sprintf("nodes %d captures %d enpassant %d castles %d promotions %d\n",
			total.nodes, total.captures, total.enpassant, total.castles, total.promotions))
	} else {
		uci.writeOut(fmt.Sprintf("nodes %d\n", total.nodes))
	}
	return nil
}

// perftCounters tallies leaf statistics for the UCI 'perft' command.
type perftCounters struct {
	nodes      uint64
	captures   uint64
	enpassant  uint64
	castles    uint64
	promotions uint64
}

func (c *perftCounters) add(o perftCounters) {
	c.nodes += o.nodes
	c.captures += o.captures
	c.enpassant += o.enpassant
	c.castles += o.castles
	c.promotions += o.promotions
}

// perftCount counts leaf nodes depth plies below pos, used by the UCI
// 'perft' command.
func perftCount(pos *Position, depth int) perftCounters {
	if depth == 0 {
		return perftCounters{nodes: 1}
	}
	var moves []Move
	pos.GenerateMoves(All, &moves)
	var c perftCounters
	for _, move := range moves {
		pos.DoMove(move)
		if !pos.IsChecked(pos.SideToMove.Opposite()) {
			if depth == 1 {
				if move.Capture() != NoPiece {
					c.captures++
				}
				if move.MoveType() == Enpassant {
					c.enpassant++
				}
				if move.MoveType() == Castling {
					c.castles++
				}
				if move.MoveType() == Promotion {
					c.promotions++
				}
			}
			c.add(perftCount(pos, depth-1))
		}
		pos.UndoMove(move)
	}
	return c
}

func (uci *UCI) position(line string) error {
	args := strings.Fields(line)[1:]
	if len(args) == 0 {
		return fmt.Errorf("expected argument for 'position'")
	}

	var pos *Position

	i := 0
	var err error
	switch args[i] {
	case "startpos":
		pos, err = PositionFromFEN(FENStartPos)
		i++
	case "fen":
		for i < len(args) && args[i] != "moves" {
			i++
		}
		pos, err = PositionFromFEN(strings.Join(args[1:i], " "))
	default:
		err = fmt.Errorf("unknown position command: %s", args[0])
	}
	if err != nil {
		return err
	}

	uci.Engine.SetPosition(pos)

	if i < len(args) {
		if args[i] != "moves" {
			return fmt.Errorf("expected 'moves', got '%s'", args[i])
		}
		for _, m := range args[i+1:] {
			uci.Engine.DoMove(uci.Engine.Position.UCIToMove(m))
		}
	}

	return nil
}

var validGoCommands = map[string]bool{
	"searchmoves": true,
	"ponder":      true,
	"wtime":       true,
	"btime":       true,
	"winc":        true,
	"binc":        true,
	"movestogo":   true,
	"depth":       true,
	"nodes":       true,
	"mate":        true,
	"movetime":    true,
	"infinite":    true,
}

func (uci *UCI) goCmd(line string) error {
	// NewTimeControl already defaults to unlimited time and depth 64, which
	// is exactly what "infinite" asks for, so that case needs no action.
	uci.timeControl = NewTimeControl(uci.Engine.Position)
	ponder := false

	args := strings.Fields(line)[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "searchmoves":
			for j := i + 1; j < len(args) && !validGoCommands[args[j]]; j++ {
				i++
			}
		case "ponder":
			ponder = true
		case "infinite":
		case "wtime":
			i++
			t, _ := strconv.Atoi(args[i])
			uci.timeControl.WTime = time.Duration(t) * time.Millisecond
		case "winc":
			i++
			t, _ := strconv.Atoi(args[i])
			uci.timeControl.WInc = time.Duration(t) * time.Millisecond
		case "btime":
			i++
			t, _ := strconv.Atoi(args[i])
			uci.timeControl.BTime = time.Duration(t) * time.Millisecond
		case "binc":
			i++
			t, _ := strconv.Atoi(args[i])
			uci.timeControl.BInc = time.Duration(t) * time.Millisecond
		case "movestogo":
			i++
			t, _ := strconv.Atoi(args[i])
			uci.timeControl.MovesToGo = t
		case "movetime":
			i++
			t, _ := strconv.Atoi(args[i])
			uci.timeControl.MoveTime = time.Duration(t) * time.Millisecond
		case "depth":
			i++
			d, _ := strconv.Atoi(args[i])
			uci.timeControl.Depth = d
		case "nodes", "mate":
			uci.log.Infow("go argument not implemented, ignoring", "argument", args[i])
			i++
		default:
			return fmt.Errorf("invalid go command %s", args[i])
		}
	}

	if ponder {
		// Next write to uci.ponder will block until ponderhit or stop.
		uci.ponder <- struct{}{}
	}

	uci.timeControl.Start(ponder)
	uci.idle <- struct{}{}
	go uci.play()
	return nil
}

func (uci *UCI) ponderhit(line string) error {
	uci.timeControl.PonderHit()
	<-uci.ponder
	return nil
}

func (uci *UCI) stop(line string) error {
	if uci.timeControl != nil {
		uci.timeControl.Stop()
	}
	select {
	case <-uci.ponder:
	default:
	}
	// Waits until the engine becomes idle.
	uci.idle <- struct{}{}
	<-uci.idle
	return nil
}

// play runs the search. Should run in its own goroutine.
func (uci *UCI) play() {
	pv := PlayParallel(uci.Engine.Position, uci.timeControl, uci.Engine.Log, uci.Engine.Options, uci.threads)

	if len(pv) >= 2 {
		uci.Engine.DoMove(pv[0])
		uci.Engine.DoMove(pv[1])
		uci.predicted = uci.Engine.Position.Zobrist()
		uci.Engine.UndoMove()
		uci.Engine.UndoMove()
	} else {
		uci.predicted = uci.Engine.Position.Zobrist()
	}

	// If pondering was requested this blocks until ponderhit or stop.
	uci.ponder <- struct{}{}
	<-uci.ponder

	if len(pv) == 0 {
		uci.writeOut("bestmove (none)\n")
	} else if len(pv) == 1 {
		uci.writeOut(fmt.Sprintf("bestmove %v\n", pv[0].UCI()))
	} else {
		uci.writeOut(fmt.Sprintf("bestmove %v ponder %v\n", pv[0].UCI(), pv[1].UCI()))
	}

	// Mark the engine idle only after bestmove is printed, so interleaved
	// position/go commands can't race ahead of it.
	<-uci.idle
}

// runBench plays a handful of fixed-depth searches from the start
// position and reports aggregate nodes searched, for quick regression
// checks of search speed.
func (uci *UCI) runBench() {
	pos, _ := PositionFromFEN(FENStartPos)
	eng := NewEngine(pos, &NulLogger{}, Options{})
	var total uint64
	for i := 0; i < 10; i++ {
		tc := NewFixedDepthTimeControl(pos, 6)
		tc.Start(false)
		pv := eng.Play(tc)
		total += eng.Stats.Nodes
		if len(pv) == 0 {
			break
		}
		eng.DoMove(pv[0])
	}
	uci.log.Infow("bench complete", "nodes", total)
}

var reOption = regexp.MustCompile(`^setoption\s+name\s+(.+?)(\s+value\s+(.*))?$`)

func (uci *UCI) setoption(line string) error {
	option := reOption.FindStringSubmatch(line)
	if option == nil {
		return fmt.Errorf("invalid setoption arguments")
	}

	switch option[1] {
	case "Clear Hash":
		GlobalHashTable.Clear()
		return nil
	}

	if len(option) < 3 || option[3] == "" {
		switch option[1] {
		case "Debug Log File", "EvalFile":
			// Empty value clears the setting; fall through below.
		default:
			return fmt.Errorf("missing setoption value")
		}
	}

	switch option[1] {
	case "UCI_AnalyseMode":
		mode, err := strconv.ParseBool(option[3])
		if err != nil {
			return err
		}
		uci.Engine.Options.AnalyseMode = mode
		return nil
	case "Hash":
		hashSizeMB, err := strconv.ParseInt(option[3], 10, 64)
		if err != nil {
			return err
		}
		GlobalHashTable = NewHashTable(int(hashSizeMB))
		return nil
	case "Threads":
		n, err := strconv.Atoi(option[3])
		if err != nil {
			return err
		}
		uci.threads = clampThreads(n)
		return nil
	case "Ponder":
		return nil
	case "Debug Log File":
		if uci.debugLogFile != nil {
			uci.debugLogFile.Close()
			uci.debugLogFile = nil
		}
		if option[3] != "" {
			f, err := os.OpenFile(option[3], os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				return err
			}
			uci.debugLogFile = f
		}
		return nil
	case "UseNNUE":
		mode, err := strconv.ParseBool(option[3])
		if err != nil {
			return err
		}
		GlobalEvalConfig.UseNNUE = mode
		return nil
	case "EvalFile":
		if option[3] != "" {
			uci.loadNetwork(option[3], false)
		}
		return nil
	case "NnueBlend":
		n, err := strconv.Atoi(option[3])
		if err != nil {
			return err
		}
		if n < 0 || n > 100 {
			return fmt.Errorf("NnueBlend must be between 0 and 100")
		}
		GlobalEvalConfig.Blend = n
		return nil
	case "NnueScale":
		n, err := strconv.Atoi(option[3])
		if err != nil {
			return err
		}
		if n < 10 || n > 400 {
			return fmt.Errorf("NnueScale must be between 10 and 400")
		}
		GlobalEvalConfig.Scale = int32(n)
		return nil
	case "NnueSCReLU":
		mode, err := strconv.ParseBool(option[3])
		if err != nil {
			return err
		}
		if GlobalEvalConfig.Network != nil {
			if mode {
				GlobalEvalConfig.Network.Activation = SCReLU
			} else {
				GlobalEvalConfig.Network.Activation = CReLU
			}
		}
		return nil
	default:
		return fmt.Errorf("unhandled option %s", option[1])
	}
}
