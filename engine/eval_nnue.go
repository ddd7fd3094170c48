// eval_nnue.go implements the optional quantized feed-forward evaluator.
//
// The accumulator/activation structure follows the pattern used by
// Stockfish-style NNUE implementations in Go (accumulate input-weight
// columns for active features, clamp, dot with output weights); the wire
// format below ("SYKNNUE1") is this engine's own, not Stockfish's.

package engine

import (
	"encoding/binary"
	"fmt"
	"io"
)

const nnueMagic = "SYKNNUE1"

// Quantization constants.
const (
	QA    = 255
	QB    = 64
	Scale = 400
)

// Activation distinguishes the two supported non-linearities.
type Activation uint8

const (
	CReLU Activation = iota
	SCReLU
)

// Network is a quantized, single-hidden-layer evaluator with 768 input
// features (side to move x figure x square) and a two-half output layer,
// one half read from the side-to-move's perspective and one from the
// opponent's.
type Network struct {
	HiddenSize int
	Activation Activation

	// featureWeights[feature][hidden] are the accumulator's input weights.
	featureWeights [][]int16
	featureBias    []int16

	outWeightsSTM []int16
	outWeightsOpp []int16
	outputBias    int32
}

// LoadNetwork parses a network in this engine's SYKNNUE1 format:
//
//	magic    [8]byte  "SYKNNUE1"
//	version  uint32
//	hidden   uint32
//	activation byte
//	featureWeights [768*hidden]int16
//	featureBias    [hidden]int16
//	outWeightsSTM  [hidden]int16
//	outWeightsOpp  [hidden]int16
//	outputBias     int32
func LoadNetwork(r io.Reader) (*Network, error) {
	var magic [8]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("nnue: reading magic: %w", err)
	}
	if string(magic[:]) != nnueMagic {
		return nil, fmt.Errorf("nnue: bad magic %q", magic)
	}

	var header struct {
		Version    uint32
		Hidden     uint32
		Activation uint8
	}
	if err := binary.Read(r, binary.LittleEndian, &header.Version); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &header.Hidden); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &header.Activation); err != nil {
		return nil, err
	}

	const numFeatures = 2 * 6 * SquareArraySize // 768
	hidden := int(header.Hidden)
	if hidden <= 0 || hidden > 4096 {
		return nil, fmt.Errorf("nnue: implausible hidden size %d", hidden)
	}

	n := &Network{HiddenSize: hidden, Activation: Activation(header.Activation)}
	n.featureWeights = make([][]int16, numFeatures)
	for f := range n.featureWeights {
		n.featureWeights[f] = make([]int16, hidden)
		if err := binary.Read(r, binary.LittleEndian, n.featureWeights[f]); err != nil {
			return nil, fmt.Errorf("nnue: reading feature weights: %w", err)
		}
	}
	n.featureBias = make([]int16, hidden)
	if err := binary.Read(r, binary.LittleEndian, n.featureBias); err != nil {
		return nil, err
	}
	n.outWeightsSTM = make([]int16, hidden)
	if err := binary.Read(r, binary.LittleEndian, n.outWeightsSTM); err != nil {
		return nil, err
	}
	n.outWeightsOpp = make([]int16, hidden)
	if err := binary.Read(r, binary.LittleEndian, n.outWeightsOpp); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &n.outputBias); err != nil {
		return nil, err
	}
	return n, nil
}

// featureIndex returns the input feature index for piece pi sitting on
// sq, viewed from perspective's side.
func featureIndex(perspective Color, pi Piece, sq Square) int {
	relSq := sq.POV(perspective)
	side := 0
	if pi.Color() != perspective {
		side = 1
	}
	return (side*6+int(pi.Figure()-Pawn))*SquareArraySize + int(relSq)
}

// accumulate sums the hidden-bias plus the active features' weight
// columns for perspective. Recomputed from scratch on every call per the
// spec; incremental accumulator updates can be layered on later without
// changing the result.
func (n *Network) accumulate(pos *Position, perspective Color) []int32 {
	acc := make([]int32, n.HiddenSize)
	for i, b := range n.featureBias {
		acc[i] = int32(b)
	}
	for sq := Square(0); sq < SquareArraySize; sq++ {
		pi := pos.Get(sq)
		if pi == NoPiece {
			continue
		}
		idx := featureIndex(perspective, pi, sq)
		w := n.featureWeights[idx]
		for i, v := range w {
			acc[i] += int32(v)
		}
	}
	return acc
}

func (n *Network) activate(v int32) int32 {
	if v < 0 {
		return 0
	}
	if v > QA {
		v = QA
	}
	if n.Activation == SCReLU {
		return v * v
	}
	return v
}

// Evaluate returns the network's output, in centipawns, from the side to
// move's perspective.
func (n *Network) Evaluate(pos *Position) int32 {
	stm := n.accumulate(pos, pos.Us())
	opp := n.accumulate(pos, pos.Them())

	var sum int64
	for i := 0; i < n.HiddenSize; i++ {
		sum += int64(n.activate(stm[i])) * int64(n.outWeightsSTM[i])
		sum += int64(n.activate(opp[i])) * int64(n.outWeightsOpp[i])
	}
	sum += int64(n.outputBias) * int64(QA)

	if n.Activation == SCReLU {
		return int32(sum * Scale / (int64(QA) * int64(QA) * int64(QB)))
	}
	return int32(sum * Scale / (int64(QA) * int64(QB)))
}

// evalCache is a direct-mapped cache of blended scores keyed by Zobrist
// hash, used only when the neural evaluator is enabled.
type evalCache struct {
	entries []evalCacheEntry
}

type evalCacheEntry struct {
	hash  uint64
	score int32
}

func newEvalCache(bits int) *evalCache {
	return &evalCache{entries: make([]evalCacheEntry, 1<<uint(bits))}
}

func (c *evalCache) get(hash uint64) (int32, bool) {
	if c == nil || len(c.entries) == 0 {
		return 0, false
	}
	e := &c.entries[hash&uint64(len(c.entries)-1)]
	return e.score, e.hash == hash
}

func (c *evalCache) put(hash uint64, score int32) {
	if c == nil || len(c.entries) == 0 {
		return
	}
	e := &c.entries[hash&uint64(len(c.entries)-1)]
	*e = evalCacheEntry{hash: hash, score: score}
}

// EvalConfig bundles the neural-evaluator UCI options (UseNNUE, EvalFile,
// NnueBlend, NnueScale) that Evaluate reads on every call.
type EvalConfig struct {
	UseNNUE bool
	Blend   int // 0..100
	Scale   int32
	Network *Network
	Cache   *evalCache
}

// NewEvalConfig returns a config with the spec's default blend/scale and
// a 16K-entry eval cache.
func NewEvalConfig() *EvalConfig {
	return &EvalConfig{Blend: 2, Scale: 100, Cache: newEvalCache(14)}
}

// GlobalEvalConfig is consulted by Evaluate; the UCI front-end installs
// it once options are known so engine package tests can run without a
// network configured.
var GlobalEvalConfig *EvalConfig
