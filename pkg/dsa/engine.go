package dsa

import (
	"context"
	"fmt"
	"math/big"

	"github.com/mahdiidarabi/go-dsa/internal/entropy"
	"github.com/mahdiidarabi/go-dsa/pkg/numutil"
	"github.com/mahdiidarabi/go-dsa/pkg/primality"
)

// PrimalityOracle is the three-method primality dependency of the
// parameter generator. The default binding is pkg/primality; callers
// may substitute any implementation with the same contract.
type PrimalityOracle interface {
	// IsProbablePrime is a cheap screen for discarding composites.
	IsProbablePrime(n *big.Int) bool

	// MillerRabinRandom runs rounds Miller-Rabin tests with witnesses
	// derived from entropyHex, the current FIPS seed at the call site.
	MillerRabinRandom(n *big.Int, rounds int, entropyHex string) bool

	// IsProvablePrime constructs and checks an unconditional
	// primality certificate. May be slow for large inputs.
	IsProvablePrime(n *big.Int) bool
}

// Engine performs DSA parameter generation, key derivation, signing,
// and verification. An Engine is safe for concurrent use: all methods
// are pure over their inputs plus the entropy source, which serializes
// itself internally.
type Engine struct {
	standard Standard
	oracle   PrimalityOracle
	source   *entropy.Source
	progress ProgressFunc
}

// New creates an engine with the legacy FIPS 186-2 standard, the
// default primality oracle, and the shared system entropy source.
func New() *Engine {
	return &Engine{
		standard: FIPS186v2,
		oracle:   primality.NewOracle(),
		source:   entropy.Shared(),
	}
}

// WithStandard sets the default standard for generation and digest
// selection.
func (e *Engine) WithStandard(std Standard) *Engine {
	e.standard = std
	return e
}

// WithPrimality substitutes the primality oracle.
func (e *Engine) WithPrimality(oracle PrimalityOracle) *Engine {
	e.oracle = oracle
	return e
}

// WithProgress installs a progress hook invoked once per outer-loop
// iteration during parameter generation.
func (e *Engine) WithProgress(fn ProgressFunc) *Engine {
	e.progress = fn
	return e
}

// WithSource substitutes the entropy source. Intended for tests.
func (e *Engine) WithSource(src *entropy.Source) *Engine {
	e.source = src
	return e
}

// KeyGen generates fresh domain parameters under cfg and derives a key
// pair on them. The returned GenInfo carries the generation witness
// (counter, h, seed).
func (e *Engine) KeyGen(ctx context.Context, cfg GenConfig) (*Key, *GenInfo, error) {
	std := cfg.Standard
	if std == 0 {
		std = e.standard
	}

	L, N, err := resolveSizes(std, cfg.Size, cfg.QSize)
	if err != nil {
		return nil, nil, err
	}

	params, info, err := e.generateParams(ctx, std, L, N, cfg.Seed, cfg.Prove)
	if err != nil {
		return nil, nil, err
	}

	priv, pub, err := e.deriveKeyPair(params.p, params.q, params.g)
	if err != nil {
		return nil, nil, err
	}

	key := &Key{P: params.p, Q: params.q, G: params.g, PubKey: pub, PrivKey: priv}
	return key, info, nil
}

// resolveSizes validates L and resolves the default N for the standard.
func resolveSizes(std Standard, size, qsize int) (int, int, error) {
	if size < 256 {
		return 0, 0, fmt.Errorf("%w: modulus size must be at least 256 bits, got %d", ErrUsage, size)
	}

	switch std {
	case FIPS186v4:
		if qsize == 0 {
			if size >= 2048 {
				qsize = 256
			} else {
				qsize = 160
			}
		}
		if qsize < 1 || qsize > 512 {
			return 0, 0, fmt.Errorf("%w: subgroup size must be in [1, 512], got %d", ErrUsage, qsize)
		}
	default:
		if qsize == 0 {
			qsize = 160
		}
		if qsize != 160 {
			return 0, 0, fmt.Errorf("%w: %s requires a 160-bit subgroup, got %d", ErrUsage, std, qsize)
		}
	}

	if size < qsize+8 {
		return 0, 0, fmt.Errorf("%w: modulus size %d must be at least subgroup size plus 8 (%d)", ErrUsage, size, qsize+8)
	}
	return size, qsize, nil
}

// deriveKeyPair draws the private exponent uniformly in [1, q-1] and
// computes the matching public value.
func (e *Engine) deriveKeyPair(p, q, g *big.Int) (*big.Int, *big.Int, error) {
	for {
		x, err := numutil.MakeRandom(e.source, numutil.BitSize(q))
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrRandomness, err)
		}
		x.Mod(x, q)
		if x.Sign() == 0 {
			continue
		}
		return x, numutil.ModExp(g, x, p), nil
	}
}

// emitProgress runs the hook and folds a stop request into ErrCanceled.
func (e *Engine) emitProgress(phase string, iteration int) error {
	if e.progress == nil {
		return nil
	}
	if err := e.progress(phase, iteration); err != nil {
		return fmt.Errorf("%w: %v", ErrCanceled, err)
	}
	return nil
}

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrCanceled, ctx.Err())
	default:
		return nil
	}
}
