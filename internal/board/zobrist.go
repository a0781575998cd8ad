package board

// Zobrist keys, generated once from a fixed seed so hashes are reproducible
// across runs. The en-passant target is not hashed.
var (
	zobristPiece      [12][64]uint64
	zobristCastling   [16]uint64
	zobristSideToMove uint64
)

func init() {
	initZobrist()
}

type prng struct {
	state uint64
}

func newPRNG(seed uint64) *prng {
	return &prng{state: seed}
}

// xorshift64*
func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

func initZobrist() {
	rng := newPRNG(0x98F107A2BEEF1234)

	for pc := WhitePawn; pc < NoPiece; pc++ {
		for sq := A1; sq <= H8; sq++ {
			zobristPiece[pc][sq] = rng.next()
		}
	}
	for i := range zobristCastling {
		zobristCastling[i] = rng.next()
	}
	zobristSideToMove = rng.next()
}

// ZobristPiece returns the key for a piece on a square.
func ZobristPiece(pc Piece, sq Square) uint64 {
	return zobristPiece[pc][sq]
}

// ZobristCastling returns the key for a castling-rights value.
func ZobristCastling(cr CastlingRights) uint64 {
	return zobristCastling[cr]
}

// ZobristSideToMove returns the key folded in when Black is to move.
func ZobristSideToMove() uint64 {
	return zobristSideToMove
}

// ComputeHash recomputes the Zobrist hash of the position from scratch.
func (p *Position) ComputeHash() uint64 {
	var hash uint64
	for sq := A1; sq <= H8; sq++ {
		if pc := p.cells[sq].Piece; pc != NoPiece {
			hash ^= ZobristPiece(pc, sq)
		}
	}
	hash ^= ZobristCastling(p.castlingRights)
	if p.sideToMove == Black {
		hash ^= ZobristSideToMove()
	}
	return hash
}
