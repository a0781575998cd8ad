package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/dylhunn/dragontoothmg"

	"github.com/hailam/zebra/internal/board"
)

// oraclePerft counts the same tree with dragontoothmg.
func oraclePerft(b *dragontoothmg.Board, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves := b.GenerateLegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}

	var nodes uint64
	for _, m := range moves {
		unapply := b.Apply(m)
		nodes += oraclePerft(b, depth-1)
		unapply()
	}
	return nodes
}

func main() {
	fen := flag.String("fen", board.StartFEN, "FEN string (defaults to initial position)")
	depth := flag.Int("depth", 0, "Perft depth (required)")
	divide := flag.Bool("divide", false, "Print per-move node counts at root")
	verify := flag.Bool("verify", false, "Compare the counts against dragontoothmg")
	flag.Parse()

	if *depth <= 0 {
		fmt.Fprintln(os.Stderr, "-depth must be > 0")
		os.Exit(2)
	}

	pos, err := board.ParseFEN(*fen)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ParseFEN error: %v\n", err)
		os.Exit(2)
	}

	if *divide {
		div := board.PerftDivide(pos, *depth)
		moves := make([]board.Move, 0, len(div))
		var sum uint64
		for m, n := range div {
			moves = append(moves, m)
			sum += n
		}
		sort.Slice(moves, func(i, j int) bool { return moves[i].String() < moves[j].String() })

		failed := false
		for _, m := range moves {
			line := fmt.Sprintf("%s: %d", m, div[m])
			if *verify {
				pos.MakeMove(m)
				b := dragontoothmg.ParseFen(pos.FEN())
				want := oraclePerft(&b, *depth-1)
				pos.UnmakeMove()
				if want != div[m] {
					line += fmt.Sprintf(" (dragontoothmg %d)", want)
					failed = true
				}
			}
			fmt.Println(line)
		}
		fmt.Printf("Total: %d\n", sum)
		if failed {
			os.Exit(1)
		}
		return
	}

	start := time.Now()
	nodes := board.Perft(pos, *depth)
	elapsed := time.Since(start)
	fmt.Printf("%d \t\t%d \t\t%s \t%.0f\n", *depth, nodes, elapsed, float64(nodes)/elapsed.Seconds())

	if *verify {
		b := dragontoothmg.ParseFen(*fen)
		if want := oraclePerft(&b, *depth); want != nodes {
			fmt.Fprintf(os.Stderr, "mismatch: dragontoothmg counts %d\n", want)
			os.Exit(1)
		}
	}
}
