// Command zebra searches a position and prints the best move. Games can be
// archived to and replayed from the local database.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/hailam/zebra/internal/board"
	"github.com/hailam/zebra/internal/engine"
	"github.com/hailam/zebra/internal/game"
	"github.com/hailam/zebra/internal/storage"
)

var (
	fenFlag   = flag.String("fen", board.StartFEN, "position to search")
	movesFlag = flag.String("moves", "", "moves to play first, in coordinate form (\"e2e4 e7e5\")")
	depthFlag = flag.Int("depth", 0, "search depth (0 uses the saved preference)")
	moveTime  = flag.Duration("movetime", 0, "stop the search after this long")
	dbFlag    = flag.String("db", "", "database directory (defaults to the user data directory)")
	noDB      = flag.Bool("nodb", false, "run without the database")
	saveFlag  = flag.Bool("save", false, "archive the game with the engine's move")
	loadFlag  = flag.Uint64("load", 0, "replay an archived game before searching")
	listFlag  = flag.Bool("list", false, "list archived games and exit")
	verbose   = flag.Bool("v", false, "log engine and database activity to stderr")
)

func main() {
	flag.Parse()

	logger := log.New(io.Discard, "", 0)
	if *verbose {
		logger = log.New(os.Stderr, "zebra: ", log.Ltime|log.Lmicroseconds)
	}

	var store *storage.Storage
	prefs := storage.DefaultPreferences()
	if !*noDB {
		var err error
		if *dbFlag != "" {
			store, err = storage.Open(*dbFlag, storage.WithLogger(logger))
		} else {
			store, err = storage.OpenDefault(storage.WithLogger(logger))
		}
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer store.Close()

		if prefs, err = store.LoadPreferences(); err != nil {
			log.Printf("Warning: preferences not loaded: %v", err)
		}
	}

	if *listFlag {
		if store == nil {
			log.Fatal("-list needs the database")
		}
		listGames(store)
		return
	}

	g := game.New(game.WithLogger(logger), game.WithEngine(engine.NewEngine(engine.WithLogger(logger))))
	if err := setup(g, store); err != nil {
		store.Close()
		log.Fatal(err)
	}

	if g.Status() != game.Playing {
		fmt.Printf("%s (%s)\n", g.Status(), g.Result())
		return
	}

	depth := *depthFlag
	if depth <= 0 {
		depth = prefs.SearchDepth
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if *moveTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *moveTime)
		defer cancel()
	}

	updates, unsubscribe := g.Updates(64)
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for u := range updates {
			if prefs.ShowPV {
				fmt.Printf("depth %2d  score %-10s nodes %-10d %s\n",
					u.Depth, engine.ScoreString(u.Score), u.Nodes, strings.Join(u.Text, " "))
			}
		}
	}()

	start := time.Now()
	if err := g.StartSearch(ctx, depth); err != nil {
		store.Close()
		log.Fatal(err)
	}
	res := g.WaitSearch()
	unsubscribe()
	<-printed

	if res.Move == board.NoMove {
		fmt.Println("search stopped before a move was found")
		return
	}

	pos := g.Position()
	fmt.Printf("bestmove %s (%s) score %s depth %d nodes %d time %s\n",
		res.Move, pos.SAN(res.Move), engine.ScoreString(res.Score), res.Depth, res.Nodes,
		time.Since(start).Round(time.Millisecond))

	if *saveFlag && store != nil {
		if _, err := g.ApplyResult(res); err != nil {
			log.Printf("Warning: %v", err)
			return
		}
		rec := g.Record()
		if pos.SideToMove() == board.White {
			rec.White = "zebra"
		} else {
			rec.Black = "zebra"
		}
		id, err := store.SaveGame(rec)
		if err != nil {
			log.Printf("Warning: game not saved: %v", err)
			return
		}
		fmt.Printf("saved game %d\n", id)
	}
}

// setup loads the starting position, either an archived game or -fen, and
// plays -moves on top of it.
func setup(g *game.Game, store *storage.Storage) error {
	if *loadFlag != 0 {
		if store == nil {
			return fmt.Errorf("-load needs the database")
		}
		rec, err := store.LoadGame(*loadFlag)
		if err != nil {
			return err
		}
		if err := g.Replay(rec); err != nil {
			return err
		}
	} else if err := g.LoadFEN(*fenFlag); err != nil {
		return err
	}

	for _, s := range strings.FieldsFunc(*movesFlag, func(r rune) bool { return r == ' ' || r == ',' }) {
		c, err := game.ParseCandidate(s)
		if err != nil {
			return err
		}
		if _, err := g.ApplyMove(c); err != nil {
			return err
		}
	}
	return nil
}

func listGames(store *storage.Storage) {
	games, err := store.ListGames()
	if err != nil {
		log.Fatalf("Failed to list games: %v", err)
	}
	for _, rec := range games {
		fmt.Printf("%4d  %s  %-7s  %3d plies  %s\n",
			rec.ID, rec.Created.Format("2006-01-02 15:04"), rec.Result, len(rec.Moves), strings.Join(rec.Text, " "))
	}
}
