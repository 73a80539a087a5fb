package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kunal-geeks/pieceserve/internal/merkle"
	"github.com/kunal-geeks/pieceserve/internal/server"
)

func main() {
	listenAddr := flag.String("listen", "127.0.0.1:8080", "address to serve on")
	parityShards := flag.Int("parity", 0, "optional Reed-Solomon parity shard count for the piece sidecar")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <file>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	path := flag.Arg(0)

	tree, err := merkle.BuildFromFile(path)
	if err != nil {
		log.Error("build tree", "file", path, "err", err)
		os.Exit(1)
	}

	log.Info("tree built",
		"file", path,
		"root", tree.RootHash().String(),
		"pieces", tree.PieceCount(),
		"leafWidth", tree.LeafWidth(),
		"nodes", tree.TotalNodes(),
	)

	if *parityShards > 0 {
		ps, err := merkle.BuildParity(tree, *parityShards)
		if err != nil {
			log.Error("build parity sidecar", "err", err)
			os.Exit(1)
		}
		log.Info("parity sidecar built",
			"dataShards", ps.DataShards(),
			"parityShards", ps.ParityShards(),
		)
	}

	registry := server.NewRegistry()
	registry.Add(tree)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(log, *listenAddr, registry)
	if err := srv.Run(ctx); err != nil {
		log.Error("server exited", "err", err)
		os.Exit(1)
	}
}
