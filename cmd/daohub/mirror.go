package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/apostrophe-corp/daohub/ingest"
	"github.com/apostrophe-corp/daohub/ledger"
	"github.com/apostrophe-corp/daohub/mirror"
	"github.com/apostrophe-corp/daohub/refbook"
	"github.com/apostrophe-corp/daohub/store"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/spf13/cobra"
)

type mirrorArguments struct {
	Home string
	Url  string
	Ref  string
}

var mirrorArgs mirrorArguments

// mirrorCmd runs the read model headless: it attaches to the hub contract,
// follows its notifications and serves the sqlite copy over HTTP.
var mirrorCmd = &cobra.Command{
	Use:   "mirror",
	Short: "Serve the proposal read model without the interactive console",
	Args:  cobra.ExactArgs(0),
	RunE:  mirrorRun,
}

func init() {
	homeFlag(mirrorCmd, &mirrorArgs.Home)
	urlFlag(mirrorCmd, &mirrorArgs.Url)
	mirrorCmd.Flags().StringVarP(&mirrorArgs.Ref, "ref", "r", "", "hub contract reference, defaults to the last one used")
}

func mirrorRun(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(mirrorArgs.Home)
	if mirrorArgs.Url != "" {
		cfg.Node.Url = mirrorArgs.Url
	}

	logger := cmtlog.NewTMLogger(cmtlog.NewSyncWriter(os.Stdout))
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ref := mirrorArgs.Ref
	if ref == "" {
		book, err := refbook.Open(cfg.RefBookDir())
		if err != nil {
			return err
		}
		last, ok, err := book.Last()
		book.Close()
		if err != nil {
			return err
		}
		if !ok {
			log.Fatal("no contract reference recorded, pass one with --ref")
		}
		ref = last
	}

	l, err := ledger.NewCometLedger(logger, cfg.Node.Url)
	if err != nil {
		return err
	}
	defer l.Stop()

	st := store.New()
	ing := ingest.New(logger, st)
	m, err := mirror.Open(logger, cfg.MirrorDBFile())
	if err != nil {
		return err
	}
	defer m.Close()
	ing.WithSink(m)
	go ing.Start(ctx)

	h, err := l.Attach(ctx, ref)
	if err != nil {
		return err
	}
	if err := h.SubscribeCreated(ctx, ing.Created); err != nil {
		return err
	}
	if err := h.SubscribeResolutions(ctx, ing.Resolved); err != nil {
		return err
	}

	logger.Info("mirror serving", "addr", cfg.Mirror.ListenAddr, "ref", ref)
	errCh := make(chan error, 1)
	go func() { errCh <- mirror.NewService(cfg.Mirror.ListenAddr, m).Start() }()
	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}
