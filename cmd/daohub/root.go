package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	app_config "github.com/apostrophe-corp/daohub/config"
	"github.com/apostrophe-corp/daohub/gateway"
	"github.com/apostrophe-corp/daohub/ingest"
	"github.com/apostrophe-corp/daohub/ledger"
	"github.com/apostrophe-corp/daohub/mirror"
	"github.com/apostrophe-corp/daohub/refbook"
	"github.com/apostrophe-corp/daohub/session"
	"github.com/apostrophe-corp/daohub/store"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/spf13/cobra"
)

type consoleArguments struct {
	Home   string
	Url    string
	Devnet bool
}

var consoleArgs consoleArguments

var rootCmd = &cobra.Command{
	Use:   "daohub",
	Short: "Interactive governance console for the DAO hub",
	Long: `Walks a member through account connection, role selection and the
proposal and bounty views, bound to a chain node or an in-process devnet.`,
	Run: consoleRun,
}

func init() {
	homeFlag(rootCmd, &consoleArgs.Home)
	urlFlag(rootCmd, &consoleArgs.Url)
	rootCmd.Flags().BoolVar(&consoleArgs.Devnet, "devnet", false, "simulate contracts in-process")
}

// loadConfig reads the config under home, falling back to defaults when no
// config file has been initialized yet.
func loadConfig(home string) *app_config.Config {
	if home == "" {
		home = os.ExpandEnv("$HOME/.daohub")
	}
	cfg, err := app_config.Load(home)
	if err != nil {
		return app_config.DefaultConfig(home)
	}
	return cfg
}

func consoleRun(cmd *cobra.Command, args []string) {
	cfg := loadConfig(consoleArgs.Home)
	if consoleArgs.Url != "" {
		cfg.Node.Url = consoleArgs.Url
	}
	if consoleArgs.Devnet {
		cfg.Node.Devnet = true
	}

	logger := cmtlog.NewTMLogger(cmtlog.NewSyncWriter(os.Stderr))
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st := store.New()
	ing := ingest.New(logger, st)

	var w ledger.Wallet
	var l ledger.Ledger
	if cfg.Node.Devnet {
		l = ledger.NewDevnetLedger(logger, time.Duration(cfg.Console.DeadlineBlocks)*time.Second)
		w = ledger.NewDevnetWallet()
	} else {
		cl, err := ledger.NewCometLedger(logger, cfg.Node.Url)
		if err != nil {
			log.Fatalf("connect to node: %v", err)
		}
		defer cl.Stop()
		cw, err := ledger.NewCometWallet(logger, cfg.Node.Url)
		if err != nil {
			log.Fatalf("connect wallet: %v", err)
		}
		l = cl
		w = cw
	}
	gw := gateway.New(logger, l, st)

	if cfg.Mirror.Enable {
		m, err := mirror.Open(logger, cfg.MirrorDBFile())
		if err != nil {
			log.Fatalf("open mirror: %v", err)
		}
		defer m.Close()
		ing.WithSink(m)
		gw.WithCounterSink(m)
		svc := mirror.NewService(cfg.Mirror.ListenAddr, m)
		go func() {
			if err := svc.Start(); err != nil {
				logger.Error("mirror service stopped", "err", err)
			}
		}()
	}

	var refs *refbook.Book
	if b, err := refbook.Open(cfg.RefBookDir()); err == nil {
		refs = b
		defer refs.Close()
	} else {
		logger.Error("open ref book", "err", err)
	}

	go ing.Start(ctx)

	var keySecret string
	if dat, err := os.ReadFile(cfg.KeyFile()); err == nil {
		keySecret = strings.TrimSpace(string(dat))
	}

	prompt := session.NewConsolePrompt(os.Stdin, os.Stdout)
	s := session.New(logger, prompt, w, l, st, gw, ing, session.Options{
		PageSize:       cfg.Console.PageSize,
		DeadlineBlocks: cfg.Console.DeadlineBlocks,
		FaucetBalance:  cfg.Console.FaucetBalance,
		KeySecret:      keySecret,
		Refs:           refs,
	})
	if err := s.Run(ctx); err != nil {
		log.Fatalf("session: %v", err)
	}
}
