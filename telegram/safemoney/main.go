package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/yangrq1018/safemoney-bot/config"
	"github.com/yangrq1018/safemoney-bot/quote"
	"github.com/yangrq1018/safemoney-bot/telegram"
)

// set with -ldflags
var (
	GitCommit string
	Version   = "dev"
)

const shutdownTimeout = 10 * time.Second

func setupLogging(c config.Log) error {
	level, err := log.ParseLevel(c.Level)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	if c.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}

func loadConfig(cliCtx *cli.Context) (*config.Config, error) {
	c, err := config.Load(cliCtx.String("config"))
	if err != nil {
		return nil, err
	}
	if err = c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err = setupLogging(c.Log); err != nil {
		return nil, err
	}
	return c, nil
}

// SafeMoneyBot builds the production bot from c
func SafeMoneyBot(c *config.Config, m *telegram.Metrics) (*telegram.Bot, error) {
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}
	provider, err := quote.NewProviderFromConfig(c)
	if err != nil {
		return nil, err
	}
	source := quote.InstrumentSource(provider, m.QuoteRequests)
	converter := quote.InstrumentConverter(quote.NewPriceConverter(provider), m.QuoteRequests)

	sender := telegram.NewSender(
		c.Telegram.Token,
		telegram.WithEndpoint(c.Telegram.APIEndpoint),
		telegram.WithTimeout(c.Telegram.Timeout),
		telegram.WithSenderMetrics(m),
	)
	b := telegram.NewBot(
		sender,
		telegram.SetAuthorizer(telegram.WebhookAuthorizer(c.Telegram.WebhookSecret)),
		telegram.SetMetrics(m),
		telegram.SetDebug(log.IsLevelEnabled(log.DebugLevel)),
	)
	if err = b.RegisterCommand(commands(source, converter, quote.Codes(c.Coins), loc)...); err != nil {
		return nil, err
	}
	return b, nil
}

func serve(cliCtx *cli.Context) error {
	c, err := loadConfig(cliCtx)
	if err != nil {
		return err
	}
	m := telegram.NewMetrics()
	b, err := SafeMoneyBot(c, m)
	if err != nil {
		return err
	}
	if c.Telegram.WebhookSecret == "" {
		log.Warn("webhook secret is empty, requests are not authenticated")
	}
	srv := telegram.NewServer(telegram.ServerOptions{
		Address:      c.Server.ListenAddress,
		WebhookPath:  c.Server.WebhookPath,
		ReadTimeout:  c.Server.ReadTimeout,
		WriteTimeout: c.Server.WriteTimeout,
		IdleTimeout:  c.Server.IdleTimeout,
	}, b, m)

	ctx, stop := signal.NotifyContext(cliCtx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(srv.Serve)
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func setWebhook(cliCtx *cli.Context) error {
	c, err := loadConfig(cliCtx)
	if err != nil {
		return err
	}
	webhookURL := cliCtx.String("url")
	if webhookURL == "" {
		webhookURL = c.Telegram.WebhookURL
	}
	if webhookURL == "" {
		return fmt.Errorf("webhook url is required, pass --url or set %s", config.EnvWebhookURL)
	}
	sender := telegram.NewSender(c.Telegram.Token, telegram.WithEndpoint(c.Telegram.APIEndpoint), telegram.WithTimeout(c.Telegram.Timeout))
	if err = sender.SetWebhook(cliCtx.Context, webhookURL, c.Telegram.WebhookSecret); err != nil {
		return err
	}
	log.Infof("webhook set to %s", webhookURL)
	return nil
}

func setCommands(cliCtx *cli.Context) error {
	c, err := loadConfig(cliCtx)
	if err != nil {
		return err
	}
	b, err := SafeMoneyBot(c, telegram.NewMetrics())
	if err != nil {
		return err
	}
	cmds := b.TGCommands()
	if err = b.Sender().SetMyCommands(cliCtx.Context, cmds); err != nil {
		return err
	}
	log.Infof("published %d commands", len(cmds))
	return nil
}

func main() {
	cliApp := cli.NewApp()
	cliApp.Name = "safemoney"
	cliApp.Usage = "SafeMoneyRobot Telegram webhook bot"
	cliApp.Version = Version
	if GitCommit != "" {
		cliApp.Version += "+" + GitCommit
	}
	cliApp.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML config file, environment variables override it",
			EnvVars: []string{"SAFEMONEY_CONFIG"},
		},
	}
	cliApp.Before = func(*cli.Context) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		return nil
	}
	cliApp.Commands = []*cli.Command{
		{
			Name:   "serve",
			Usage:  "run the webhook server",
			Action: serve,
		},
		{
			Name:  "set-webhook",
			Usage: "register the webhook url and secret with Telegram",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "url", Usage: "public webhook url, defaults to telegram.webhook_url"},
			},
			Action: setWebhook,
		},
		{
			Name:   "set-commands",
			Usage:  "publish the bot command list",
			Action: setCommands,
		},
	}
	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
