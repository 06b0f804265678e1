// SPDX-License-Identifier: MIT

// publicchat-cli is a small operator tool for public chat servers:
// key generation, one-shot fetches, a polling loop and signed
// sends/deletes.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	cli "github.com/urfave/cli/v2"
	kitlog "go.mindeco.de/log"
	"go.mindeco.de/log/level"

	publicchat "github.com/lokinet/go-publicchat"
	"github.com/lokinet/go-publicchat/client"
	"github.com/lokinet/go-publicchat/internal/cursorfile"
	"github.com/lokinet/go-publicchat/internal/httptransport"
	"github.com/lokinet/go-publicchat/internal/testutils"
	"github.com/lokinet/go-publicchat/message"
)

// Version and Build are set by ldflags
var (
	Version = "snapshot"
	Build   = ""
)

var (
	longctx      context.Context
	shutdownFunc func()

	log kitlog.Logger

	chatClient *client.Client
	cursors    *cursorfile.Store
)

func check(err error) {
	if err != nil {
		level.Error(log).Log("err", err)
		os.Exit(1)
	}
}

func defaultDir() string {
	u, err := user.Current()
	if err != nil {
		return "."
	}
	return filepath.Join(u.HomeDir, ".publicchat")
}

var app = cli.App{
	Name:    os.Args[0],
	Usage:   "talk to federated public chat servers",
	Version: "alpha1",

	Flags: []cli.Flag{
		&cli.StringFlag{Name: "server", Value: "https://chat.getsession.org", Usage: "base URL of the chat server"},
		&cli.StringFlag{Name: "channel", Value: "1", Usage: "channel identifier"},
		&cli.StringFlag{Name: "key", Value: filepath.Join(defaultDir(), "secret"), Usage: "path to the secret key file"},
		&cli.StringFlag{Name: "cursors", Value: filepath.Join(defaultDir(), "cursors.json"), Usage: "path to the cursor state file"},
		&cli.IntFlag{Name: "count", Value: client.DefaultFallbackCount, Usage: "batch size for cursor-less fetches"},
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"vv"}, Usage: "log every request"},
	},

	Before: initClient,
	After: func(ctx *cli.Context) error {
		if cursors != nil {
			return cursors.Close()
		}
		return nil
	},
	Commands: []*cli.Command{
		keygenCmd,
		fetchCmd,
		deletionsCmd,
		pollCmd,
		sendCmd,
		deleteCmd,
		modsCmd,
		infoCmd,
		nameCmd,
	},
}

func main() {
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Printf("%s (rev: %s, built: %s)\n", c.App.Version, Version, Build)
	}

	log = kitlog.With(kitlog.NewLogfmtLogger(os.Stderr), "unit", "publicchat-cli")

	check(app.Run(os.Args))
}

func initClient(ctx *cli.Context) error {
	if ctx.Bool("verbose") {
		log = testutils.NewRelativeTimeLogger(os.Stderr)
	}

	longctx, shutdownFunc = context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		level.Warn(log).Log("event", "shutting down")
		shutdownFunc()
	}()

	// keygen has no use for a client
	if ctx.Args().First() == "keygen" {
		return nil
	}

	kp, err := publicchat.LoadKeyPair(ctx.String("key"))
	if err != nil {
		level.Warn(log).Log("event", "no key material, fetch-only mode", "err", err)
		kp = nil
	}

	cursors, err = cursorfile.Open(ctx.String("cursors"), log)
	if err != nil {
		return err
	}

	chatClient, err = client.New(kp,
		httptransport.New(log),
		client.WithLogger(log),
		client.WithCursorStore(cursors),
		client.WithFallbackCount(ctx.Int("count")),
	)
	return err
}

var keygenCmd = &cli.Command{
	Name:  "keygen",
	Usage: "generate a fresh identity key",
	Action: func(ctx *cli.Context) error {
		path := ctx.String("key")
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("refusing to overwrite %s", path)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return err
		}

		kp, err := publicchat.NewKeyPair(nil)
		if err != nil {
			return err
		}
		if err := publicchat.SaveKeyPair(kp, path); err != nil {
			return err
		}
		fmt.Println(kp.ID())
		return nil
	},
}

var fetchCmd = &cli.Command{
	Name:  "fetch",
	Usage: "fetch new messages once",
	Action: func(ctx *cli.Context) error {
		msgs, err := chatClient.FetchMessages(longctx, ctx.String("channel"), ctx.String("server"))
		if err != nil {
			return err
		}
		for _, m := range msgs {
			printMessage(m)
		}
		level.Info(log).Log("event", "fetched", "n", len(msgs))
		return nil
	},
}

var deletionsCmd = &cli.Command{
	Name:  "deletions",
	Usage: "fetch new deletion notices once",
	Action: func(ctx *cli.Context) error {
		ids, err := chatClient.FetchDeletions(longctx, ctx.String("channel"), ctx.String("server"))
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	},
}

var pollCmd = &cli.Command{
	Name:  "poll",
	Usage: "continuously sync one or more channels",
	Flags: []cli.Flag{
		&cli.StringSliceFlag{Name: "channels", Usage: "channels to sync (defaults to --channel)"},
		&cli.DurationFlag{Name: "interval", Value: 4 * time.Second},
	},
	Action: func(ctx *cli.Context) error {
		channels := ctx.StringSlice("channels")
		if len(channels) == 0 {
			channels = []string{ctx.String("channel")}
		}

		p := chatClient.NewPoller(ctx.String("server"), channels, ctx.Duration("interval"))
		p.OnMessages = func(channel string, msgs []message.Message) {
			for _, m := range msgs {
				printMessage(m)
			}
		}
		p.OnDeletions = func(channel string, ids []int64) {
			for _, id := range ids {
				level.Info(log).Log("event", "deleted", "channel", channel, "id", id)
			}
		}

		err := p.Run(longctx)
		if err == context.Canceled {
			return nil
		}
		return err
	},
}

var sendCmd = &cli.Command{
	Name:      "send",
	Usage:     "sign and post a message",
	ArgsUsage: "<text>",
	Action: func(ctx *cli.Context) error {
		if ctx.NArg() != 1 {
			return fmt.Errorf("usage: send <text>")
		}

		msg := message.Message{Body: ctx.Args().First()}
		sent, err := chatClient.Send(longctx, msg, ctx.String("channel"), ctx.String("server"))
		if err != nil {
			return err
		}
		fmt.Println(sent.ServerID)
		return nil
	},
}

var deleteCmd = &cli.Command{
	Name:      "delete",
	Usage:     "delete a message by server ID",
	ArgsUsage: "<id>",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "moderation", Usage: "use the privileged moderation endpoint"},
	},
	Action: func(ctx *cli.Context) error {
		if ctx.NArg() != 1 {
			return fmt.Errorf("usage: delete <id>")
		}
		id, err := strconv.ParseInt(ctx.Args().First(), 10, 64)
		if err != nil {
			return fmt.Errorf("bad message ID: %w", err)
		}

		deleted, err := chatClient.Delete(longctx, id, ctx.String("channel"), ctx.String("server"), !ctx.Bool("moderation"))
		if err != nil {
			return err
		}
		fmt.Println(deleted)
		return nil
	},
}

var modsCmd = &cli.Command{
	Name:  "mods",
	Usage: "list the channel's moderators",
	Action: func(ctx *cli.Context) error {
		mods, err := chatClient.FetchModerators(longctx, ctx.String("channel"), ctx.String("server"))
		if err != nil {
			return err
		}
		for _, id := range mods {
			fmt.Println(id)
		}
		return nil
	},
}

var infoCmd = &cli.Command{
	Name:  "info",
	Usage: "show the channel settings",
	Action: func(ctx *cli.Context) error {
		info, err := chatClient.ChannelInfo(longctx, ctx.String("channel"), ctx.String("server"))
		if err != nil {
			return err
		}
		return json.NewEncoder(os.Stdout).Encode(info)
	},
}

var nameCmd = &cli.Command{
	Name:      "name",
	Usage:     "set the display name on the server",
	ArgsUsage: "<name>",
	Action: func(ctx *cli.Context) error {
		if ctx.NArg() != 1 {
			return fmt.Errorf("usage: name <name>")
		}
		return chatClient.SetDisplayName(longctx, ctx.Args().First(), ctx.String("server"))
	},
}

func printMessage(m message.Message) {
	ts := time.UnixMilli(m.Timestamp).UTC().Format(time.RFC3339)
	fmt.Printf("%s <%s> %s\n", ts, m.DisplayName, m.Body)
}
