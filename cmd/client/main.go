package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"chat-sync/client"
	"chat-sync/contract"
	"chat-sync/errors"

	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
	exitAuth    = 3
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client terminated with error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	_ = godotenv.Load()
	config, err := LoadConfig()
	if err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := client.New(config.ServerURL, &http.Client{Timeout: 30 * time.Second}, logger)
	me, err := api.Authenticate(ctx, config.Handle, config.Password)
	if err != nil {
		return exitAuth, fmt.Errorf("authentication failed: %w", err)
	}

	peers, err := api.Peers(ctx)
	if err != nil {
		return exitRuntime, err
	}
	printPeers(os.Stdout, peers)

	peer, ok := lo.Find(peers, func(p contract.Peer) bool {
		return strings.EqualFold(p.Handle, config.Peer)
	})
	if !ok {
		return exitConfig, fmt.Errorf("unknown peer %q", config.Peer)
	}

	p := printer{out: os.Stdout, self: me.UserID, selfHandle: me.Handle, peerHandle: peer.Handle, colours: config.Colours}
	conv := api.Conversation(peer.ID)
	history, err := conv.Bootstrap(ctx, config.HistoryLimit)
	if err != nil {
		return exitRuntime, err
	}
	p.header(fmt.Sprintf("  ====== %s <-> %s ======", me.Handle, peer.Handle))
	p.print(history)

	errChan := make(chan error, 1)
	go func() {
		errChan <- conv.Run(ctx, config.PollInterval, p.print)
	}()
	go readInput(ctx, os.Stdin, conv, p)

	select {
	case <-ctx.Done():
		return exitOK, nil
	case err := <-errChan:
		if err == nil {
			return exitOK, nil
		}
		if errors.Is(err, errors.ErrUnauthorized) {
			return exitAuth, fmt.Errorf("session ended: %w", err)
		}
		return exitRuntime, err
	}
}

// readInput sends each line typed on r. "/delete <id>" removes one of our
// messages instead.
func readInput(ctx context.Context, r io.Reader, conv *client.Conversation, p printer) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "/delete "):
			id, err := strconv.ParseInt(strings.TrimSpace(strings.TrimPrefix(line, "/delete ")), 10, 64)
			if err != nil {
				p.notice("usage: /delete <message id>")
				continue
			}
			if err := conv.Delete(ctx, id); err != nil {
				p.notice(fmt.Sprintf("delete failed: %v", err))
			}
		default:
			if _, err := conv.Send(ctx, line); err != nil {
				p.notice(fmt.Sprintf("send failed: %v", err))
			}
		}
	}
}

type printer struct {
	out        io.Writer
	self       int64
	selfHandle string
	peerHandle string
	colours    bool
}

func (p printer) header(text string) {
	if p.colours {
		text = color.New(color.BgBlack, color.FgGreen).Render(text)
	}
	fmt.Fprintln(p.out, text)
}

func (p printer) notice(text string) {
	if p.colours {
		text = color.New(color.FgYellow).Render(text)
	}
	fmt.Fprintln(p.out, text)
}

func (p printer) print(batch []contract.Message) {
	for _, m := range batch {
		author := lo.Ternary(m.SenderID == p.self, p.selfHandle, p.peerHandle)
		if p.colours {
			style := lo.Ternary(m.SenderID == p.self, color.New(color.FgCyan), color.New(color.FgGreen, color.OpBold))
			author = style.Render(author)
		}
		fmt.Fprintf(p.out, "[%d] %s %s: %s\n", m.ID, m.CreatedAt.Local().Format("15:04:05"), author, m.Content)
	}
}

func printPeers(w io.Writer, peers []contract.Peer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Handle"})
	table.SetBorder(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, peer := range peers {
		table.Append([]string{strconv.FormatInt(peer.ID, 10), peer.Handle})
	}
	table.Render()
}
