package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"locfeed/internal/feed"
	"locfeed/internal/logger"
	"locfeed/internal/ui"
)

// feedFlags：feed 相关子命令的共享参数；显式给出时覆盖配置
type feedFlags struct {
	format  string
	session string
	raw     bool
}

func (f *feedFlags) apply(cmd *cobra.Command, a *app) {
	if cmd.Flags().Changed("format") {
		a.cfg.Feed.Format = f.format
	}
	if cmd.Flags().Changed("session") {
		a.cfg.Feed.SessionID = f.session
	}
}

func (a *app) feedCmd() *cobra.Command {
	var (
		ff   feedFlags
		poll time.Duration
	)
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Watch the live feed",
		Long: `Opens the push channel and shows every data point as it arrives.
With --poll, /data is also pulled on a fixed interval. Press r to pull /data now
and : to send a command.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationTUI: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			ff.apply(cmd, a)
			if cmd.Flags().Changed("poll") {
				a.cfg.Feed.PollInterval = poll
			}
			return a.runFeed(cmd.Context())
		},
	}
	cmd.Flags().DurationVar(&poll, "poll", 0, "also pull /data on this interval; 0 disables (POLL_INTERVAL)")
	cmd.Flags().StringVar(&ff.format, "format", "", "format parameter for /data (FEED_FORMAT)")
	cmd.Flags().StringVar(&ff.session, "session", "", "session id for commands (FEED_SESSION_ID)")
	return cmd
}

// 文档注释：运行实时数据界面
// 背景：推送通道、可选的定时拉取与界面事件循环在同一 errgroup 中运行；界面退出即取消其余两者。
// 约束：通道断开不是致命错误，界面保留断开提示继续运行。
func (a *app) runFeed(parent context.Context) error {
	fc := a.cfg.Feed
	wsURL, err := feed.UpdatesURL(fc.BaseURL, fc.UpdatesPath)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	display := ui.NewFeedDisplay()
	viewer := feed.NewViewer(display, feed.WithIndicatorDelay(fc.IndicatorDelay))
	defer viewer.Close()
	client := feed.NewClient(fc.BaseURL, a.requestClient())
	channel := feed.NewChannel(wsURL, display)

	model := ui.NewFeedModel(ctx, display, viewer, client,
		ui.WithFormat(fc.Format),
		ui.WithSession(fc.SessionID),
		ui.WithChannelState(channel.State),
	)
	p := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := channel.Run(gctx); err != nil {
			logger.L().Errorw("channel_end", "err", err)
		}
		return nil
	})
	if fc.PollInterval > 0 {
		g.Go(func() error {
			return feed.NewPoller(viewer, client, fc.Format, fc.PollInterval).Run(gctx)
		})
	}
	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})
	return g.Wait()
}

func (a *app) dataCmd() *cobra.Command {
	var ff feedFlags
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Pull /data once and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ff.apply(cmd, a)
			c := feed.NewClient(a.cfg.Feed.BaseURL, a.requestClient())
			v, err := c.Data(cmd.Context(), a.cfg.Feed.Format)
			if err != nil {
				return err
			}
			return printValue(cmd.OutOrStdout(), v, ff.raw)
		},
	}
	cmd.Flags().StringVar(&ff.format, "format", "", "format parameter for /data (FEED_FORMAT)")
	cmd.Flags().BoolVar(&ff.raw, "raw", false, "print contents as returned, without reducing HTML to text")
	return cmd
}

func (a *app) commandCmd() *cobra.Command {
	var ff feedFlags
	cmd := &cobra.Command{
		Use:   "command <command>",
		Short: "Send a command through /api/command and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ff.apply(cmd, a)
			c := feed.NewClient(a.cfg.Feed.BaseURL, a.requestClient())
			v, err := c.Command(cmd.Context(), args[0], a.cfg.Feed.SessionID)
			if err != nil {
				return err
			}
			return printValue(cmd.OutOrStdout(), v, ff.raw)
		},
	}
	cmd.Flags().StringVar(&ff.session, "session", "", "session id (FEED_SESSION_ID)")
	cmd.Flags().BoolVar(&ff.raw, "raw", false, "print contents as returned, without reducing HTML to text")
	return cmd
}

// printValue：首行为摘要，其后为内容；响应为 null 时返回 feed.ErrNoValue
func printValue(w io.Writer, v *feed.Value, raw bool) error {
	u, ok := feed.Compute(nil, v)
	if !ok {
		return feed.ErrNoValue
	}
	contents := u.Contents
	if !raw {
		contents = feed.PlainText(contents)
	}
	fmt.Fprintln(w, u.Summary)
	fmt.Fprintln(w, contents)
	return nil
}
