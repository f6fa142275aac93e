package main

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"locfeed/internal/geo"
	"locfeed/internal/location"
	"locfeed/internal/logger"
	"locfeed/internal/ui"
)

func (a *app) selectCmd() *cobra.Command {
	var ip string
	cmd := &cobra.Command{
		Use:         "select",
		Short:       "Interactively choose a country, state and city",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationTUI: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			status := ui.NewStatusLine()
			ctrl := location.NewController(location.NewClient(a.cfg.Location.URL, a.requestClient()), status)
			var opts []ui.SelectorOption
			if match := a.preselect(ip); match != nil {
				opts = append(opts, ui.WithPreselect(match))
			}
			p := tea.NewProgram(ui.NewSelectorModel(ctx, ctrl, status, opts...), tea.WithContext(ctx), tea.WithAltScreen())
			ctrl.OnChange(func() { p.Send(ui.RefreshMsg{}) })
			if _, err := p.Run(); err != nil {
				return err
			}
			printChosen(cmd.OutOrStdout(), ui.Chosen(ctrl.Lists()))
			return nil
		},
	}
	cmd.Flags().StringVar(&ip, "ip", "", "IP address used for country pre-selection (GEOIP_IP)")
	return cmd
}

// 文档注释：按 IP 推断的默认国家
// 返回：未配置数据库、无可用 IP 或查询失败时返回 nil（不预选，只记日志）。
func (a *app) preselect(ip string) func(location.Option) bool {
	if a.cfg.GeoIP.DB == "" {
		return nil
	}
	if ip == "" {
		ip = a.cfg.GeoIP.IP
	}
	if ip == "" {
		logger.L().Infow("geoip_skip", "reason", "no ip")
		return nil
	}
	loc, err := geo.Open(a.cfg.GeoIP.DB)
	if err != nil {
		logger.L().Errorw("geoip_open_error", "path", a.cfg.GeoIP.DB, "err", err)
		return nil
	}
	defer loc.Close()
	c, err := loc.Lookup(ip)
	if err != nil {
		logger.L().Infow("geoip_lookup_miss", "ip", ip, "err", err)
		return nil
	}
	return c.Match
}

func printChosen(w io.Writer, chosen []location.Option) {
	if len(chosen) == 0 {
		fmt.Fprintln(w, "nothing selected")
		return
	}
	for i, o := range chosen {
		fmt.Fprintf(w, "%s\t%s\t%s\n", location.Levels[i], o.ID, o.Label)
	}
}

func (a *app) listCmd() *cobra.Command {
	var country, state string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print countries, the states of --country, or the cities of --state",
		Long: `Prints one "id<TAB>label" line per option, in the order the location API returned them.
When the API answers with a failure, its message is printed to stderr verbatim.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			errOut := cmd.ErrOrStderr()
			ctrl := location.NewController(
				location.NewClient(a.cfg.Location.URL, a.requestClient()),
				location.NotifierFunc(func(msg string) { fmt.Fprintln(errOut, msg) }),
			)
			var (
				res location.Result
				err error
			)
			switch {
			case state != "":
				res, err = ctrl.LoadCities(cmd.Context(), state)
			case country != "":
				res, err = ctrl.LoadStates(cmd.Context(), country)
			default:
				res, err = ctrl.LoadCountries(cmd.Context())
			}
			if err != nil {
				return err
			}
			if s, ok := res.(location.Success); ok {
				for _, o := range s.Options {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", o.ID, o.Label)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&country, "country", "", "country id whose states to list")
	cmd.Flags().StringVar(&state, "state", "", "state id whose cities to list")
	return cmd
}
