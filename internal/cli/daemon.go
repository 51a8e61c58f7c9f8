package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"reminder/internal/capture"
	"reminder/internal/schedule"
)

// daemonClient talks to the reminderd HTTP API.
type daemonClient struct {
	base string
	user string
	pass string
	http *http.Client
}

func (a *app) client() (*daemonClient, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	c := &daemonClient{base: "http://" + cfg.Listen, http: &http.Client{Timeout: 10 * time.Second}}
	if cfg.BasicAuth != nil {
		c.user, c.pass = cfg.BasicAuth.Username, cfg.BasicAuth.Password
	}
	return c, nil
}

func (c *daemonClient) post(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, nil)
	if err != nil {
		return err
	}
	if c.user != "" {
		req.SetBasicAuth(c.user, c.pass)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("daemon not reachable at %s: %w", c.base, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	var body struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(data, &body) != nil || body.Error == "" {
		body.Error = string(data)
	}
	return fmt.Errorf("daemon: %s: %s", resp.Status, body.Error)
}

func newUpdateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Validate the schedule and make the daemon reload it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.validate(); err != nil {
				return err
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			if err := c.post(cmd.Context(), "/api/reload"); err != nil {
				return err
			}
			fmt.Fprintln(a.out, successStyle.Render("Reminder daemon reloaded the schedule"))
			return nil
		},
	}
}

func newStopCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the reminder daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			if err := c.post(cmd.Context(), "/api/stop"); err != nil {
				return err
			}
			fmt.Fprintln(a.out, successStyle.Render("Reminder daemon is stopping"))
			return nil
		},
	}
}

func newViewCmd(a *app) *cobra.Command {
	var (
		parity string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Save a screenshot of the week grid served by the daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if parity == "" {
				now, err := a.localNow()
				if err != nil {
					return err
				}
				parity = schedule.SelectWeek(now).String()
			}
			if _, err := schedule.ParseParity(parity); err != nil {
				return err
			}
			if out == "" {
				out = "schedule_" + parity + ".png"
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			err = capture.CaptureSchedulePNG(cmd.Context(), capture.Options{
				URL:        c.base + "/schedule?parity=" + url.QueryEscape(parity),
				OutputPath: out,
				Username:   c.user,
				Password:   c.pass,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, successStyle.Render("Schedule saved to "+out))
			return nil
		},
	}
	cmd.Flags().StringVar(&parity, "parity", "", "Week to render: odd or even (default: this week)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "PNG output path (default: schedule_<parity>.png)")
	return cmd
}
