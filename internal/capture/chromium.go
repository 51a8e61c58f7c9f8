// Package capture screenshots the daemon's /schedule page.
package capture

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"reminder/internal/jsonfile"
	appLog "reminder/internal/log"
)

const (
	DefaultWidth   = 1400
	DefaultHeight  = 900
	DefaultTimeout = 30 * time.Second
)

type Options struct {
	// URL of the page, e.g. "http://127.0.0.1:8089/schedule?parity=odd".
	URL string

	OutputPath string

	// Width and Height are the viewport size; zero means the defaults.
	Width  int
	Height int

	// Timeout bounds the whole capture; zero means DefaultTimeout.
	Timeout time.Duration

	// Username and Password are sent as HTTP Basic Auth when set.
	Username string
	Password string
}

// CaptureSchedulePNG opens opts.URL in headless Chromium, waits until the
// page marks itself data-ready="true" and writes a full-page PNG.
func CaptureSchedulePNG(parent context.Context, opts Options) error {
	if opts.URL == "" {
		return errors.New("capture: URL is required")
	}
	if opts.OutputPath == "" {
		return errors.New("capture: OutputPath is required")
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	ctx, cancel := chromedp.NewContext(parent)
	defer cancel()
	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	var png []byte
	tasks := chromedp.Tasks{chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height))}
	if opts.Username != "" {
		tasks = append(tasks, basicAuth(opts.Username, opts.Password))
	}
	tasks = append(tasks,
		chromedp.Navigate(opts.URL),
		chromedp.WaitVisible(`[data-ready="true"]`, chromedp.ByQuery),
		chromedp.FullScreenshot(&png, 100),
	)

	if err := chromedp.Run(ctx, tasks); err != nil {
		return fmt.Errorf("capture: chromedp run failed: %w", err)
	}
	if err := jsonfile.WriteAtomic(opts.OutputPath, png, 0o644); err != nil {
		return fmt.Errorf("capture: write PNG: %w", err)
	}
	appLog.Info("schedule captured", "url", opts.URL, "path", opts.OutputPath, "bytes", len(png))
	return nil
}

func basicAuth(user, pass string) chromedp.Action {
	token := base64.StdEncoding.EncodeToString([]byte(user + ":" + pass))
	return chromedp.Tasks{
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{"Authorization": "Basic " + token}),
	}
}
