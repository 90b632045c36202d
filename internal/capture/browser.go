package capture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Page is a Capturer backed by a live browser page. Manual tests that
// target a URL show the operator the real page; on failure the evidence
// is that page, not the whole desktop.
type Page struct {
	browser *rod.Browser
	page    *rod.Page
	timeout time.Duration
}

// OpenPage launches a visible browser, navigates it to url and returns a
// capturer for the resulting page. Close must be called when the test is
// over.
func OpenPage(ctx context.Context, url string, timeout time.Duration) (*Page, error) {
	controlURL, err := launcher.New().Headless(false).Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		_ = browser.Close()
		return nil, fmt.Errorf("open page %s: %w", url, err)
	}

	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Page{browser: browser, page: page, timeout: timeout}, nil
}

// Capture screenshots the page viewport.
func (p *Page) Capture(ctx context.Context) (image.Image, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	data, err := p.page.Context(ctx).Screenshot(false, nil)
	if err != nil {
		return nil, fmt.Errorf("page screenshot: %w", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode page screenshot: %w", err)
	}
	return img, nil
}

// Close shuts the page and its browser down.
func (p *Page) Close() error {
	if p.page != nil {
		_ = p.page.Close()
		p.page = nil
	}
	if p.browser != nil {
		err := p.browser.Close()
		p.browser = nil
		return err
	}
	return nil
}
