package render

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/mindprintlabs/mindprint-backend/internal/profile"
)

// ChromeRenderer prints the HTML report to PDF through a headless
// browser. The browser is launched lazily on first use and reused for
// the process lifetime; Shutdown closes it.
type ChromeRenderer struct {
	bin string

	mu      sync.Mutex
	browser *rod.Browser
}

func NewChromeRenderer(bin string) *ChromeRenderer {
	return &ChromeRenderer{bin: bin}
}

func (r *ChromeRenderer) RenderPDF(ctx context.Context, rec profile.Record) ([]byte, error) {
	html, err := BuildHTML(rec)
	if err != nil {
		return nil, err
	}

	browser, err := r.ensureStarted()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("%w: open page: %v", ErrRender, err)
	}
	defer page.Close()
	page = page.Context(ctx)

	if err := page.SetDocumentContent(html); err != nil {
		return nil, fmt.Errorf("%w: set content: %v", ErrRender, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: wait load: %v", ErrRender, err)
	}

	stream, err := page.PDF(&proto.PagePrintToPDF{
		PrintBackground:   true,
		PreferCSSPageSize: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: print: %v", ErrRender, err)
	}
	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("%w: read stream: %v", ErrRender, err)
	}
	return data, nil
}

func (r *ChromeRenderer) ensureStarted() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser != nil {
		return r.browser, nil
	}

	launch := launcher.New().Headless(true).NoSandbox(true)
	if r.bin != "" {
		launch = launch.Bin(r.bin)
	}
	url, err := launch.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}
	r.browser = browser
	return browser, nil
}

// Shutdown closes the browser if one was started.
func (r *ChromeRenderer) Shutdown() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser == nil {
		return nil
	}
	err := r.browser.Close()
	r.browser = nil
	return err
}
