package capture

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Page is what one capture produces: rendered HTML plus an optional
// full-page screenshot. The engine consumes the HTML; the screenshot only
// feeds the snapshot's screenshot digest.
type Page struct {
	HTML           string
	Screenshot     []byte
	ScreenshotPath string
}

// Capturer drives a headless browser to render pricing pages. Rendering
// details (viewport, wait conditions) live here, not in the engine.
type Capturer struct {
	browser *rod.Browser
	outDir  string
}

// New launches the headless browser. outDir receives screenshot files; an
// empty outDir disables writing screenshots to disk.
func New(outDir string) (*Capturer, error) {
	l := launcher.New().
		Headless(true).
		NoSandbox(true).
		Leakless(false)

	// Use system Chromium in Docker, auto-detect locally
	if _, err := os.Stat("/usr/bin/chromium-browser"); err == nil {
		l = l.Bin("/usr/bin/chromium-browser")
		log.Printf("Using system Chromium in Docker environment")
	}

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %v", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %v", err)
	}

	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			log.Printf("Screenshot dir unavailable, disabling screenshots: %v", err)
			outDir = ""
		}
	}

	return &Capturer{browser: browser, outDir: outDir}, nil
}

// Close shuts the browser down
func (c *Capturer) Close() {
	if c.browser != nil {
		c.browser.MustClose()
	}
}

// Capture renders url and returns its HTML and a full-page screenshot.
func (c *Capturer) Capture(url string) (*Page, error) {
	page, err := c.browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %v", err)
	}
	defer page.MustClose()

	page.MustSetViewport(1920, 1080, 1.0, false)
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("page failed to load: %v", err)
	}

	// Pricing grids are routinely assembled client-side; give hydration a
	// moment and wait for the DOM to settle.
	time.Sleep(2 * time.Second)
	page.MustWaitStable()

	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("failed to read page HTML: %v", err)
	}

	result := &Page{HTML: html}

	shot, err := page.Screenshot(true, nil)
	if err != nil {
		log.Printf("Screenshot failed for %s: %v", url, err)
		return result, nil
	}
	result.Screenshot = shot

	if c.outDir != "" {
		name := fmt.Sprintf("shot-%d.png", time.Now().UnixNano())
		path := filepath.Join(c.outDir, name)
		if err := os.WriteFile(path, shot, 0o644); err != nil {
			log.Printf("Failed to write screenshot %s: %v", path, err)
		} else {
			result.ScreenshotPath = path
		}
	}

	return result, nil
}
