// Command capture drives a headless browser through the dashboard: it fills
// the form, waits for the chart or the error panel and saves a screenshot.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"

	"github.com/jwaldner/stockai/internal/form"
	"github.com/jwaldner/stockai/internal/logger"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Dashboard address")
	symbol := flag.String("symbol", "AAPL", "Stock symbol to predict")
	days := flag.Int("days", form.DefaultDays, "Prediction days (7, 14 or 30)")
	interval := flag.String("interval", form.DefaultInterval, "Data interval (1d, 1wk or 1mo)")
	out := flag.String("out", "prediction.png", "Output PNG path")
	timeout := flag.Duration("timeout", 2*time.Minute, "Maximum time to wait for the result")
	headless := flag.Bool("headless", true, "Run the browser without a window")
	flag.Parse()

	logger.InitWithWriter("info", os.Stderr)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("headless", *headless),
		chromedp.WindowSize(1280, 900),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	defer cancelAlloc()

	ctx, cancelCtx := chromedp.NewContext(allocCtx)
	defer cancelCtx()

	ctx, cancelTimeout := context.WithTimeout(ctx, *timeout)
	defer cancelTimeout()

	png, panel, err := capture(ctx, *baseURL, *symbol, *days, *interval)
	if err != nil {
		log.Fatalf("capture failed: %v", err)
	}

	if err := os.WriteFile(*out, png, 0644); err != nil {
		log.Fatalf("write %s: %v", *out, err)
	}
	logger.Info.Printf("📸 CAPTURE: %s %dd %s -> %s (%s panel, %d bytes)", *symbol, *days, *interval, *out, panel, len(png))
	fmt.Println(*out)
}

// capture submits the form and screenshots the page once the result panel
// (chart or error) replaced the spinner
func capture(ctx context.Context, baseURL, symbol string, days int, interval string) ([]byte, string, error) {
	var png []byte
	var panel string

	err := chromedp.Run(ctx,
		emulation.SetDeviceMetricsOverride(1280, 900, 1, false),
		chromedp.Navigate(baseURL+"/"),
		chromedp.WaitReady("#predict-form", chromedp.ByQuery),
		chromedp.SetValue("#symbol", symbol, chromedp.ByQuery),
		chromedp.SetValue("#days", strconv.Itoa(days), chromedp.ByQuery),
		chromedp.SetValue("#interval", interval, chromedp.ByQuery),
		chromedp.Click("#submit-button", chromedp.ByQuery),
		chromedp.WaitVisible(`#panel[data-panel="chart"], #panel[data-panel="error"]`, chromedp.ByQuery),
		chromedp.AttributeValue("#panel", "data-panel", &panel, nil, chromedp.ByQuery),
		chromedp.FullScreenshot(&png, 100),
	)
	if err != nil {
		return nil, "", err
	}
	return png, panel, nil
}
