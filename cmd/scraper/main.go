package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"go-upwork-automation/internal/auth"
	"go-upwork-automation/internal/baserow"
	"go-upwork-automation/internal/browser"
	"go-upwork-automation/internal/config"
	"go-upwork-automation/internal/reporter"
	"go-upwork-automation/internal/scraper"
	collyscraper "go-upwork-automation/internal/scraper/colly"
	pwscraper "go-upwork-automation/internal/scraper/playwright"
	"go-upwork-automation/internal/session"
	"go-upwork-automation/internal/sink"
)

func main() {
	os.Exit(run())
}

func run() int {
	query := flag.String("query", "golang", "job search query")
	maxPages := flag.Int("max-pages", 3, "maximum result pages to scrape")
	engineName := flag.String("engine", "playwright", "scraping backend: playwright or colly")
	headless := flag.Bool("headless", true, "run the browser headless")
	daysToKeep := flag.Int("days-to-keep", 0, "retention window in days (0 uses config)")
	noSync := flag.Bool("no-sync", false, "skip uploading to the remote store")
	dedupeRemote := flag.Bool("dedupe-remote", false, "delete older duplicate rows already in the remote store")
	flag.Parse()

	//load config
	cfg := config.Load()
	cfg.Headless = *headless
	if *daysToKeep > 0 {
		cfg.RetentionDays = *daysToKeep
	}
	log.Printf("🔧 Config loaded. Query: %q, engine: %s", *query, *engineName)

	//setup context with timeout = 10 mins
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	log.Println("🚀 Starting Upwork Automation...")

	//init playwright manager
	pwManager, err := browser.NewPlaywright(cfg.Headless)
	if err != nil {
		log.Printf("❌ Failed to init Playwright: %v", err)
		return 1
	}
	//close playwright manager when application stops
	defer pwManager.Close()

	store := session.NewStore(cfg.CookiesPath, cfg.CookieMaxAgeDays)
	flow := auth.New(cfg, store)

	var engine scraper.Engine
	switch *engineName {
	case "playwright":
		engine = pwscraper.New(cfg, flow, pwManager)
	case "colly":
		engine = collyscraper.New(cfg, flow, pwManager)
	default:
		log.Printf("❌ Unknown engine %q (want playwright or colly)", *engineName)
		return 2
	}

	summary := reporter.Summary{Query: *query, Engine: engine.Name()}

	result, err := engine.Scrape(ctx, *query, *maxPages)
	if err != nil {
		//authentication failures produce no output at all
		log.Printf("❌ Scrape failed: %v", err)
		notify(cfg, reporter.Summary{Query: *query, Engine: engine.Name(), Err: err})
		return 1
	}

	summary.Scraped = len(result.Jobs)
	summary.Skipped = result.TilesSkipped
	log.Printf("📦 Total jobs collected: %d (%d tiles skipped, %d pages skipped)",
		len(result.Jobs), result.TilesSkipped, result.PagesSkipped)

	//save results locally, regardless of what the remote sync does next
	outputFile, err := sink.SaveJobs(result.Jobs, cfg.OutputDir)
	if err != nil {
		log.Printf("❌ Failed to save jobs: %v", err)
		notify(cfg, summaryWithErr(summary, err))
		return 1
	}
	summary.OutputFile = outputFile

	exitCode := 0
	if *noSync {
		log.Println("ℹ️ Remote sync disabled, done.")
	} else {
		client := baserow.NewClient(cfg)

		created, err := client.UploadMany(ctx, result.Jobs, true)
		summary.Uploaded = len(created)
		if err != nil {
			var uerr *baserow.UploadError
			if errors.As(err, &uerr) {
				summary.Uploaded = uerr.Created
			}
			log.Printf("⚠️ Upload failed: %v (local copy kept at %s)", err, outputFile)
			summary.Err = err
			exitCode = 1
		} else {
			summary.Duplicates = len(result.Jobs) - summary.Uploaded

			if *dedupeRemote {
				n, err := client.DeleteDuplicateRows(ctx)
				if err != nil {
					log.Printf("⚠️ Remote dedup failed: %v", err)
					summary.Err = err
					exitCode = 1
				} else {
					log.Printf("🧹 Removed %d duplicate rows from the remote store", n)
				}
			}

			deleted, err := client.CleanUpOldRows(ctx, cfg.RetentionDays)
			summary.Deleted = deleted
			if err != nil {
				log.Printf("⚠️ Cleanup failed: %v", err)
				summary.Err = err
				exitCode = 1
			}
		}
	}

	log.Printf("📊 Run summary: scraped=%d skipped=%d uploaded=%d duplicates=%d deleted=%d",
		summary.Scraped, summary.Skipped, summary.Uploaded, summary.Duplicates, summary.Deleted)

	notify(cfg, summary)
	log.Println("🏁 Execution finished.")
	return exitCode
}

func summaryWithErr(s reporter.Summary, err error) reporter.Summary {
	s.Err = err
	return s
}

// notify sends the run summary over Telegram when a bot token is
// configured. Reporting problems never change the exit code.
func notify(cfg *config.Config, s reporter.Summary) {
	if cfg.TelegramToken == "" || cfg.TelegramChatID == 0 {
		return
	}
	bot, err := reporter.NewTelegramReporter(cfg)
	if err != nil {
		log.Printf("⚠️ Failed to init Telegram Bot: %v", err)
		return
	}
	if err := bot.SendSummary(s); err != nil {
		log.Printf("⚠️ Failed to send summary to Telegram: %v", err)
	}
}
