package reporter

import (
	"fmt"

	"go-upwork-automation/internal/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Summary is one scrape-and-sync run's outcome.
type Summary struct {
	Query      string
	Engine     string
	Scraped    int
	Skipped    int
	Uploaded   int
	Duplicates int
	Deleted    int
	OutputFile string
	Err        error
}

type TelegramReporter struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramReporter(cfg *config.Config) (*TelegramReporter, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}

	//turn this on in case of debug
	//bot.Debug = true

	return &TelegramReporter{
		bot:    bot,
		chatID: cfg.TelegramChatID,
	}, nil
}

func (t *TelegramReporter) SendMessage(text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = "HTML" //use HTML for bold/italic
	_, err := t.bot.Send(msg)
	return err
}

func (t *TelegramReporter) SendSummary(s Summary) error {
	text := fmt.Sprintf(
		"📊 <b>Upwork scrape finished</b>\n"+
			"🔍 Query: %s (%s)\n"+
			"📦 Scraped: %d jobs (%d tiles skipped)\n"+
			"☁️ Uploaded: %d new, %d duplicates\n"+
			"🧹 Deleted: %d old rows\n"+
			"💾 Saved to %s",
		s.Query,
		s.Engine,
		s.Scraped,
		s.Skipped,
		s.Uploaded,
		s.Duplicates,
		s.Deleted,
		s.OutputFile,
	)
	if s.Err != nil {
		text += fmt.Sprintf("\n⚠️ <b>Error</b>: %v", s.Err)
	}
	return t.SendMessage(text)
}

func (t *TelegramReporter) SendError(errReq error) error {
	text := fmt.Sprintf("⚠️ <b>Scraper Error</b>:\n%v", errReq)
	return t.SendMessage(text)
}
