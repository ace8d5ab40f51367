package bot

import (
	"context"
	"html"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/eguide/guidebook/internal/config"
)

// Poller runs the two recurring tasks of the relay process: draining inbound
// Telegram updates and delivering pending notifications. The tasks are
// independently scheduled; a slow or failing tick of one never delays the
// other, and an overlapping tick of the same task is skipped, not queued.
type Poller struct {
	bot      *Client
	relay    *RelayClient
	dispatch *Dispatcher

	baseURL      string
	pollTimeout  int
	updateEvery  cron.Schedule
	deliverEvery cron.Schedule

	// Last processed update id. Kept in memory only: after a restart the
	// next getUpdates re-reads Telegram's retained backlog, so updates are
	// processed at least once, with a bounded duplicate window.
	offset int64
}

func NewPoller(c *Client, relay *RelayClient, cfg config.Bot) *Poller {
	return &Poller{
		bot:          c,
		relay:        relay,
		dispatch:     NewDispatcher(c, relay),
		baseURL:      cfg.BaseURL,
		pollTimeout:  cfg.PollTimeout,
		updateEvery:  cron.Every(cfg.UpdateEvery),
		deliverEvery: cron.Every(cfg.DeliverEvery),
	}
}

// Run starts the scheduler and blocks until ctx is cancelled, then lets any
// in-flight tick finish before returning.
func (p *Poller) Run(ctx context.Context) {
	cronLog := cron.PrintfLogger(&log.Logger)
	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cronLog),
		cron.Recover(cronLog),
	))
	c.Schedule(p.updateEvery, cron.FuncJob(p.drainUpdates))
	c.Schedule(p.deliverEvery, cron.FuncJob(p.deliverNotifications))

	log.Info().Msg("poller started")
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	log.Info().Msg("poller stopped")
}

// drainUpdates fetches updates past the cursor and dispatches each one. The
// cursor only advances past an update after it was processed; on an error the
// rest of the batch is left for the next tick.
func (p *Poller) drainUpdates() {
	updates, err := p.bot.GetUpdates(p.offset+1, p.pollTimeout)
	if err != nil {
		log.Warn().Err(err).Msg("get updates failed")
		return
	}
	if len(updates) == 0 {
		log.Debug().Msg("no updates received")
		return
	}

	processed := 0
	for i := range updates {
		if err := p.dispatch.Handle(&updates[i]); err != nil {
			log.Error().Err(err).Int64("update", updates[i].UpdateID).Msg("update not processed")
			break
		}
		p.offset = updates[i].UpdateID
		processed++
	}
	log.Info().Int("count", processed).Msg("processed updates")
}

// deliverNotifications pushes every deliverable notification to its chat and
// acknowledges each one right after a successful send. A failed send leaves
// the entry pending; a failed acknowledgment after a successful send risks a
// duplicate on the next cycle, which is the accepted at-least-once tradeoff.
func (p *Poller) deliverNotifications() {
	entries, err := p.relay.PendingNotifications()
	if err != nil {
		log.Warn().Err(err).Msg("fetch pending notifications failed")
		return
	}
	if len(entries) == 0 {
		log.Debug().Msg("no pending notifications")
		return
	}

	delivered := 0
	for _, e := range entries {
		text := notificationText(p.baseURL, e.Notification)
		if err := p.bot.SendMessage(e.Account.TelegramID, text); err != nil {
			log.Error().Err(err).Uint("notification", e.Notification.ID).Msg("send failed, left pending")
			continue
		}
		res, err := p.relay.MarkDelivered(e.Notification.ID)
		switch {
		case err != nil:
			log.Error().Err(err).Uint("notification", e.Notification.ID).
				Msg("delivered but not acknowledged, may be re-sent")
		case !res.Success:
			log.Warn().Str("message", res.Message).Uint("notification", e.Notification.ID).
				Msg("acknowledgment rejected")
		}
		delivered++
	}
	log.Info().Int("count", delivered).Msg("delivered notifications")
}

// notificationText renders the outgoing message: the stored text plus, when a
// relative link is present, an HTML "Details" hyperlink resolved against the
// platform base URL.
func notificationText(baseURL string, n PendingNotification) string {
	if n.Link == nil {
		return n.Text
	}
	abs := strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(*n.Link, "/")
	return n.Text + "\n\n" + hlink("Details", abs)
}

func hlink(label, url string) string {
	return `<a href="` + html.EscapeString(url) + `">` + html.EscapeString(label) + `</a>`
}
