package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/sirupsen/logrus"

	"github.com/commoditydesk/riskengine/internal/models"
)

// Distributor delivers report content to recipients in parallel, one attempt
// per recipient with an individual timeout so a single unreachable recipient
// cannot stall the batch.
type Distributor struct {
	sender  Sender
	timeout time.Duration
	logger  *logrus.Logger
}

// NewDistributor creates a report distributor.
func NewDistributor(sender Sender, timeout time.Duration, logger *logrus.Logger) *Distributor {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Distributor{sender: sender, timeout: timeout, logger: logger}
}

// Distribute attempts delivery to every recipient independently and records
// the outcome of each attempt.
func (d *Distributor) Distribute(ctx context.Context, recipients []string, content []byte) []models.DistributionResult {
	results := make([]models.DistributionResult, len(recipients))
	var wg sync.WaitGroup
	for i, recipient := range recipients {
		wg.Add(1)
		go func(i int, recipient string) {
			defer wg.Done()
			results[i] = d.deliver(ctx, recipient, content)
		}(i, recipient)
	}
	wg.Wait()

	delivered := 0
	for _, r := range results {
		if r.Delivered {
			delivered++
		}
	}
	d.logger.WithFields(logrus.Fields{
		"recipients": len(recipients),
		"delivered":  delivered,
	}).Info("Report distribution complete")

	return results
}

func (d *Distributor) deliver(ctx context.Context, recipient string, content []byte) models.DistributionResult {
	result := models.DistributionResult{Recipient: recipient, AttemptedAt: time.Now()}

	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := d.sender.Send(sendCtx, recipient, content); err != nil {
		deliveryErr := &DistributionError{Recipient: recipient, Err: err}
		d.logger.WithFields(logrus.Fields{"recipient": recipient}).Warnf("%v", deliveryErr)
		result.Error = deliveryErr.Error()
		return result
	}
	result.Delivered = true
	return result
}

// TelegramSender delivers report content to a telegram chat. The recipient
// address is the chat ID.
type TelegramSender struct {
	bot *bot.Bot
}

// NewTelegramSender creates a telegram transport. An empty token yields a
// sender that fails every delivery, which keeps distribution results honest
// in environments without a bot.
func NewTelegramSender(token string) (*TelegramSender, error) {
	if token == "" {
		return &TelegramSender{}, nil
	}
	b, err := bot.New(token)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telegram bot: %w", err)
	}
	return &TelegramSender{bot: b}, nil
}

// Send pushes the rendered report to the recipient chat.
func (t *TelegramSender) Send(ctx context.Context, recipient string, content []byte) error {
	if t.bot == nil {
		return fmt.Errorf("telegram bot not initialized")
	}
	chatID, err := strconv.ParseInt(recipient, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat ID %q: %w", recipient, err)
	}
	_, err = t.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   string(content),
	})
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}
