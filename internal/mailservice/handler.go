package mailservice

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/mapleroot/pressroom/internal/common"
	"golang.org/x/exp/rand"
)

func NewMailService(mb common.MessageConsumer, host, username, password, sender, adminEmail string, port int, logger *slog.Logger) *MailService {
	ctx, cancel := context.WithCancel(context.Background())
	return &MailService{
		mb:         mb,
		m:          NewMailer(host, port, username, password, sender, NewTemplate()),
		adminEmail: adminEmail,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// SendModerationNotice consumes comment.created events and emails the
// site admin a moderation notice for each newly submitted comment.
func (s *MailService) SendModerationNotice() {
	msgs, err := s.mb.Consume(common.CommentCreatedKey, common.CommentExchange, common.CommentCreatedQueue)
	if err != nil {
		s.logger.Error("could not consume message", slog.String("error", err.Error()))
		return
	}

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				var data struct {
					BlogID     string `json:"blog_id"`
					AuthorName string `json:"author_name"`
					Content    string `json:"content"`
				}

				err := json.Unmarshal(msg.Body, &data)
				if err != nil {
					s.logger.Error("could not unmarshal message", slog.String("error", err.Error()))
					continue
				}

				payload := struct {
					BlogID     string
					AuthorName string
					Content    string
				}{
					BlogID:     data.BlogID,
					AuthorName: data.AuthorName,
					Content:    data.Content,
				}

				// using exponential backoff with jitter
				const maxRetries = 5
				const baseDelay = 500 * time.Millisecond

				var attempt int
				for attempt = 0; attempt < maxRetries; attempt++ {
					err = s.m.send(s.adminEmail, payload, "comment_notification.html")
					if err == nil {
						s.logger.Info("moderation notice sent", slog.String("blog_id", data.BlogID))
						msg.Ack(false)
						break
					}

					delay := time.Duration(rand.Int63n(int64(baseDelay) << uint(attempt)))
					s.logger.Info("delaying moderation notice", slog.String("blog_id", data.BlogID), slog.Int("attempt", attempt), slog.Duration("delay", delay))
					time.Sleep(delay)
				}

				if attempt == maxRetries {
					s.logger.Error("could not send moderation notice", slog.String("blog_id", data.BlogID))
					msg.Ack(false)
				}

			case <-s.ctx.Done():
				s.logger.Info("stopping SendModerationNotice due to context cancellation")
				return
			}
		}
	}()
}

func (s *MailService) Close() {
	s.cancel()
}
