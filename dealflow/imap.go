package dealflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"go.uber.org/zap"

	"github.com/tashasho/MCP-Server-BNV/logger"
)

type IMAPConfig struct {
	Addr     string
	Username string
	Password string
	Mailbox  string
	Lookback time.Duration
	// Insecure dials without TLS; used against local test servers.
	Insecure bool
}

// IMAPInbox polls a mailbox for recent deal-flow emails.
type IMAPInbox struct {
	cfg       IMAPConfig
	extractor *Extractor
	log       *zap.Logger
}

func NewIMAPInbox(cfg IMAPConfig, extractor *Extractor, log *zap.Logger) *IMAPInbox {
	if cfg.Mailbox == "" {
		cfg.Mailbox = "INBOX"
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = 24 * time.Hour
	}
	if extractor == nil {
		extractor = NewExtractor(nil)
	}
	return &IMAPInbox{cfg: cfg, extractor: extractor, log: logger.OrNop(log)}
}

// Result is the outcome for one fetched message. Deal is only meaningful
// when OK is set.
type Result struct {
	SeqNum uint32 `json:"seq_num"`
	Deal   Deal   `json:"deal"`
	OK     bool   `json:"ok"`
	Err    error  `json:"-"`
}

// Poll fetches every message received within the lookback window and
// extracts deals from them. A connection or search failure fails the whole
// poll; a message that cannot be parsed only fails its own Result.
func (in *IMAPInbox) Poll(ctx context.Context) ([]Result, error) {
	c, err := in.dial()
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", in.cfg.Addr, err)
	}
	defer c.Logout()

	// go-imap v1 has no context support; closing the connection unblocks it
	stop := context.AfterFunc(ctx, func() { _ = c.Terminate() })
	defer stop()

	if err := c.Login(in.cfg.Username, in.cfg.Password); err != nil {
		return nil, fmt.Errorf("imap login: %w", err)
	}
	if _, err := c.Select(in.cfg.Mailbox, true); err != nil {
		return nil, fmt.Errorf("selecting %s: %w", in.cfg.Mailbox, err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.Since = time.Now().Add(-in.cfg.Lookback)
	ids, err := c.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", in.cfg.Mailbox, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(ids...)
	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{section.FetchItem()}

	messages := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqset, items, messages)
	}()

	var results []Result
	for msg := range messages {
		results = append(results, in.process(msg, section))
	}
	if err := <-done; err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return results, ctxErr
		}
		return results, fmt.Errorf("fetching messages: %w", err)
	}

	in.log.Info("inbox polled",
		zap.String("mailbox", in.cfg.Mailbox),
		zap.Int("messages", len(results)),
	)
	return results, nil
}

func (in *IMAPInbox) process(msg *imap.Message, section *imap.BodySectionName) Result {
	res := Result{SeqNum: msg.SeqNum}
	body := msg.GetBody(section)
	if body == nil {
		res.Err = errors.New("server returned no message body")
		return res
	}

	res.Deal, res.OK, res.Err = in.extractor.Extract(body)
	if res.Err != nil {
		in.log.Warn("message skipped", zap.Uint32("seq", msg.SeqNum), zap.Error(res.Err))
	}
	return res
}

func (in *IMAPInbox) dial() (*client.Client, error) {
	if in.cfg.Insecure {
		return client.Dial(in.cfg.Addr)
	}
	return client.DialTLS(in.cfg.Addr, nil)
}

// Deals keeps the successfully extracted deals of a poll.
func Deals(results []Result) []Deal {
	var deals []Deal
	for _, r := range results {
		if r.OK && r.Err == nil {
			deals = append(deals, r.Deal)
		}
	}
	return deals
}
