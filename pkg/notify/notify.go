// Package notify 把断线和恢复推送到Discord频道
// 发送在独立的goroutine中进行，消费者只做非阻塞入队
package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"gopkg.in/op/go-logging.v1"

	"github.com/Kevin-Rudy/pingtrack/pkg/history"
	"github.com/Kevin-Rudy/pingtrack/pkg/monitor"
)

const (
	colorRed   = 15158332
	colorGreen = 3066993

	queueSize   = 16
	clockLayout = "03:04:05 PM"
)

// messageSender discordgo.Session中用到的部分
type messageSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Notifier Discord通知器
type Notifier struct {
	session   *discordgo.Session
	sender    messageSender
	channelID string
	log       *logging.Logger

	queue     chan *discordgo.MessageEmbed
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewDiscord 创建Discord通知器并校验token
func NewDiscord(token, channelID string, log *logging.Logger) (*Notifier, error) {
	if token == "" || channelID == "" {
		return nil, fmt.Errorf("notify: discord token and channel are required")
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	user, err := session.User("@me")
	if err != nil {
		return nil, fmt.Errorf("failed to get bot user: %w", err)
	}

	n := newNotifier(session, channelID, log)
	n.session = session
	n.log.Noticef("discord notifications enabled as %s, channel %s", user.Username, channelID)
	return n, nil
}

func newNotifier(sender messageSender, channelID string, log *logging.Logger) *Notifier {
	if log == nil {
		log = logging.MustGetLogger("notify")
	}
	n := &Notifier{
		sender:    sender,
		channelID: channelID,
		log:       log,
		queue:     make(chan *discordgo.MessageEmbed, queueSize),
	}
	n.wg.Add(1)
	go n.worker()
	return n
}

// Subscribe 注册到监控器事件，必须在Run之前调用
func (n *Notifier) Subscribe(events *monitor.Events) {
	events.Outage.Subscribe(func(o monitor.Outage) {
		switch o.Transition {
		case history.OutageConfirmed:
			n.enqueue(disconnectedEmbed(o))
		case history.Recovered:
			if o.Notified {
				n.enqueue(recoveredEmbed(o))
			}
		}
	})
}

// enqueue 队列满时丢弃，不阻塞消费者
func (n *Notifier) enqueue(embed *discordgo.MessageEmbed) {
	select {
	case n.queue <- embed:
	default:
		n.log.Warningf("notification queue full, dropped '%s'", embed.Title)
	}
}

func (n *Notifier) worker() {
	defer n.wg.Done()
	for embed := range n.queue {
		if _, err := n.sender.ChannelMessageSendEmbed(n.channelID, embed); err != nil {
			n.log.Errorf("failed to send '%s': %v", embed.Title, err)
			continue
		}
		n.log.Debugf("sent '%s'", embed.Title)
	}
}

// Close 发送完队列中剩余的消息后关闭
func (n *Notifier) Close() {
	n.closeOnce.Do(func() {
		close(n.queue)
		n.wg.Wait()
		if n.session != nil {
			n.session.Close()
		}
	})
}

func disconnectedEmbed(o monitor.Outage) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       monitor.DisconnectedText,
		Description: fmt.Sprintf("No reply since %s", o.Since.Format(clockLayout)),
		Color:       colorRed,
		Timestamp:   o.At.Format(time.RFC3339),
	}
}

func recoveredEmbed(o monitor.Outage) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "Reconnected",
		Description: fmt.Sprintf("Disconnected at %s for %d seconds",
			o.Since.Format(clockLayout), int64(o.At.Sub(o.Since)/time.Second)),
		Color:     colorGreen,
		Timestamp: o.At.Format(time.RFC3339),
	}
}
