package tui

import (
	"context"
	"errors"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muurk/midnightbrew/internal/carousel"
	"github.com/muurk/midnightbrew/internal/catalog"
	"github.com/muurk/midnightbrew/internal/clock"
	"github.com/muurk/midnightbrew/internal/logging"
	"github.com/muurk/midnightbrew/internal/stream"
	"go.uber.org/zap"
)

// swipeDistance is the horizontal distance of a keyboard swipe, in pixels.
const swipeDistance = 80.0

// feedUpdate is delivered to the testimonials screen whenever the carousel
// changes. Items is only set when the sequence itself changes.
type feedUpdate struct {
	Items []catalog.Testimonial
	Frame carousel.Frame
	Err   error
}

// feedMsg delivers an update from a specific feed, so updates from a feed
// that has since been replaced can be told apart.
type feedMsg struct {
	feed   testimonialFeed
	update feedUpdate
}

// feedClosedMsg reports that a feed will deliver no more updates.
type feedClosedMsg struct {
	feed testimonialFeed
}

// testimonialFeed drives the testimonial carousel, either in process or
// through a storefront server.
type testimonialFeed interface {
	Next()
	Prev()
	GoTo(i int)
	Swipe(deltaX float64)
	SetPaused(paused bool)
	Reset()
	Updates() <-chan feedUpdate
	Done() <-chan struct{}
	Close()
}

// waitForUpdate is a command that blocks until the feed has something to
// show or is closed.
func waitForUpdate(f testimonialFeed) tea.Cmd {
	return func() tea.Msg {
		select {
		case u, ok := <-f.Updates():
			if !ok {
				return feedClosedMsg{feed: f}
			}
			return feedMsg{feed: f, update: u}
		case <-f.Done():
			return feedClosedMsg{feed: f}
		}
	}
}

// localFeed runs the carousel in process.
type localFeed struct {
	c       *carousel.Carousel[catalog.Testimonial]
	updates chan feedUpdate
	done    chan struct{}
	once    sync.Once
}

func newLocalFeed(items []catalog.Testimonial, clk clock.Clock, interval time.Duration, jump bool) *localFeed {
	f := &localFeed{
		updates: make(chan feedUpdate, 32),
		done:    make(chan struct{}),
	}
	f.c = carousel.New(items, carousel.Options{
		Name:            "testimonials",
		Clock:           clk,
		Interval:        interval,
		JumpToIndicator: jump,
		OnChange: func(fr carousel.Frame) {
			f.push(feedUpdate{Frame: fr})
		},
	})
	f.push(feedUpdate{Items: f.c.Items(), Frame: f.c.Snapshot()})
	f.c.Start()
	return f
}

// push never blocks the carousel; when the screen falls behind, older
// frames are dropped.
func (f *localFeed) push(u feedUpdate) {
	for {
		select {
		case f.updates <- u:
			return
		default:
		}
		select {
		case <-f.updates:
		default:
		}
	}
}

func (f *localFeed) Next()                 { f.c.Next() }
func (f *localFeed) Prev()                 { f.c.Prev() }
func (f *localFeed) GoTo(i int)            { f.c.GoTo(i) }
func (f *localFeed) Swipe(deltaX float64)  { f.c.OnSwipe(deltaX) }
func (f *localFeed) SetPaused(paused bool) { f.c.SetPaused(paused) }
func (f *localFeed) Reset()                { f.c.Reset() }

func (f *localFeed) Updates() <-chan feedUpdate { return f.updates }
func (f *localFeed) Done() <-chan struct{}      { return f.done }

func (f *localFeed) Close() {
	f.once.Do(func() {
		f.c.Close()
		close(f.done)
	})
}

// remoteFeed mirrors a carousel running on a storefront server.
type remoteFeed struct {
	client  *stream.Client
	updates chan feedUpdate
	done    chan struct{}
	once    sync.Once
}

func dialRemoteFeed(ctx context.Context, baseURL string, jump bool) (*remoteFeed, error) {
	client, err := stream.Dial(ctx, baseURL, jump)
	if err != nil {
		return nil, err
	}

	f := &remoteFeed{
		client:  client,
		updates: make(chan feedUpdate, 32),
		done:    make(chan struct{}),
	}
	go f.relay()
	return f, nil
}

func (f *remoteFeed) relay() {
	defer close(f.updates)
	for msg := range f.client.Messages() {
		var u feedUpdate
		switch msg.Type {
		case stream.TypeItems:
			u.Items = msg.Items
		case stream.TypeFrame:
			if msg.Frame == nil {
				continue
			}
			u.Frame = msg.Frame.Carousel()
		case stream.TypeError:
			u.Err = errors.New(msg.Error)
		default:
			continue
		}

		select {
		case f.updates <- u:
		case <-f.done:
			return
		}
	}
}

func (f *remoteFeed) send(cmd stream.Command) {
	if err := f.client.Send(cmd); err != nil {
		logging.Warn("Failed to send carousel command", zap.String("command", cmd.Command), zap.Error(err))
	}
}

func (f *remoteFeed) Next()                { f.send(stream.Command{Command: stream.CommandNext}) }
func (f *remoteFeed) Prev()                { f.send(stream.Command{Command: stream.CommandPrev}) }
func (f *remoteFeed) GoTo(i int)           { f.send(stream.Command{Command: stream.CommandGoTo, Index: i}) }
func (f *remoteFeed) Swipe(deltaX float64) { f.send(stream.Command{Command: stream.CommandSwipe, DeltaX: deltaX}) }
func (f *remoteFeed) Reset()               { f.send(stream.Command{Command: stream.CommandReset}) }

func (f *remoteFeed) SetPaused(paused bool) {
	if paused {
		f.send(stream.Command{Command: stream.CommandPause})
		return
	}
	f.send(stream.Command{Command: stream.CommandResume})
}

func (f *remoteFeed) Updates() <-chan feedUpdate { return f.updates }
func (f *remoteFeed) Done() <-chan struct{}      { return f.done }

func (f *remoteFeed) Close() {
	f.once.Do(func() {
		close(f.done)
		_ = f.client.Close()
	})
}
