// Package browser holds the state of one card browsing session and
// sequences the fetches that change it.
//
// All mutations go through a single actor goroutine. Every action opens a
// new generation; results that arrive for an older generation are dropped,
// so the most recently started action always wins.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/arcanaland/scrybe/internal/card"
	"github.com/arcanaland/scrybe/internal/catalog"
	"github.com/arcanaland/scrybe/internal/scryfall"
	"github.com/sirupsen/logrus"
)

var (
	ErrEmptyQuery   = errors.New("search query is empty")
	ErrInvalidColor = errors.New("invalid color")
	ErrClosed       = errors.New("browser is closed")
)

// API is the subset of the card API the browser needs.
type API interface {
	Card(ctx context.Context, id string) (*card.Card, error)
	Random(ctx context.Context, color string) (*card.Card, error)
	Search(ctx context.Context, query string) ([]card.Card, error)
	Prints(ctx context.Context, uri string) ([]card.Card, error)
}

type Option func(*Browser)

// WithLogger sets the logger used for failures.
func WithLogger(l logrus.FieldLogger) Option {
	return func(b *Browser) { b.log = l }
}

// WithCatalog sets the catalog used to validate colors.
func WithCatalog(c *catalog.Catalog) Option {
	return func(b *Browser) { b.catalog = c }
}

type request struct {
	event Event
	reply chan State
}

type subscriber struct {
	ch chan State
}

// offer replaces whatever the subscriber has not read yet. Only the actor
// goroutine sends, so the drain-then-send never blocks.
func (s *subscriber) offer(st State) {
	select {
	case s.ch <- st:
		return
	default:
	}
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- st:
	default:
	}
}

// Browser is the CardBrowser state container.
type Browser struct {
	api     API
	catalog *catalog.Catalog
	log     logrus.FieldLogger

	requests    chan request
	subscribe   chan *subscriber
	unsubscribe chan *subscriber
	quit        chan struct{}
	done        chan struct{}
	closeOnce   sync.Once
}

// New starts a browser backed by api. Call Close to stop it.
func New(api API, opts ...Option) *Browser {
	b := &Browser{
		api:         api,
		catalog:     catalog.Default(),
		log:         logrus.StandardLogger(),
		requests:    make(chan request),
		subscribe:   make(chan *subscriber),
		unsubscribe: make(chan *subscriber),
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	go b.run()
	return b
}

func (b *Browser) run() {
	defer close(b.done)

	var state State
	subs := make(map[*subscriber]struct{})

	for {
		select {
		case req := <-b.requests:
			changed := req.event.Apply(&state)
			snap := state.Snapshot()
			if changed {
				for s := range subs {
					s.offer(snap)
				}
			}
			req.reply <- snap

		case s := <-b.subscribe:
			subs[s] = struct{}{}
			s.offer(state.Snapshot())

		case s := <-b.unsubscribe:
			if _, ok := subs[s]; ok {
				delete(subs, s)
				close(s.ch)
			}

		case <-b.quit:
			for s := range subs {
				close(s.ch)
			}
			return
		}
	}
}

// Close stops the actor and closes all subscriptions.
func (b *Browser) Close() {
	b.closeOnce.Do(func() { close(b.quit) })
	<-b.done
}

func (b *Browser) dispatch(ev Event) (State, error) {
	reply := make(chan State, 1)
	select {
	case b.requests <- request{event: ev, reply: reply}:
	case <-b.quit:
		return State{}, ErrClosed
	}
	return <-reply, nil
}

type noop struct{}

func (noop) Apply(*State) bool { return false }

// Snapshot returns a copy of the current state.
func (b *Browser) Snapshot() (State, error) {
	return b.dispatch(noop{})
}

// Subscribe returns a channel that receives the latest state after every
// change, starting with the current one. It is closed when ctx ends or the
// browser is closed.
func (b *Browser) Subscribe(ctx context.Context) <-chan State {
	s := &subscriber{ch: make(chan State, 1)}
	select {
	case b.subscribe <- s:
	case <-b.quit:
		close(s.ch)
		return s.ch
	}

	go func() {
		select {
		case <-ctx.Done():
			select {
			case b.unsubscribe <- s:
			case <-b.quit:
			}
		case <-b.quit:
		}
	}()
	return s.ch
}

// LoadCard fetches a card by id and makes it current.
func (b *Browser) LoadCard(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("card id is required")
	}
	st, err := b.dispatch(Started{Op: OpLoad})
	if err != nil {
		return err
	}
	return b.load(ctx, st.Generation, OpLoad, id)
}

// Random fetches a random card, restricted to color when it is not empty,
// and loads it.
func (b *Browser) Random(ctx context.Context, color string) error {
	color, err := b.catalog.NormalizeColor(color)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidColor, err)
	}
	if color != "" {
		if _, err := b.dispatch(ColorSelected{Color: color}); err != nil {
			return err
		}
	}

	st, err := b.dispatch(Started{Op: OpRandom})
	if err != nil {
		return err
	}

	c, err := b.api.Random(ctx, color)
	if err == nil && (c == nil || c.ID == "") {
		err = fmt.Errorf("random card without id: %w", scryfall.ErrMalformed)
	}
	if err != nil {
		return b.fail(st.Generation, OpRandom, err)
	}
	return b.load(ctx, st.Generation, OpRandom, c.ID)
}

// Search looks up cards matching query and filters and loads the first
// result. A blank query is rejected without touching the state.
func (b *Browser) Search(ctx context.Context, query string, filters scryfall.Filters) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return ErrEmptyQuery
	}

	st, err := b.dispatch(Started{Op: OpSearch, Query: query, Filters: filters})
	if err != nil {
		return err
	}

	results, err := b.api.Search(ctx, scryfall.BuildQuery(query, filters))
	if err == nil && len(results) == 0 {
		err = scryfall.ErrEmptyResult
	}
	if err != nil {
		return b.fail(st.Generation, OpSearch, err)
	}
	return b.load(ctx, st.Generation, OpSearch, results[0].ID)
}

// load is the card loader shared by every action. The loading flag clears
// once the card itself settles; prints are fetched afterwards.
func (b *Browser) load(ctx context.Context, gen uint64, op Operation, id string) error {
	c, err := b.api.Card(ctx, id)
	if err != nil {
		return b.fail(gen, op, err)
	}

	if _, err := b.dispatch(CardLoaded{Generation: gen, Card: c}); err != nil {
		return err
	}
	if _, err := b.dispatch(Settled{Generation: gen}); err != nil {
		return err
	}

	if !c.HasPrints() {
		return nil
	}
	prints, err := b.api.Prints(ctx, c.PrintsSearchURI)
	if err != nil {
		b.log.WithFields(logrus.Fields{
			"error":   err,
			"card_id": c.ID,
			"op":      op,
		}).Warn("Failed to fetch prints")
		return nil
	}
	_, err = b.dispatch(ArtsLoaded{Generation: gen, CardID: c.ID, Arts: card.AlternateArts(prints)})
	return err
}

func (b *Browser) fail(gen uint64, op Operation, err error) error {
	log := b.log.WithFields(logrus.Fields{
		"error":      err,
		"op":         op,
		"generation": gen,
	})
	if errors.Is(err, scryfall.ErrEmptyResult) {
		log.Info("Search returned no cards")
	} else {
		log.Error("Card fetch failed")
	}

	if _, derr := b.dispatch(Failed{Generation: gen, Op: op, Err: err}); derr != nil {
		return derr
	}
	if _, derr := b.dispatch(Settled{Generation: gen}); derr != nil {
		return derr
	}
	return err
}
