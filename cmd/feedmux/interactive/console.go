// Package interactive provides the interactive command-line interface
// for the feedmux demo.
package interactive

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"

	"github.com/feedmux/feedmux-go/pkg/binding"
	"github.com/feedmux/feedmux-go/pkg/feed"
	"github.com/feedmux/feedmux-go/pkg/registry"
)

// Feed describes one subscribable feed available to the console.
type Feed struct {
	Name     string
	Key      string
	Interval time.Duration
}

// consumer tracks one named consumer and its binding inputs.
type consumer struct {
	binding *binding.Binding
	feed    string // feed name, empty for none
	enabled bool
}

// Console handles interactive mode for feedmux.
type Console struct {
	reg   *registry.Registry
	feeds map[string]Feed
	order []string // feed names in catalogue order
	rl    *readline.Instance

	mu        sync.Mutex
	consumers map[string]*consumer
	last      map[string]any // feed key -> last emitted value
}

// New creates a new interactive console over the given registry and
// feed catalogue.
func New(reg *registry.Registry, feeds []Feed) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "feedmux> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	c := &Console{
		reg:       reg,
		feeds:     make(map[string]Feed, len(feeds)),
		rl:        rl,
		consumers: make(map[string]*consumer),
		last:      make(map[string]any),
	}
	for _, f := range feeds {
		c.feeds[f.Name] = f
		c.order = append(c.order, f.Name)
	}
	return c, nil
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (c *Console) Stdout() io.Writer {
	return c.rl.Stdout()
}

// Run starts the interactive command loop.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			c.printHelp()

		case "attach", "a":
			c.cmdAttach(args)

		case "enable":
			c.cmdSetEnabled(args, true)

		case "disable":
			c.cmdSetEnabled(args, false)

		case "move", "m":
			c.cmdMove(args)

		case "close":
			c.cmdClose(args)

		case "list", "l":
			c.cmdList()

		case "feeds", "f":
			c.cmdFeeds()

		case "clear":
			c.cmdClear()

		case "quit", "exit", "q":
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintf(c.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.rl.Stdout(), `
Feedmux Commands:
  Consumers:
    attach <consumer> <feed>  - Point a consumer at a feed (creates it if new)
    enable <consumer>         - Re-enable a disabled consumer
    disable <consumer>        - Disable a consumer (releases its reference)
    move <consumer> <feed>    - Move a consumer to a different feed
    close <consumer>          - Destroy a consumer

  Inspection:
    list                      - Show consumers and their state
    feeds                     - Show feeds, observer counts, last values

  Registry:
    clear                     - Tear down everything (global reset)

  help                        - Show this help
  quit                        - Exit`)
}

func (c *Console) cmdAttach(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: attach <consumer> <feed>")
		return
	}
	name, feedName := args[0], args[1]
	if _, ok := c.feeds[feedName]; !ok {
		fmt.Fprintf(c.rl.Stdout(), "Unknown feed: %s (see 'feeds')\n", feedName)
		return
	}

	c.mu.Lock()
	cons, ok := c.consumers[name]
	if !ok {
		cons = &consumer{binding: binding.New(c.reg)}
		c.consumers[name] = cons
	}
	cons.feed = feedName
	cons.enabled = true
	c.mu.Unlock()

	if err := c.apply(cons); err != nil {
		fmt.Fprintf(c.rl.Stdout(), "attach failed: %v\n", err)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "%s -> %s (observers: %d)\n",
		name, feedName, c.reg.Observers(c.feeds[feedName].Key))
}

func (c *Console) cmdSetEnabled(args []string, enabled bool) {
	if len(args) != 1 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: enable|disable <consumer>")
		return
	}
	cons, ok := c.lookup(args[0])
	if !ok {
		return
	}

	c.mu.Lock()
	cons.enabled = enabled
	c.mu.Unlock()

	if err := c.apply(cons); err != nil {
		fmt.Fprintf(c.rl.Stdout(), "update failed: %v\n", err)
	}
}

func (c *Console) cmdMove(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: move <consumer> <feed>")
		return
	}
	cons, ok := c.lookup(args[0])
	if !ok {
		return
	}
	if _, ok := c.feeds[args[1]]; !ok {
		fmt.Fprintf(c.rl.Stdout(), "Unknown feed: %s (see 'feeds')\n", args[1])
		return
	}

	c.mu.Lock()
	cons.feed = args[1]
	c.mu.Unlock()

	if err := c.apply(cons); err != nil {
		fmt.Fprintf(c.rl.Stdout(), "move failed: %v\n", err)
	}
}

func (c *Console) cmdClose(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: close <consumer>")
		return
	}
	cons, ok := c.lookup(args[0])
	if !ok {
		return
	}

	cons.binding.Close()

	c.mu.Lock()
	delete(c.consumers, args[0])
	c.mu.Unlock()
}

func (c *Console) cmdList() {
	c.mu.Lock()
	names := make([]string, 0, len(c.consumers))
	for name := range c.consumers {
		names = append(names, name)
	}
	sort.Strings(names)

	if len(names) == 0 {
		c.mu.Unlock()
		fmt.Fprintln(c.rl.Stdout(), "No consumers.")
		return
	}

	out := c.rl.Stdout()
	for _, name := range names {
		cons := c.consumers[name]
		state := "disabled"
		if cons.enabled {
			state = "enabled"
		}
		feedName := cons.feed
		if feedName == "" {
			feedName = "-"
		}
		fmt.Fprintf(out, "  %-12s feed=%-12s %-8s attached=%v id=%s\n",
			name, feedName, state, cons.binding.Attached(), cons.binding.ID())
	}
	c.mu.Unlock()
}

func (c *Console) cmdFeeds() {
	out := c.rl.Stdout()
	for _, name := range c.order {
		f := c.feeds[name]

		c.mu.Lock()
		last, seen := c.last[f.Key]
		c.mu.Unlock()

		status := "cold"
		if c.reg.Active(f.Key) {
			status = fmt.Sprintf("hot, observers=%d", c.reg.Observers(f.Key))
		}
		if seen {
			fmt.Fprintf(out, "  %-12s key=%s... %s, last=%v\n", name, f.Key[:8], status, last)
		} else {
			fmt.Fprintf(out, "  %-12s key=%s... %s\n", name, f.Key[:8], status)
		}
	}
}

func (c *Console) cmdClear() {
	n := c.reg.Len()
	c.reg.ClearAll()
	fmt.Fprintf(c.rl.Stdout(), "Cleared %d live subscriptions.\n", n)

	// Consumer bindings still believe they are attached; their later
	// detaches are absorbed by the registry's clamping. Reset local
	// state so 'list' reflects reality.
	c.mu.Lock()
	for _, cons := range c.consumers {
		cons.enabled = false
	}
	c.mu.Unlock()
	for _, cons := range c.consumers {
		_ = cons.binding.Update("", false, nil)
	}
}

// lookup finds a consumer by name, reporting to the console if absent.
func (c *Console) lookup(name string) (*consumer, bool) {
	c.mu.Lock()
	cons, ok := c.consumers[name]
	c.mu.Unlock()
	if !ok {
		fmt.Fprintf(c.rl.Stdout(), "Unknown consumer: %s (see 'list')\n", name)
	}
	return cons, ok
}

// apply pushes a consumer's current inputs into its binding.
func (c *Console) apply(cons *consumer) error {
	c.mu.Lock()
	feedName, enabled := cons.feed, cons.enabled
	c.mu.Unlock()

	var key string
	var start registry.StartFunc
	if f, ok := c.feeds[feedName]; ok {
		key = f.Key
		start = feed.Ticker(f.Key, f.Interval, c.onValue)
	}
	return cons.binding.Update(key, enabled, start)
}

// onValue records the latest emission per feed key. Called from feed
// goroutines.
func (c *Console) onValue(key string, value any) {
	c.mu.Lock()
	c.last[key] = value
	c.mu.Unlock()
}
