package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/aaronzipp/wargame-turns/internal/game"
	"github.com/aaronzipp/wargame-turns/internal/models"
	"github.com/aaronzipp/wargame-turns/internal/render"
	"github.com/aaronzipp/wargame-turns/internal/session"
)

const consoleHelp = `Commands:
  state                                          show the session
  sector                                         finish sector definition (director)
  zones                                          finish zone definition (director)
  deploy TYPE DESIGNATION MAGNITUDE [DEPENDENCY] place an element
  elements                                       list your elements
  ready                                          mark deployment complete
  combat                                         start combat (director)
  end                                            end your turn
  help                                           show this help
  quit                                           leave`

// console drives a session from line-oriented input. actor decides who
// issues each command: the hot-seat participant locally, a fixed
// participant when joined to an authority.
type console struct {
	s     *session.Session
	board *game.ElementBoard
	actor func() *models.Participant
	names map[string]string

	mu  sync.Mutex
	out io.Writer
}

func newConsole(s *session.Session, board *game.ElementBoard, out io.Writer, actor func() *models.Participant) *console {
	names := make(map[string]string)
	for _, p := range s.State().Participants {
		names[p.ID] = p.Label()
	}
	return &console{s: s, board: board, actor: actor, names: names, out: out}
}

func (c *console) println(a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, a...)
}

// watch prints notifications until the returned function is called.
func (c *console) watch() func() {
	return c.s.Subscribe(func(n session.Notification) {
		if line := render.Notification(n, c.names); line != "" {
			c.println("*", line)
		}
	})
}

// run reads commands until quit, end of input or ctx is done.
func (c *console) run(ctx context.Context, in io.Reader, done <-chan struct{}) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	c.println(render.SessionState(c.s.State()))
	c.prompt()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-done:
			c.println("connection to the authority closed")
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := c.exec(ctx, line); quit {
				return nil
			}
			c.prompt()
		}
	}
}

func (c *console) prompt() {
	who := "-"
	if p := c.actor(); p != nil {
		who = p.Label()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "[%s] > ", who)
}

// exec runs one command line and reports whether the console should stop.
func (c *console) exec(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch cmd := strings.ToLower(fields[0]); cmd {
	case "quit", "exit":
		return true
	case "help":
		c.println(consoleHelp)
	case "state":
		c.println(render.SessionState(c.s.State()))
	case "deploy":
		c.deploy(fields[1:])
	case "elements":
		c.listElements()
	case "sector", "zones", "ready", "combat", "end":
		c.act(ctx, cmd)
	default:
		c.println("unknown command:", fields[0], "(try help)")
	}
	return false
}

func (c *console) act(ctx context.Context, cmd string) {
	p := c.actor()
	if p == nil {
		c.println("nobody is expected to act right now")
		return
	}

	var out game.Outcome
	var err error
	switch cmd {
	case "sector":
		out, err = c.s.FinalizeSector(ctx, p.ID)
	case "zones":
		out, err = c.s.FinalizeZones(ctx, p.ID)
	case "ready":
		out, err = c.s.MarkReady(ctx, p.ID)
	case "combat":
		out, err = c.s.StartCombat(ctx, p.ID)
	case "end":
		out, err = c.s.EndTurn(ctx, p.ID)
	}
	switch {
	case err != nil:
		c.println("error:", render.Error(err))
	case !out.OK:
		c.println("rejected:", render.Outcome(out))
	}
}

func (c *console) deploy(args []string) {
	p := c.actor()
	if p == nil {
		c.println("nobody is expected to act right now")
		return
	}
	if len(args) < 3 || len(args) > 4 {
		c.println("usage: deploy TYPE DESIGNATION MAGNITUDE [DEPENDENCY]")
		return
	}
	e := models.Element{
		ID:          uuid.NewString(),
		Type:        args[0],
		Designation: args[1],
		Magnitude:   args[2],
		Owner:       p.ID,
	}
	if len(args) == 4 {
		e.Dependency = args[3]
	}
	c.board.Add(e)
	c.println("deployed", e.Designation, "for", p.Label())
}

func (c *console) listElements() {
	p := c.actor()
	if p == nil {
		c.println("nobody is expected to act right now")
		return
	}
	elements := c.board.ElementsOwnedBy(p.ID)
	if len(elements) == 0 {
		c.println("no elements deployed")
		return
	}
	for _, e := range elements {
		line := e.Type + " " + e.Designation + " " + e.Magnitude
		if e.HasDependency() {
			line += " under " + e.Dependency
		}
		c.println(" ", line)
	}
}
