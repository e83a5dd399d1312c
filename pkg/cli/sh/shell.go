package sh

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net"
	"strings"
	"time"

	"github.com/abiosoft/ishell"
	"github.com/fatih/color"
	"github.com/golang/glog"

	"github.com/robotalks/ethlink/pkg/board"
	"github.com/robotalks/ethlink/pkg/l0/channel/mem"
	"github.com/robotalks/ethlink/pkg/l0/env"
	"github.com/robotalks/ethlink/pkg/l0/link"
)

// DefaultOpTimeout bounds every link operation started from the shell.
const DefaultOpTimeout = 10 * time.Second

// LoopbackAddr is the host address used by the loopback link.
var LoopbackAddr = net.HardwareAddr{0x02, 0, 0, 0, 0, 0x01}

// Shell provides ishell backed interactive console on a link.
type Shell struct {
	Interactive bool
	OpTimeout   time.Duration

	Shell   *ishell.Shell
	Config  *env.Config
	Metrics *link.Metrics
	Link    *link.Link

	loopback    *board.Board
	stopBoard   func()
	description string
}

const (
	shellKey     = "$shell"
	closedPrompt = "[closed] > "
)

var commands = []*ishell.Cmd{
	&OpenCmd,
	&CloseCmd,
	&PingCmd,
	&WaitCmd,
	&SendCmd,
	&RecvCmd,
	&StatusCmd,
}

// New creates a new shell.
func New(conf *env.Config, metrics *link.Metrics) *Shell {
	s := &Shell{
		Interactive: true,
		OpTimeout:   DefaultOpTimeout,
		Shell:       ishell.New(),
		Config:      conf,
		Metrics:     metrics,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(closedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeOpen wraps command func requires an open link.
func MustBeOpen(fn func(c *ishell.Context, s *Shell)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		s := ShellFrom(c)
		if s.Link == nil {
			c.Err(fmt.Errorf("link not open"))
			return
		}
		fn(c, s)
	}
}

func (s *Shell) setPrompt(prompt string) {
	if s.Shell != nil {
		s.Shell.SetPrompt(prompt)
	}
}

func (s *Shell) opContext() (context.Context, context.CancelFunc) {
	timeout := s.OpTimeout
	if timeout <= 0 {
		timeout = DefaultOpTimeout
	}
	return context.WithTimeout(context.Background(), timeout)
}

// Open opens the configured link, replacing the current one.
func (s *Shell) Open() error {
	ctx, cancel := s.opContext()
	defer cancel()
	l, err := s.Config.NewLink(ctx, s.Metrics)
	if err != nil {
		return err
	}
	s.attach(l, s.Config.Backend.String())
	return nil
}

// OpenLoopback opens a link to an in-process echo board.
func (s *Shell) OpenLoopback() error {
	hostCh, boardCh := mem.Pipe()
	hdr, err := link.NewHeader(link.DefaultDestination(), LoopbackAddr, link.DefaultProtocol)
	if err != nil {
		return err
	}
	b, err := board.New(boardCh, LoopbackAddr, board.ModeEcho)
	if err != nil {
		return err
	}
	l := link.New(hostCh, hdr)
	l.RetryInterval = s.Config.RetryInterval
	l.MaxRetries = s.Config.MaxRetries
	l.Metrics = s.Metrics
	s.attach(l, "loopback")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		if err := b.Run(ctx); err != nil && ctx.Err() == nil {
			glog.Errorf("loopback board: %v", err)
		}
		close(done)
	}()
	s.loopback = b
	s.stopBoard = func() {
		cancel()
		<-done
	}
	return nil
}

func (s *Shell) attach(l *link.Link, description string) {
	s.Close()
	s.Link, s.description = l, description
	s.setPrompt(fmt.Sprintf("[%s] > ", description))
}

// Close closes the current link.
func (s *Shell) Close() {
	if s.Link != nil {
		s.Link.Close()
		s.Link = nil
	}
	if s.stopBoard != nil {
		s.stopBoard()
		s.stopBoard, s.loopback = nil, nil
	}
	s.setPrompt(closedPrompt)
}

// Ping performs the initiating side of the handshake.
func (s *Shell) Ping() error {
	ctx, cancel := s.opContext()
	defer cancel()
	return s.Link.SyncAckFirst(ctx)
}

// Wait performs the responding side of the handshake.
func (s *Shell) Wait() error {
	ctx, cancel := s.opContext()
	defer cancel()
	return s.Link.SyncAckLast(ctx)
}

// Send sends text and returns the number of bytes echoed wrong.
func (s *Shell) Send(text string) (int, error) {
	ctx, cancel := s.opContext()
	defer cancel()
	return s.Link.SendAndAck(ctx, []byte(text))
}

// Recv waits up to OpTimeout for a frame and echoes it.
// Trailing padding is removed from the returned payload.
func (s *Shell) Recv() ([]byte, error) {
	ctx, cancel := s.opContext()
	defer cancel()
	prev := s.Link.Timeout()
	s.Link.SetTimeout(s.OpTimeout)
	defer s.Link.SetTimeout(prev)
	payload, err := s.Link.RcvAndAck(ctx)
	if err != nil {
		return nil, err
	}
	return bytes.TrimRight(payload, "\x00"), nil
}

// Status describes the current link.
func (s *Shell) Status() string {
	if s.Link == nil {
		return "closed"
	}
	var w strings.Builder
	fmt.Fprintf(&w, "link:     %s\n", s.description)
	fmt.Fprintf(&w, "source:   %s\n", s.Link.Source())
	fmt.Fprintf(&w, "dest:     %s\n", s.Link.Destination())
	fmt.Fprintf(&w, "protocol: %#04x\n", s.Link.Protocol())
	fmt.Fprintf(&w, "retry:    %v, max %d", s.Link.RetryInterval, s.Link.MaxRetries)
	if s.loopback != nil {
		fmt.Fprintf(&w, "\nechoed:   %d", s.loopback.Echoed())
	}
	return w.String()
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	defer s.Close()
	if len(args) > 0 {
		for _, line := range strings.Split(strings.Join(args, " "), ";") {
			if fields := strings.Fields(line); len(fields) > 0 {
				if err := s.Shell.Process(fields...); err != nil {
					log.Fatalln(err)
				}
			}
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

var (
	okColor  = color.New(color.FgGreen).SprintFunc()
	errColor = color.New(color.FgRed).SprintFunc()
)

var (
	// OpenCmd opens the configured link, or a loopback one.
	OpenCmd = ishell.Cmd{
		Name:    "open",
		Aliases: []string{"o"},
		Help:    "[loopback]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			var err error
			if len(c.Args) > 0 && c.Args[0] == "loopback" {
				err = s.OpenLoopback()
			} else {
				err = s.Open()
			}
			if err != nil {
				c.Err(err)
			}
		},
	}

	// CloseCmd closes the current link.
	CloseCmd = ishell.Cmd{
		Name: "close",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Close()
		},
	}

	// PingCmd initiates the handshake.
	PingCmd = ishell.Cmd{
		Name: "ping",
		Help: "handshake, this side first",
		Func: MustBeOpen(func(c *ishell.Context, s *Shell) {
			if err := s.Ping(); err != nil {
				c.Err(err)
				return
			}
			c.Println(okColor("OK"))
		}),
	}

	// WaitCmd waits for the peer's handshake.
	WaitCmd = ishell.Cmd{
		Name: "wait",
		Help: "handshake, peer first",
		Func: MustBeOpen(func(c *ishell.Context, s *Shell) {
			if err := s.Wait(); err != nil {
				c.Err(err)
				return
			}
			c.Println(okColor("OK"))
		}),
	}

	// SendCmd sends text and reports the echo.
	SendCmd = ishell.Cmd{
		Name:    "send",
		Aliases: []string{"s"},
		Help:    "TEXT",
		Func: MustBeOpen(func(c *ishell.Context, s *Shell) {
			errs, err := s.Send(strings.Join(c.Args, " "))
			if err != nil {
				c.Err(err)
				return
			}
			if errs > 0 {
				c.Println(errColor(fmt.Sprintf("%d bytes mismatched", errs)))
				return
			}
			c.Println(okColor("OK"))
		}),
	}

	// RecvCmd receives one frame and echoes it.
	RecvCmd = ishell.Cmd{
		Name:    "recv",
		Aliases: []string{"r"},
		Func: MustBeOpen(func(c *ishell.Context, s *Shell) {
			payload, err := s.Recv()
			if err != nil {
				c.Err(err)
				return
			}
			c.Printf("%q\n", payload)
		}),
	}

	// StatusCmd prints the link status.
	StatusCmd = ishell.Cmd{
		Name: "status",
		Func: func(c *ishell.Context) {
			c.Println(ShellFrom(c).Status())
		},
	}
)
