// Package link sends command tokens to the microcontroller over a serial port.
package link

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/tarm/serial"

	rerrors "github.com/mj1618/rotator/internal/errors"
	"github.com/mj1618/rotator/internal/logfields"
	"github.com/mj1618/rotator/internal/metrics"
	"github.com/mj1618/rotator/internal/platform"
)

// Opener opens a named serial port.
type Opener func(name string, baud int, readTimeout time.Duration) (io.WriteCloser, error)

// OpenSerial opens a real serial port.
func OpenSerial(name string, baud int, readTimeout time.Duration) (io.WriteCloser, error) {
	return serial.OpenPort(&serial.Config{Name: name, Baud: baud, ReadTimeout: readTimeout})
}

// Link is a mutex-guarded connection to the microcontroller. The zero
// value is not usable; call New.
type Link struct {
	mu          sync.Mutex
	port        io.WriteCloser
	portName    string
	baud        int
	readTimeout time.Duration

	open     Opener
	lister   platform.PortLister
	recorder metrics.Recorder
	logger   *slog.Logger
}

// Option configures a Link.
type Option func(*Link)

// WithOpener replaces the serial opener.
func WithOpener(o Opener) Option { return func(l *Link) { l.open = o } }

// WithPortLister validates ports against the system's current list before opening.
func WithPortLister(pl platform.PortLister) Option { return func(l *Link) { l.lister = pl } }

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option { return func(l *Link) { l.recorder = r } }

// WithLogger sets the logger.
func WithLogger(lg *slog.Logger) Option { return func(l *Link) { l.logger = lg } }

// New creates a disconnected link.
func New(baud int, readTimeout time.Duration, opts ...Option) *Link {
	l := &Link{
		baud:        baud,
		readTimeout: readTimeout,
		open:        OpenSerial,
		recorder:    metrics.NoopRecorder{},
		logger:      slog.Default(),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Connect opens port, replacing any existing connection.
func (l *Link) Connect(port string) error {
	if port == "" {
		return rerrors.NewInvalidRequest("no serial port given")
	}
	if l.lister != nil {
		ports, err := l.lister.ListPorts()
		if err != nil {
			return fmt.Errorf("list serial ports: %w", err)
		}
		if !slices.Contains(ports, port) {
			return rerrors.NewInvalidRequest(fmt.Sprintf("serial port %s is not available", port))
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.port != nil {
		l.closeLocked()
	}
	p, err := l.open(port, l.baud, l.readTimeout)
	if err != nil {
		return fmt.Errorf("open %s: %w", port, err)
	}
	l.port = p
	l.portName = port
	l.logger.Info("Connected to serial port", logfields.Port(port), slog.Int("baud", l.baud))
	return nil
}

// Disconnect closes the port if one is open.
func (l *Link) Disconnect() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.port == nil {
		return nil
	}
	return l.closeLocked()
}

func (l *Link) closeLocked() error {
	name := l.portName
	err := l.port.Close()
	l.port = nil
	l.portName = ""
	if err != nil {
		l.logger.Warn("Error closing serial port", logfields.Port(name), logfields.Error(err))
		return fmt.Errorf("close %s: %w", name, err)
	}
	l.logger.Info("Disconnected from serial port", logfields.Port(name))
	return nil
}

// Connected reports whether a port is open.
func (l *Link) Connected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.port != nil
}

// Port returns the name of the open port, or "".
func (l *Link) Port() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.portName
}

// Send writes tok followed by a newline. There is no acknowledgement and no retry.
func (l *Link) Send(tok Token) error {
	if !tok.Valid() {
		return rerrors.NewUnknownToken(tok.String())
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.port == nil {
		l.recorder.IncCommand(tok.String(), false)
		l.logger.Warn("Serial port not connected", logfields.Token(tok.String()))
		return rerrors.NewNotConnected()
	}
	if _, err := io.WriteString(l.port, tok.String()+"\n"); err != nil {
		l.recorder.IncCommand(tok.String(), false)
		l.logger.Error("Failed to send command", logfields.Token(tok.String()), logfields.Port(l.portName), logfields.Error(err))
		return rerrors.NewSendFailed(tok.String(), err)
	}
	l.recorder.IncCommand(tok.String(), true)
	l.logger.Info("Sent command", logfields.Token(tok.String()), logfields.Port(l.portName))
	return nil
}
