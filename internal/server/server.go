// Package server exposes the automation entry points as MCP tools.
package server

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/mj1618/rotator/internal/detect"
	"github.com/mj1618/rotator/internal/link"
	"github.com/mj1618/rotator/internal/platform"
	"github.com/mj1618/rotator/internal/schedule"
	"github.com/mj1618/rotator/internal/slots"
)

// Automation is the lifecycle surface the server drives.
type Automation interface {
	StartAutomation(ctx context.Context) error
	StopAutomation(ctx context.Context) error
	ResizeRandomWindow(ctx context.Context) (schedule.TickResult, error)
	Status(ctx context.Context) (schedule.Status, error)
	Running() bool
}

// Positioner runs the repositioning pass.
type Positioner interface {
	PositionWindows(ctx context.Context) ([]schedule.Placement, error)
}

// Link is the command link surface used by send_command.
type Link interface {
	Send(tok link.Token) error
	Connected() bool
	Port() string
}

// Config holds MCP server configuration.
type Config struct {
	Transport string
	Port      int
	CacheTTL  time.Duration

	WindowFilter string
	SlotFile     string
}

// Deps are the components the tools operate on. Detector and Link may be nil.
type Deps struct {
	Automation Automation
	Positioner Positioner
	Registry   *slots.Registry
	Windows    platform.WindowManager
	Detector   *detect.Detector
	Link       Link
}

// Server wraps the MCP server with the rotator components.
type Server struct {
	cfg   Config
	deps  Deps
	cache *TitleCache
	mcp   *mcpserver.MCPServer
}

// New creates and configures an MCP server with all rotator tools.
func New(cfg Config, deps Deps) *Server {
	s := &Server{
		cfg:   cfg,
		deps:  deps,
		cache: NewTitleCache(cfg.CacheTTL),
	}
	s.mcp = mcpserver.NewMCPServer("rotator", "1.0.0")
	s.registerTools()
	return s
}

// Serve starts the MCP server with the configured transport.
func (s *Server) Serve() error {
	switch s.cfg.Transport {
	case "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		return httpServer.Start(fmt.Sprintf(":%d", s.cfg.Port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", s.cfg.Transport)
	}
}

func (s *Server) registerTools() {
	s.mcp.AddTool(
		mcp.NewTool("start_automation",
			mcp.WithDescription("Start rotating focus across the assigned game windows"),
		),
		s.handleStart,
	)
	s.mcp.AddTool(
		mcp.NewTool("stop_automation",
			mcp.WithDescription("Stop the rotation and detection, and flush the session log"),
		),
		s.handleStop,
	)
	s.mcp.AddTool(
		mcp.NewTool("resize_random_window",
			mcp.WithDescription("Run one rotation tick now: bring a random unvisited window to the front"),
		),
		s.handleResize,
	)
	s.mcp.AddTool(
		mcp.NewTool("position_windows",
			mcp.WithDescription("Move every assigned window to its tile in the 18-tile layout"),
		),
		s.handlePosition,
	)
	s.mcp.AddTool(
		mcp.NewTool("status",
			mcp.WithDescription("Report whether automation is running, pending slots and the last tick"),
		),
		s.handleStatus,
	)
	s.mcp.AddTool(
		mcp.NewTool("list_slots",
			mcp.WithDescription("List the window slots and their assigned titles"),
			mcp.WithBoolean("assigned", mcp.Description("Only list assigned slots")),
		),
		s.handleListSlots,
	)
	s.mcp.AddTool(
		mcp.NewTool("assign_slot",
			mcp.WithDescription("Assign a window title to a slot. An empty title clears the slot."),
			mcp.WithNumber("slot", mcp.Description("Slot id (1-based)"), mcp.Required()),
			mcp.WithString("title", mcp.Description("Exact window title")),
		),
		s.handleAssign,
	)
	s.mcp.AddTool(
		mcp.NewTool("refresh_slots",
			mcp.WithDescription("Unassign slots whose window no longer exists"),
		),
		s.handleRefresh,
	)
	s.mcp.AddTool(
		mcp.NewTool("list_windows",
			mcp.WithDescription("List candidate game windows not yet assigned to another slot"),
			mcp.WithString("filter", mcp.Description("Case-insensitive title filter (default: configured window filter)")),
			mcp.WithString("search", mcp.Description("Narrow results to titles containing this text")),
			mcp.WithNumber("slot", mcp.Description("Include the title already held by this slot")),
		),
		s.handleListWindows,
	)
	s.mcp.AddTool(
		mcp.NewTool("classify",
			mcp.WithDescription("Classify the current screen against the status templates"),
			mcp.WithString("status", mcp.Description("Only evaluate this status")),
		),
		s.handleClassify,
	)
	s.mcp.AddTool(
		mcp.NewTool("send_command",
			mcp.WithDescription("Send a command token to the microcontroller: enter_game, enter_sched, set_sched, enter_psm, click_psm, click_penalty"),
			mcp.WithString("token", mcp.Description("Command token"), mcp.Required()),
		),
		s.handleSend,
	)
}
