package server

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mj1618/rotator/internal/detect"
	rerrors "github.com/mj1618/rotator/internal/errors"
	"github.com/mj1618/rotator/internal/link"
	"github.com/mj1618/rotator/internal/output"
	"github.com/mj1618/rotator/internal/slots"
)

// toText serializes v in the configured output format for an MCP response.
func toText(v interface{}) string {
	s, err := output.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return s
}

// errorResult reports err with its code so clients can branch on it.
func errorResult(err error) *mcp.CallToolResult {
	body := struct {
		OK      bool           `yaml:"ok"                json:"ok"`
		Code    string         `yaml:"code,omitempty"    json:"code,omitempty"`
		Error   string         `yaml:"error"             json:"error"`
		Details map[string]any `yaml:"details,omitempty" json:"details,omitempty"`
	}{Error: err.Error()}
	var re *rerrors.RotatorError
	if stderrors.As(err, &re) {
		body.Code = string(re.Code)
		body.Error = re.Message
		body.Details = re.Details
	}
	return mcp.NewToolResultError(toText(body))
}

type okResult struct {
	OK      bool   `yaml:"ok"      json:"ok"`
	Action  string `yaml:"action"  json:"action"`
	Running bool   `yaml:"running" json:"running"`
}

func (s *Server) handleStart(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.deps.Automation.StartAutomation(ctx); err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(toText(okResult{OK: true, Action: "start_automation", Running: true})), nil
}

func (s *Server) handleStop(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.deps.Automation.StopAutomation(ctx); err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(toText(okResult{OK: true, Action: "stop_automation"})), nil
}

func (s *Server) handleResize(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.deps.Automation.ResizeRandomWindow(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	s.cache.InvalidateAll()
	return mcp.NewToolResultText(toText(res)), nil
}

func (s *Server) handlePosition(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	placed, err := s.deps.Positioner.PositionWindows(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	s.cache.InvalidateAll()
	return mcp.NewToolResultText(toText(placed)), nil
}

func (s *Server) handleStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := s.deps.Automation.Status(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	type linkStatus struct {
		Connected bool   `yaml:"connected"      json:"connected"`
		Port      string `yaml:"port,omitempty" json:"port,omitempty"`
	}
	out := struct {
		Scheduler interface{} `yaml:"scheduler"      json:"scheduler"`
		Link      *linkStatus `yaml:"link,omitempty" json:"link,omitempty"`
	}{Scheduler: st}
	if s.deps.Link != nil {
		out.Link = &linkStatus{Connected: s.deps.Link.Connected(), Port: s.deps.Link.Port()}
	}
	return mcp.NewToolResultText(toText(out)), nil
}

func (s *Server) handleListSlots(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if boolParam(request.GetArguments(), "assigned", false) {
		return mcp.NewToolResultText(toText(s.deps.Registry.Assigned())), nil
	}
	return mcp.NewToolResultText(toText(s.deps.Registry.Snapshot())), nil
}

func (s *Server) handleAssign(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	id := intParam(params, "slot", 0)
	title := stringParam(params, "title", "")

	if s.deps.Automation.Running() {
		return errorResult(rerrors.NewInvalidRequest("slots cannot be edited while automation is running")), nil
	}
	if err := s.deps.Registry.Assign(id, title); err != nil {
		return errorResult(err), nil
	}
	if s.cfg.SlotFile != "" {
		if err := slots.Save(s.cfg.SlotFile, s.deps.Registry); err != nil {
			return errorResult(err), nil
		}
	}
	return mcp.NewToolResultText(toText(s.deps.Registry.Snapshot()[id-1])), nil
}

func (s *Server) handleRefresh(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.cache.InvalidateAll()
	live, err := s.cache.Titles(s.deps.Windows, "")
	if err != nil {
		return errorResult(err), nil
	}
	cleared := s.deps.Registry.Refresh(live)
	if len(cleared) > 0 && s.cfg.SlotFile != "" {
		if err := slots.Save(s.cfg.SlotFile, s.deps.Registry); err != nil {
			return errorResult(err), nil
		}
	}
	out := struct {
		Cleared []int        `yaml:"cleared" json:"cleared"`
		Slots   []slots.Slot `yaml:"slots"   json:"slots"`
	}{Cleared: cleared, Slots: s.deps.Registry.Assigned()}
	if out.Cleared == nil {
		out.Cleared = []int{}
	}
	return mcp.NewToolResultText(toText(out)), nil
}

func (s *Server) handleListWindows(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	filter := stringParam(params, "filter", s.cfg.WindowFilter)
	search := stringParam(params, "search", "")
	slot := intParam(params, "slot", 0)

	live, err := s.cache.Titles(s.deps.Windows, "")
	if err != nil {
		return errorResult(err), nil
	}
	titles := s.deps.Registry.Candidates(live, filter, search, slot)
	if titles == nil {
		titles = []string{}
	}
	return mcp.NewToolResultText(toText(titles)), nil
}

func (s *Server) handleClassify(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.deps.Detector == nil {
		return mcp.NewToolResultError("detector not available on this platform"), nil
	}
	if status := stringParam(request.GetArguments(), "status", ""); status != "" {
		res, err := s.deps.Detector.Evaluate(status)
		if err != nil {
			return errorResult(err), nil
		}
		return mcp.NewToolResultText(toText(res)), nil
	}
	out := struct {
		Match   string          `yaml:"match"   json:"match"`
		Results []detect.Result `yaml:"results" json:"results"`
	}{Match: detect.NoMatch, Results: s.deps.Detector.EvaluateAll()}
	for _, r := range out.Results {
		if r.Matched {
			out.Match = r.Status
			break
		}
	}
	return mcp.NewToolResultText(toText(out)), nil
}

func (s *Server) handleSend(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.deps.Link == nil {
		return errorResult(rerrors.NewNotConnected()), nil
	}
	tok, err := link.ParseToken(stringParam(request.GetArguments(), "token", ""))
	if err != nil {
		return errorResult(err), nil
	}
	if err := s.deps.Link.Send(tok); err != nil {
		return errorResult(err), nil
	}
	out := struct {
		OK    bool   `yaml:"ok"    json:"ok"`
		Token string `yaml:"token" json:"token"`
		Port  string `yaml:"port"  json:"port"`
	}{OK: true, Token: tok.String(), Port: s.deps.Link.Port()}
	return mcp.NewToolResultText(toText(out)), nil
}
