package mcp

import (
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	appTimer "github.com/dialtimer/backend/internal/application/timer"
	"github.com/dialtimer/backend/internal/infrastructure/log"
)

// 服务器标识
const (
	ServerName    = "dialtimer-daemon"
	ServerVersion = "0.1.0"
)

// MCPServer MCP 服务器
type MCPServer struct {
	server      *mcp.Server
	handler     http.Handler
	coordinator *appTimer.Coordinator
	logger      *slog.Logger
}

// NewServer 创建 MCP 服务器
func NewServer(coordinator *appTimer.Coordinator) *MCPServer {
	// 创建 MCP 服务器实例
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil, // 使用默认能力
	)

	mcpServer := &MCPServer{
		server:      server,
		coordinator: coordinator,
		logger:      log.NewModuleLogger("mcp", "server"),
	}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_timer_state",
		Description: "Get the current countdown timer state, including status (idle/running/paused/finished), total and remaining time, progress, dial angle and the background runner snapshot. No parameters required.",
	}, mcpServer.getTimerStateTool)

	mcp.AddTool(server, &mcp.Tool{
		Name: "set_timer_time",
		Description: `Set the countdown duration. Only accepted while the timer is idle or finished.
Parameters:
- time_ms (int, optional): Duration in milliseconds, clamped to [0, 2700000]
- minutes (number, optional): Duration in minutes, used when time_ms is not provided

Returns: accepted flag and the resulting timer state.`,
	}, mcpServer.setTimerTimeTool)

	mcp.AddTool(server, &mcp.Tool{
		Name: "set_timer_angle",
		Description: `Set the countdown duration by dial angle. The dial sweeps clockwise from 135 degrees to 45 degrees (0 to 45 minutes); angles in the dead zone snap to the nearer end.
Parameters:
- angle (number, required): Dial angle in degrees

Returns: accepted flag and the resulting timer state.`,
	}, mcpServer.setTimerAngleTool)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "start_timer",
		Description: "Start the countdown, or resume it when paused. Rejected when the duration is zero or the timer is already running. Returns: accepted flag and the resulting timer state.",
	}, mcpServer.startTimerTool)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "pause_timer",
		Description: "Pause a running countdown. Returns: accepted flag and the resulting timer state.",
	}, mcpServer.pauseTimerTool)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "stop_timer",
		Description: "Stop a running or paused countdown and return to idle with the last duration. Returns: accepted flag and the resulting timer state.",
	}, mcpServer.stopTimerTool)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "reset_timer",
		Description: "Reset the timer to idle with the last saved duration, from any state. Returns: accepted flag and the resulting timer state.",
	}, mcpServer.resetTimerTool)

	// 创建 SSE Handler
	mcpServer.handler = mcp.NewSSEHandler(
		func(r *http.Request) *mcp.Server {
			// 每个请求返回同一个服务器实例
			return server
		},
		nil, // SSEOptions，使用默认值
	)

	return mcpServer
}

// GetHandler 获取 HTTP Handler（用于集成到 HTTP 服务器）
func (s *MCPServer) GetHandler() http.Handler {
	return s.handler
}

// Server 返回底层 MCP 服务器
func (s *MCPServer) Server() *mcp.Server {
	return s.server
}

// Start 启动服务器
// HTTP/SSE 模式下由 HTTP 服务器统一提供服务，这里只记录就绪状态
func (s *MCPServer) Start() error {
	s.logger.Info("MCP server ready", "transport", "sse", "path", "/mcp/sse")
	return nil
}

// Stop 停止服务器
func (s *MCPServer) Stop() error {
	return nil
}
