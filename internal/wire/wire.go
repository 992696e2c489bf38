//go:build wireinject
// +build wireinject

package wire

import (
	"github.com/google/wire"

	"github.com/dialtimer/backend/internal/application"
	appNotification "github.com/dialtimer/backend/internal/application/notification"
	appTimer "github.com/dialtimer/backend/internal/application/timer"
	"github.com/dialtimer/backend/internal/domain/notification"
	"github.com/dialtimer/backend/internal/infrastructure"
	infraNotification "github.com/dialtimer/backend/internal/infrastructure/notification"
	"github.com/dialtimer/backend/internal/interfaces"
)

// InitializeAll 初始化所有服务（HTTP + WebSocket + MCP）
// 返回的 cleanup 关闭设置数据库
func InitializeAll() (*App, func(), error) {
	wire.Build(
		// 按层组合 ProviderSet
		infrastructure.ProviderSet, // 基础设施层
		notification.ProviderSet,   // 领域层（按需引入）
		application.ProviderSet,    // 应用层
		interfaces.ProviderSet,     // 接口层
		// 接口绑定：application.Pusher -> infrastructure.Pusher
		wire.Bind(
			new(appNotification.Pusher),
			new(*infraNotification.WebSocketPusher),
		),
		// 接口绑定：计时提醒侧通道 -> 通知服务
		wire.Bind(
			new(appTimer.Alarm),
			new(*appNotification.Service),
		),
		NewApp, // 组合所有服务的应用结构
	)
	return nil, nil, nil
}
