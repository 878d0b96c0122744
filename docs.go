// Package chat 社区房间聊天：房间/成员/消息存储、WebSocket 网关与跨节点广播
// @title LocalConnect Chat API
// @version 1.0
// @description 房间聊天 REST 接口；实时收发走 /ws/chat/{room_id} 与 /ws/notifications
// @description
// @description ## 业务状态码说明
// @description | Code | 说明 |
// @description |------|------|
// @description | 0 | 成功 |
// @description | 10001 | 参数错误 |
// @description | 10004 | Token 无效 |
// @description | 10005 | 权限不足 |
// @description | 10006 | 资源不存在 |
// @description | 10007 | 状态冲突 |
// @description | 99999 | 内部错误 |
// @description
// @description ## HTTP 状态码
// @description 400/401/403/404/409 与业务码一一对应；500 不返回错误细节
// @description
// @description ## WebSocket 关闭码
// @description - **4001**: 未登录 / token 无效或过期
// @description - **4003**: 不是房间活跃成员
// @description - **1011**: 服务端错误
//
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
//
// @host localhost:8000
// @BasePath /api/v1/chat
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description 格式：Bearer <token>
//
// @securityDefinitions.apikey QueryToken
// @in query
// @name token
// @description WebSocket 握手无法带 header 时使用
package chat
