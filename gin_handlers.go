package chat

/* @title           LocalConnect Chat API
@version         1.0
@description     Room chat REST + WebSocket gateway
@BasePath        /api/v1/chat
@securityDefinitions.apikey BearerAuth
@in header
@name Authorization
*/

/* Handlers live in:
- handler_room.go
- handler_message.go
- handler_participant.go
- handler_notification.go
- handlers.go (route table, WS, health)
*/
