package chat

import (
	_ "github.com/Muadeel56/localconnect-plus/docs"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterSwagger 在 Gin 路由上注册 Swagger UI，默认 /swagger/*any
//
//	chat.RegisterSwagger(r, "")
//
// 访问：http://localhost:8000/swagger/index.html
func RegisterSwagger(r gin.IRouter, path string) {
	if path == "" {
		path = "/swagger/*any"
	}
	r.GET(path, ginSwagger.WrapHandler(swaggerFiles.Handler))
}
