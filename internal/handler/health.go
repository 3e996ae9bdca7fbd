package handler

import (
	"time"

	"tari-sdk/internal/handler/response"
	"tari-sdk/pkg/config"

	"github.com/gin-gonic/gin"
)

var startedAt = time.Now()

// HealthCheck godoc
// @Summary 服务健康检查
// @Description 返回服务状态、运行环境、默认 Tari 网络和运行时长
// @Tags system
// @Produce json
// @Success 200 {object} response.Response
// @Router /health [get]
func HealthCheck(c *gin.Context) {
	response.Success(c, gin.H{
		"status":       "UP",
		"service":      "tari-server",
		"env":          config.Global.App.Env,
		"network":      config.Global.Tari.Network,
		"events_topic": config.Global.Tari.EventsTopic,
		"uptime":       time.Since(startedAt).Round(time.Second).String(),
	})
}
