package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Monopich/AIST-Backend-sub000/pkg/response"
)

// BodyLimit 请求体大小限制中间件
// 课时批量提交是最大的请求体，上限由 server.max_body_bytes 配置。
// 声明了 Content-Length 的超限请求直接 413；分块上传在读取时截断，由绑定失败返回 400
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()
	}
}
