// Package middleware HTTP 中间件
package middleware

import (
	"bytes"
	"io"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// EnsureUTF8Body 将非 UTF-8 的请求体按 GBK 转码
// Windows 中文系统下的 curl 可能以 GBK 发送展示端名称等字段
func EnsureUTF8Body() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body == nil || c.Request.ContentLength == 0 {
			c.Next()
			return
		}

		bodyBytes, err := io.ReadAll(c.Request.Body)
		c.Request.Body.Close()
		if err != nil {
			c.Request.Body = io.NopCloser(bytes.NewReader(nil))
			c.Next()
			return
		}

		normalized := normalizeUTF8(bodyBytes)
		c.Request.Body = io.NopCloser(bytes.NewReader(normalized))
		c.Request.ContentLength = int64(len(normalized))
		c.Next()
	}
}

// normalizeUTF8 有效 UTF-8 原样返回，否则尝试 GBK 解码，失败时返回原始数据
func normalizeUTF8(data []byte) []byte {
	if len(data) == 0 || utf8.Valid(data) {
		return data
	}

	converted, err := convertGBKToUTF8(data)
	if err != nil || !utf8.Valid(converted) {
		return data
	}
	return converted
}

// convertGBKToUTF8 将 GBK 编码的字节转换为 UTF-8
func convertGBKToUTF8(gbkBytes []byte) ([]byte, error) {
	reader := transform.NewReader(bytes.NewReader(gbkBytes), simplifiedchinese.GBK.NewDecoder())
	return io.ReadAll(reader)
}
