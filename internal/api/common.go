package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"signaldesk.com/internal/domain"
)

// handleError 将业务错误映射为 HTTP 状态码
func handleError(c *fiber.Ctx, err error) error {
	status, msg := domain.ErrorStatus(err)
	return c.Status(status).JSON(fiber.Map{"Error": msg})
}

// sendData 发送标准成功响应
func sendData(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{"Status": true, "Data": data})
}

// errorHandler 兜底处理 fiber 自身返回的错误 (404 路由、405 等)
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"Error": fe.Message})
	}
	return handleError(c, err)
}
