package api

import (
	"github.com/gofiber/fiber/v2"
	"signaldesk.com/internal/catalog"
)

// ContractHandler 处理期货合约查询
type ContractHandler struct{}

func NewContractHandler() *ContractHandler {
	return &ContractHandler{}
}

// GetContracts 获取全部合约
// GET /api/contracts
func (h *ContractHandler) GetContracts(c *fiber.Ctx) error {
	return sendData(c, fiber.StatusOK, catalog.All())
}

// GetContract 获取单个合约 (大小写不敏感)
// GET /api/contracts/:symbol
func (h *ContractHandler) GetContract(c *fiber.Ctx) error {
	contract, ok := catalog.Lookup(c.Params("symbol"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"Error": "Contract not found"})
	}
	return sendData(c, fiber.StatusOK, contract)
}
