package handler

import (
	"io"

	"tari-sdk/internal/handler/request"
	"tari-sdk/internal/handler/response"
	"tari-sdk/internal/service"
	"tari-sdk/pkg/errno"
	"tari-sdk/pkg/tari/recipe"

	"github.com/gin-gonic/gin"
)

const maxRecipeSize = 1 << 20

type TransactionHandler struct {
	svc service.TransactionAPI
}

func NewTransactionHandler(svc service.TransactionAPI) *TransactionHandler {
	return &TransactionHandler{svc: svc}
}

// Build 执行配方构建交易
// @Summary 构建交易
// @Description 提交 JSON 或 YAML 配方，返回构建出的未签名交易及其哈希
// @Tags Transaction
// @Accept json
// @Accept application/x-yaml
// @Produce json
// @Param recipe body recipe.Recipe true "Recipe"
// @Success 200 {object} response.Response{data=service.BuildResult}
// @Router /transactions/build [post]
func (h *TransactionHandler) Build(c *gin.Context) {
	// 1. 读取原始 Body，JSON 与 YAML 都接受
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxRecipeSize))
	if err != nil {
		response.Error(c, errno.ErrBind)
		return
	}

	// 2. 解析 + 校验
	r, err := recipe.Parse(body)
	if err != nil {
		response.Error(c, errno.ErrRecipeInvalid.WithDetail(err.Error()))
		return
	}

	// 3. 调用 Service
	res, err := h.svc.Build(c.Request.Context(), r)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// Get 查询交易
// @Summary 查询交易
// @Tags Transaction
// @Produce json
// @Param hash path string true "Transaction hash (hex)"
// @Success 200 {object} response.Response{data=service.TransactionView}
// @Router /transactions/{hash} [get]
func (h *TransactionHandler) Get(c *gin.Context) {
	var uri request.TransactionHashURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, errno.ErrValidation.WithDetail(err.Error()))
		return
	}

	view, err := h.svc.Get(c.Request.Context(), uri.Hash)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// RecordResult 记录交易结果
// @Summary 记录交易最终状态
// @Description 由提交方在拿到网络结果后回写
// @Tags Transaction
// @Accept json
// @Produce json
// @Param hash path string true "Transaction hash (hex)"
// @Param request body request.RecordResultRequest true "Result"
// @Success 200 {object} response.Response{data=service.TransactionView}
// @Router /transactions/{hash}/result [put]
func (h *TransactionHandler) RecordResult(c *gin.Context) {
	var uri request.TransactionHashURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, errno.ErrValidation.WithDetail(err.Error()))
		return
	}
	var req request.RecordResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errno.ErrBind.WithDetail(err.Error()))
		return
	}

	view, err := h.svc.RecordResult(c.Request.Context(), uri.Hash, req.Status, req.Result)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}
