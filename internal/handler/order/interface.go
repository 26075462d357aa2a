package order

import "github.com/gin-gonic/gin"

type IHandler interface {
	CreateOrder(c *gin.Context)
	GetOrder(c *gin.Context)
	ListOrders(c *gin.Context)
}
