package httpsvc

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orders/internal/metrics"
)

// ServiceName возвращается корневой проверкой здоровья.
const ServiceName = "orders"

// RouterOptions: зависимости роутера помимо сервиса. Все поля необязательны.
type RouterOptions struct {
	Logger  *log.Entry
	Metrics *metrics.HTTPMetrics
	// Health монтируется на /healthz, если задан.
	Health http.Handler
}

// NewRouter собирает gin.Engine с маршрутами API заказов.
func NewRouter(svc OrderService, opts RouterOptions) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = log.New().WithField("component", "http")
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery(), RequestID(), Metrics(opts.Metrics), AccessLog(logger))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorResponse{Error: "not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	})

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": ServiceName})
	})
	if opts.Health != nil {
		r.GET("/healthz", gin.WrapH(opts.Health))
	}

	h := NewOrderHandler(svc, logger)
	v1 := r.Group("/api/v1")
	{
		v1.POST("/orders", h.CreateOrder)
		v1.GET("/orders", h.ListOrders)
		v1.GET("/orders/:id", h.GetOrder)
		v1.PUT("/orders/:id", h.UpdateOrder)
		v1.DELETE("/orders/:id", h.CancelOrder)
		v1.GET("/orders/:id/timeline", h.OrderTimeline)
	}

	return r
}
