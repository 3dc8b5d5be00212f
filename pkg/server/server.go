// Package server 通过HTTP提供只读的状态接口
// 处理器只读取监控器发布的快照，不接触样本历史
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gopkg.in/op/go-logging.v1"

	"github.com/Kevin-Rudy/pingtrack/pkg/monitor"
)

// SnapshotSource 提供最新快照
type SnapshotSource interface {
	Snapshot() *monitor.Snapshot
}

// Server 状态HTTP服务
type Server struct {
	e    *echo.Echo
	addr string
	src  SnapshotSource
	log  *logging.Logger
}

// New 创建服务并注册路由，metrics为nil时不提供/metrics
func New(addr string, src SnapshotSource, metrics http.Handler, log *logging.Logger) *Server {
	if log == nil {
		log = logging.MustGetLogger("server")
	}
	s := &Server{e: echo.New(), addr: addr, src: src, log: log}
	s.e.HideBanner = true
	s.e.HidePort = true

	s.e.Use(s.requestLogger())
	s.e.Use(s.recoverer())

	s.e.GET("/health", s.getHealth)

	api := s.e.Group("/api")
	api.GET("/status", s.getStatus)
	api.GET("/graph", s.getGraph)
	api.GET("/outages", s.getOutages)

	if metrics != nil {
		s.e.GET("/metrics", echo.WrapHandler(metrics))
	}
	return s
}

// Handler 返回底层的http.Handler
func (s *Server) Handler() http.Handler {
	return s.e
}

// Run 监听直到ctx结束，然后在10秒内优雅关闭
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.log.Noticef("listening on http://%s", s.addr)
		if err := s.e.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Notice("server exited cleanly")
	return nil
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			s.log.Debugf("%s %s -> %d %s (%dms) from %s",
				req.Method, req.URL.Path, res.Status, http.StatusText(res.Status),
				time.Since(start).Milliseconds(), c.RealIP())
			return nil
		}
	}
}

func (s *Server) recoverer() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					s.log.Errorf("recovered from panic: %v", r)
					err = echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
				}
			}()
			return next(c)
		}
	}
}
