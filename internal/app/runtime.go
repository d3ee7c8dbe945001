package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/multierr"
)

// Run 启动应用并阻塞到 ctx 取消，然后关闭
//
// 关闭超时取 stopTimeout；启动与关闭的错误合并返回。
func Run(ctx context.Context, app *fx.App, stopTimeout time.Duration) error {
	startCtx, cancel := context.WithTimeout(ctx, DefaultStartTimeout)
	defer cancel()

	if err := app.Start(startCtx); err != nil {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)
		defer stopCancel()
		return multierr.Append(fmt.Errorf("start: %w", err), app.Stop(stopCtx))
	}
	logger.Info("应用已启动")

	<-ctx.Done()
	logger.Info("收到退出信号，正在关闭")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		return fmt.Errorf("stop: %w", err)
	}
	logger.Info("应用已关闭")
	return nil
}
