// Package lib 包含与业务无关的基础设施工具库
//
//   - log: 基于 slog 的组件日志（LazyLogger）与滚动文件输出
package lib
