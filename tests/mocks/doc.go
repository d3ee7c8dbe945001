// Package mocks 提供测试用的 mock 实现
//
// 每个 mock 都有可覆盖的 XxxFunc 字段与调用记录，
// 未设置 XxxFunc 时使用简单的内存默认行为。
package mocks
