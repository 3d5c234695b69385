package database

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const maxTraceDepth = 16

// callerTrace 返回调用栈，skip 为跳过的栈帧数量，hidePath 为是否仅保留文件名
func callerTrace(skip int, hidePath bool) string {
	pcs := make([]uintptr, maxTraceDepth)
	n := runtime.Callers(skip+1, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var sb strings.Builder
	for {
		f, more := frames.Next()
		if strings.HasPrefix(f.Function, "runtime.") || strings.HasPrefix(f.Function, "testing.") {
			if !more {
				break
			}
			continue
		}
		file := f.File
		if hidePath {
			file = "~/" + filepath.Base(file)
		}
		fmt.Fprintf(&sb, "  File %s:%d\n    %s\n", file, f.Line, f.Function)
		if !more {
			break
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// formatTrace 将错误格式化为可记录的日志文本
func formatTrace(r any, skip int, hidePath bool) string {
	head := fmt.Sprintf("\n于%s捕获到异常\n      异常类型：%T\n      异常描述：%v",
		time.Now().Format("2006-01-02 15:04:05"), r, r)
	return head + "\n异常触发栈追踪：\n" + callerTrace(skip+1, hidePath)
}
