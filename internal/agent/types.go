package agent

import "github.com/jwhyun/finbot/internal/intent"

// ToolResult is one handler's answer for one resolved intent.
type ToolResult struct {
	Intent intent.Intent
	Text   string
}
