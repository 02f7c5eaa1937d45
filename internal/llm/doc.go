// Package llm is the gateway's thin client for an OpenRouter-compatible chat
// completions API, used only as the assistant's last-resort fallback.
//
// The one hard contract here is that Generate never fails: the intent
// pipeline and the bot gateway treat its output as always-presentable text,
// so every failure mode (timeout, transport error, non-200, malformed JSON,
// blank completion) collapses into a fixed apology string and a warning log.
package llm
