// Package chat provides the chat-completion client used to generate
// assistant replies.
//
// The client speaks the OpenAI-compatible chat completions API, so it
// works against OpenAI or any compatible endpoint. The conversation
// pipeline consumes the Completer interface; the Mock implementation
// backs the tests.
//
// Example usage:
//
//	client, _ := chat.NewClient(
//	    chat.WithAPIKey(os.Getenv("OPENAI_API_KEY")),
//	    chat.WithModel("gpt-4.1-mini"),
//	)
//	defer client.Close()
//
//	resp, _ := client.Complete(ctx, []chat.Message{
//	    chat.NewSystemMessage(chat.SystemPrompt),
//	    chat.NewUserMessage("xin chào"),
//	})
package chat

import "context"

// SystemPrompt is the fixed persona instruction that leads every chat
// request. It fixes the assistant's identity and the creator answer so
// the model stays consistent with the deterministic intent override.
const SystemPrompt = "Bạn là trợ lý RoBot5320 – một trợ lý ảo thân thiện, thông minh và chỉ xưng hô tên RoBot5320. " +
	"Trả lời tiếng Việt, tự nhiên và ngắn gọn. " +
	"Nếu có ai hỏi về nguồn gốc, cha đẻ, người tạo ra hoặc người lập trình RoBot5320 " +
	"thì trả lời rằng RoBot5320 được tạo ra bởi anh Nguyễn Trường Quốc (2k5)."

// Completer generates a reply from an ordered message sequence.
// All implementations must satisfy this interface.
type Completer interface {
	// Complete generates a response from a sequence of messages.
	Complete(ctx context.Context, messages []Message) (*Completion, error)

	// Health checks provider connectivity and API key validity.
	Health(ctx context.Context) error

	// Close releases any resources held by the provider.
	Close() error
}

// Completion is the result of a chat completion call.
type Completion struct {
	// Content is the assistant's reply text. May be empty when the model
	// returns no content; callers treat that as an empty reply, not an error.
	Content string

	// Model is the model that produced the reply.
	Model string

	// Usage reports token consumption.
	Usage Usage

	// LatencyMs is the round-trip time in milliseconds.
	LatencyMs int64
}

// Usage reports token counts for a completion.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
